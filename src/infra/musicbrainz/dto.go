package musicbrainz

// Wire types for the MusicBrainz ws/2 recording lookup. They mirror
// the JSON response exactly and never leave this package.

type recordingResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length"` // milliseconds
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
	Tags         []tagEntry     `json:"tags"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type release struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Date         string       `json:"date"`
	Country      string       `json:"country"`
	ReleaseGroup releaseGroup `json:"release-group"`
	Media        []medium     `json:"media"`
}

type releaseGroup struct {
	ID             string   `json:"id"`
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}

type medium struct {
	Position   int         `json:"position"`
	Format     string      `json:"format"`
	TrackCount int         `json:"track-count"`
	Tracks     []trackInfo `json:"track"`
}

type trackInfo struct {
	Position int    `json:"position"`
	Number   string `json:"number"`
	Title    string `json:"title"`
}

type tagEntry struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}
