package music

// Album is a name-unique record, optionally tied to an artist. Orphan
// albums are tolerated; they are never garbage-collected.
type Album struct {
	ID       int64
	Title    string
	ArtistID *int64
	Year     *int
}
