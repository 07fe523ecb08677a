package music

// ReleaseInfo is one release a fingerprint match appears on.
type ReleaseInfo struct {
	ID             string
	Title          string
	ReleaseType    ReleaseType
	SecondaryTypes []string
}

// FingerprintMatch is one AcoustID candidate: a recording with a
// confidence score and the releases it appears on. BestRelease, when
// set, always points at one of the entries in Releases.
type FingerprintMatch struct {
	Score       float64
	RecordingID string
	Title       string
	Artist      string
	Releases    []ReleaseInfo
	BestRelease *ReleaseInfo
}

// ExistingMetadata is what the verifier compares candidates against:
// the tags currently embedded in the file.
type ExistingMetadata struct {
	Title       string
	Artist      string
	Album       string
	RecordingID string
}
