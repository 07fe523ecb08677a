package music

// Artist is a name-unique, de-duplicated record. Artists are created
// on demand when a track references them and never deleted.
type Artist struct {
	ID   int64
	Name string
}
