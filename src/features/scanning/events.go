package scanning

// EventType classifies one reconcile outcome.
type EventType string

const (
	EventAdded   EventType = "added"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
	EventError   EventType = "error"
)

// Event is one entry of the reconcile stream.
type Event struct {
	Type EventType
	Path string
	Err  error
}
