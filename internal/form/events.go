package form

// EventType names a lifecycle event.
type EventType int

const (
	EventChange EventType = iota
	EventComplete
	EventSubmit
)

// String returns the event name used on subjects and in hooks.
func (t EventType) String() string {
	switch t {
	case EventChange:
		return "change"
	case EventComplete:
		return "complete"
	case EventSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after a transition. Answers is a copy.
type Event struct {
	Type    EventType
	Step    int
	Answers Answers
}

// Listener receives events synchronously, inside the transition that
// produced them. It must not call back into the controller.
type Listener func(Event)
