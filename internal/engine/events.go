package engine

const (
	EventInfo    EventType = "info"
	EventSuccess EventType = "success"
	EventWarning EventType = "warning"
)

type (
	EventType string

	// Event is a user-facing message emitted by the allocator and the
	// advisor. Delivery to the notification sink is the caller's job;
	// the engine never blocks on it.
	Event struct {
		Type    EventType
		Message string
	}

	// Insight is an advisor recommendation. Same shape as an Event so
	// callers can feed both into the same sink.
	Insight = Event
)

func info(msg string) Event    { return Event{Type: EventInfo, Message: msg} }
func success(msg string) Event { return Event{Type: EventSuccess, Message: msg} }
func warning(msg string) Event { return Event{Type: EventWarning, Message: msg} }
