package wizard

// Event is a sealed interface representing one decoded stream event.
// Exactly one event is carried per "data: " line of the wire protocol.
// Transport failures come from Lines.Next's error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextChunk is an incremental text fragment.
type EventTextChunk struct {
	Content string
}

func (EventTextChunk) event() {}

// EventStructuredData carries one fully formed structured item detected
// mid-stream. Index is nil when the server did not send one.
type EventStructuredData struct {
	Data  map[string]any
	Index *int
}

func (EventStructuredData) event() {}

// EventStructuredComplete carries the terminal structured payload.
type EventStructuredComplete struct {
	Data any
}

func (EventStructuredComplete) event() {}

// EventCompletion carries the terminal payload in the legacy simple form.
type EventCompletion struct {
	Data any
}

func (EventCompletion) event() {}

// EventError signals an upstream application failure.
type EventError struct {
	Message string
}

func (EventError) event() {}

// Terminal reports whether e ends the stream. No events after a terminal
// event are meaningful.
func Terminal(e Event) bool {
	switch e.(type) {
	case EventStructuredComplete, EventCompletion, EventError:
		return true
	default:
		return false
	}
}

// Interface compliance checks.
var (
	_ Event = EventTextChunk{}
	_ Event = EventStructuredData{}
	_ Event = EventStructuredComplete{}
	_ Event = EventCompletion{}
	_ Event = EventError{}
)
