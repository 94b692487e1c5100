package reading

// EventKind identifies the type of a stream event delivered to the UI loop.
type EventKind int

const (
	EventDelta         EventKind = iota // Incremental interpretation text
	EventInterpretDone                  // Interpretation stream finished
	EventChatDelta                      // Incremental chat reply text
	EventChatDone                       // Chat reply stream finished
)

// Event carries streamed output from a network goroutine back into the UI
// loop. RequestID ties the event to the request that produced it; events
// whose request is no longer active are dropped at apply time.
type Event struct {
	Kind      EventKind
	RequestID string
	Delta     string
	Text      string // full text on *Done events (fallback text when Err != nil)
	Err       error
}
