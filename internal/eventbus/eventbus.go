package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the untyped publish/subscribe contract shared by the
// orchestrator and its observers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus, a TypedBus over Event.
type Bus struct {
	*TypedBus[Event]
}

// New creates a Bus with DefaultBuffer.
func New() *Bus { return &Bus{NewTyped[Event]()} }

// NewWithBuffer creates a Bus whose subscribers each buffer n events.
func NewWithBuffer(n int) *Bus { return &Bus{NewTypedWithBuffer[Event](n)} }
