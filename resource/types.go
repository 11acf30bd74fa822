package resource

// Handle is an opaque reference to a slot in a table. It is handed across the
// engine boundary as a pointer-sized value.
// Handle 0 is reserved and always invalid.
type Handle uintptr

// Kind tags the type of value stored in a slot.
type Kind uint32

// Event types for slot lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventPinned
	EventUnpinned
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventPinned:
		return "pinned"
	case EventUnpinned:
		return "unpinned"
	default:
		return "unknown"
	}
}

// Event represents a slot lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about slot lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by values that need cleanup when their
// slot is removed.
type Dropper interface {
	Drop()
}
