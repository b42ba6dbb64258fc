// Package events provides the asynchronous change-event bus. The datastore
// publishes one ChangeEvent per successful write; consumers such as the
// metrics collector and the MQTT publisher react to them without ever
// blocking the request that caused the change.
package events

import "time"

// Op is the kind of write that produced an event.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeEvent describes one committed write to a catalogue entity.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Op        Op        `json:"op"`
	ID        uint      `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent stamps a change event with the current time.
func NewChangeEvent(entity string, op Op, id uint) ChangeEvent {
	return ChangeEvent{Entity: entity, Op: op, ID: id, Timestamp: time.Now()}
}

// Publisher is the write side of the bus, implemented by *EventBus.
type Publisher interface {
	// TryPublish queues the event and reports whether it was accepted.
	TryPublish(event ChangeEvent) bool
}

// Consumer processes change events
type Consumer interface {
	// Name identifies the consumer in logs and stats
	Name() string

	// ProcessEvent handles a single event. Errors are logged and counted.
	ProcessEvent(event ChangeEvent) error
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc struct {
	ConsumerName string
	Fn           func(ChangeEvent) error
}

func (c ConsumerFunc) Name() string                     { return c.ConsumerName }
func (c ConsumerFunc) ProcessEvent(ev ChangeEvent) error { return c.Fn(ev) }

// Stats contains runtime statistics for monitoring
type Stats struct {
	EventsReceived  uint64
	EventsProcessed uint64
	EventsDropped   uint64
	ConsumerErrors  uint64
}
