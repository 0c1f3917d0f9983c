package events

import "time"

// Event is anything that happened to one game
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
}

// BaseEvent carries the fields every game event shares. Embed it to
// satisfy Event.
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

type EventHandler func(Event)

// Subscriber receives the event types it reports interest in. IDs are
// unique per bus; subscribing twice with one ID replaces the first.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is what engines, sessions and state machines emit into
type Publisher interface {
	Publish(Event)
}

// Bus adds subscription management to Publisher
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	Unsubscribe(subscriberID string)
	SubscribeFunc(eventType string, handler EventHandler) string
	UnsubscribeFunc(handlerID string)
}
