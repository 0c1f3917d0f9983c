package events

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type funcHandler struct {
	id string
	fn EventHandler
}

// EventBus delivers each event synchronously on the publishing goroutine,
// subscribers first and then function handlers in registration order. A
// panicking handler is logged and skipped.
type EventBus struct {
	mu       sync.RWMutex
	subs     map[string]Subscriber
	handlers map[string][]funcHandler
	seq      int
	logger   zerolog.Logger
}

func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subs:     make(map[string]Subscriber),
		handlers: make(map[string][]funcHandler),
		logger:   logger.With().Str("component", "event_bus").Logger(),
	}
}

func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	eb.subs[subscriber.ID()] = subscriber
	eb.mu.Unlock()
	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscriber added")
}

func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	delete(eb.subs, subscriberID)
	eb.mu.Unlock()
	eb.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
}

// SubscribeFunc registers handler for one event type and returns the ID to
// pass to UnsubscribeFunc
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.seq++
	id := fmt.Sprintf("%s#%d", eventType, eb.seq)
	eb.handlers[eventType] = append(eb.handlers[eventType], funcHandler{id: id, fn: handler})
	return id
}

func (eb *EventBus) UnsubscribeFunc(handlerID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, list := range eb.handlers {
		for i := range list {
			if list[i].id != handlerID {
				continue
			}
			if len(list) == 1 {
				delete(eb.handlers, eventType)
			} else {
				eb.handlers[eventType] = append(list[:i:i], list[i+1:]...)
			}
			return
		}
	}
}

func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	eventType := event.Type()
	for id, sub := range eb.subs {
		if sub.InterestedIn(eventType) {
			eb.deliver(id, event, sub.HandleEvent)
		}
	}
	for _, h := range eb.handlers[eventType] {
		eb.deliver(h.id, event, h.fn)
	}
}

func (eb *EventBus) deliver(id string, event Event, fn EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("handler_id", id).
				Str("event_type", event.Type()).
				Str("game_id", event.GameID()).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	fn(event)
}

// GetSubscriberCount is the number of Subscriber values registered
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subs)
}

func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}
