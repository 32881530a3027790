package dashboard

import "time"

// EventType names a state change broadcast to subscribers.
type EventType string

const (
	EventStrategyCreated    EventType = "strategy.created"
	EventStrategyUpdated    EventType = "strategy.updated"
	EventStrategyDeleted    EventType = "strategy.deleted"
	EventStrategySwitched   EventType = "strategy.switched"
	EventTradesRefreshed    EventType = "trades.refreshed"
	EventPLTypeChanged      EventType = "pltype.changed"
	EventInstrumentsChanged EventType = "instruments.changed"
	EventStateImported      EventType = "state.imported"
)

// Event is published after every successful mutation.
type Event struct {
	Type       EventType `json:"type"`
	StrategyID string    `json:"strategyId,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher receives events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
