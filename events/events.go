package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeParticipantRegistered EventType = "participant_registered"
	EventTypeDrawCompleted         EventType = "draw_completed"
	EventTypePrizeExhausted        EventType = "prize_exhausted"
	EventTypeCompensationFailed    EventType = "compensation_failed"
	EventTypeClaimRedeemed         EventType = "claim_redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ParticipantRegisteredEvent represents a participant's draw attempt being recorded
type ParticipantRegisteredEvent struct {
	ParticipantID int64
	CampaignID    int64
	Email         string
	PlayCount     int
}

func (e ParticipantRegisteredEvent) Type() EventType {
	return EventTypeParticipantRegistered
}

// DrawCompletedEvent represents a draw that awarded a prize
type DrawCompletedEvent struct {
	WinnerID   uuid.UUID
	CampaignID int64
	PrizeID    int64
	PrizeName  string
	Email      string
	ExpiresAt  time.Time
}

func (e DrawCompletedEvent) Type() EventType {
	return EventTypeDrawCompleted
}

// PrizeExhaustedEvent represents a prize whose stock just reached zero
type PrizeExhaustedEvent struct {
	PrizeID    int64
	CampaignID int64
	PrizeName  string
}

func (e PrizeExhaustedEvent) Type() EventType {
	return EventTypePrizeExhausted
}

// CompensationFailedEvent represents a stock rollback that could not be applied.
// Stock for the prize is off by one until repaired manually.
type CompensationFailedEvent struct {
	PrizeID    int64
	CampaignID int64
	Reason     string
}

func (e CompensationFailedEvent) Type() EventType {
	return EventTypeCompensationFailed
}

// ClaimRedeemedEvent represents a winner redeeming their claim code
type ClaimRedeemedEvent struct {
	WinnerID  uuid.UUID
	PrizeID   int64
	ClaimCode string
}

func (e ClaimRedeemedEvent) Type() EventType {
	return EventTypeClaimRedeemed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the draw path
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events until the unit of work commits, then
// flushes them to the underlying bus. Discarded on rollback.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events are processed independently of the transaction lifecycle, so
	// a background context is used in case the request context has expired.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after a DB rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
