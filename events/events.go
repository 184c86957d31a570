package events

import (
	"context"
	"sync"

	"harvester/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated         EventType = "user_created"
	EventTypeDepositRecorded     EventType = "deposit_recorded"
	EventTypeMelangeCredited     EventType = "melange_credited"
	EventTypeTreasuryChange      EventType = "treasury_change"
	EventTypePaymentMade         EventType = "payment_made"
	EventTypeExpeditionCompleted EventType = "expedition_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent represents a new user entering the ledger
type UserCreatedEvent struct {
	UserID   int64
	Username string
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// DepositRecordedEvent represents a sand deposit that was written to the ledger
type DepositRecordedEvent struct {
	DepositID   int64
	UserID      int64
	SandAmount  int64
	Melange     int64
	DepositType models.DepositType
}

func (e DepositRecordedEvent) Type() EventType {
	return EventTypeDepositRecorded
}

// MelangeCreditedEvent represents melange credited to a user's lifetime total
type MelangeCreditedEvent struct {
	UserID   int64
	Amount   int64
	NewTotal int64
}

func (e MelangeCreditedEvent) Type() EventType {
	return EventTypeMelangeCredited
}

// TreasuryChangeEvent represents a change to the guild treasury balance
type TreasuryChangeEvent struct {
	TransactionType models.GuildTransactionType
	SandAmount      int64
	MelangeAmount   int64
	NewSandTotal    int64
	NewMelangeTotal int64
}

func (e TreasuryChangeEvent) Type() EventType {
	return EventTypeTreasuryChange
}

// PaymentMadeEvent represents a melange payment settled for a user
type PaymentMadeEvent struct {
	PaymentID int64
	UserID    int64
	Amount    int64
	AdminID   int64
}

func (e PaymentMadeEvent) Type() EventType {
	return EventTypePaymentMade
}

// ExpeditionCompletedEvent represents a fully distributed expedition
type ExpeditionCompletedEvent struct {
	ExpeditionID int64
	InitiatorID  int64
	TotalSand    int64
	Participants int
	GuildSand    int64
}

func (e ExpeditionCompletedEvent) Type() EventType {
	return EventTypeExpeditionCompleted
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

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits,
// so collaborators never observe uncommitted ledger state.
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

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events are processed independently of the transaction lifecycle,
	// so emission uses a background context rather than the (possibly
	// expired) transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
