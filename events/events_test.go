package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Emit(t *testing.T) {
	bus := NewBus()

	received := make(chan Event, 1)
	bus.Subscribe(EventTypeMelangeCredited, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.Emit(context.Background(), MelangeCreditedEvent{UserID: 1, Amount: 6, NewTotal: 6})

	select {
	case e := <-received:
		ev := e.(MelangeCreditedEvent)
		assert.Equal(t, int64(6), ev.Amount)
	case <-time.After(time.Second):
		t.Fatal("handler never received the event")
	}
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()

	received := make(chan Event, 2)
	bus.Subscribe(EventTypeDepositRecorded, func(ctx context.Context, e Event) {
		received <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(DepositRecordedEvent{UserID: 1, SandAmount: 334, Melange: 6})

	// Nothing reaches subscribers until the flush
	select {
	case <-received:
		t.Fatal("event observed before commit")
	case <-time.After(50 * time.Millisecond):
	}

	txBus.Flush(context.Background())

	select {
	case e := <-received:
		ev := e.(DepositRecordedEvent)
		require.Equal(t, int64(334), ev.SandAmount)
	case <-time.After(time.Second):
		t.Fatal("event never flushed")
	}
}

func TestTransactionalBus_DiscardOnRollback(t *testing.T) {
	bus := NewBus()

	received := make(chan Event, 1)
	bus.Subscribe(EventTypePaymentMade, func(ctx context.Context, e Event) {
		received <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(PaymentMadeEvent{UserID: 1, Amount: 100})
	txBus.Discard()

	// A later flush has nothing to deliver
	txBus.Flush(context.Background())

	select {
	case <-received:
		t.Fatal("discarded event was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
