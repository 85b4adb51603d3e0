package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []int64
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeDrawCompleted, func(_ context.Context, e Event) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, e.(DrawCompletedEvent).PrizeID)
		})
	}

	bus.Emit(context.Background(), DrawCompletedEvent{PrizeID: 7})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBus_EmitIgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypePrizeExhausted, func(_ context.Context, _ Event) {
		called <- struct{}{}
	})

	bus.Emit(context.Background(), DrawCompletedEvent{PrizeID: 7})

	select {
	case <-called:
		t.Fatal("handler for a different event type was invoked")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotPropagate(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(EventTypeDrawCompleted, func(_ context.Context, _ Event) {
		panic("handler bug")
	})
	done := make(chan struct{})
	bus.Subscribe(EventTypeDrawCompleted, func(_ context.Context, _ Event) {
		close(done)
	})

	bus.Emit(context.Background(), DrawCompletedEvent{PrizeID: 7})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("surviving handler was never invoked")
	}
}

func TestTransactionalBus_FlushAndDiscard(t *testing.T) {
	real := NewBus()

	var mu sync.Mutex
	var got []Event
	real.Subscribe(EventTypeClaimRedeemed, func(_ context.Context, e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})

	txBus := NewTransactionalBus(real)
	txBus.Publish(ClaimRedeemedEvent{PrizeID: 1})
	txBus.Discard()

	txBus.Publish(ClaimRedeemedEvent{PrizeID: 2})
	require.NoError(t, txBus.Flush(context.Background()))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].(ClaimRedeemedEvent).PrizeID)
}
