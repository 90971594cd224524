package messaging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	})
}

func TestInMemoryBusDeliversToTypeHandler(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventQuizCompleted, func(e shared.Event) error {
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewQuizActivityEvent(shared.EventQuizCompleted, "user-1", "s-1", nil)
	require.NoError(t, bus.Publish(event))

	require.Len(t, received, 1)
	assert.Equal(t, "user-1", received[0].AggregateID())
}

func TestInMemoryBusSkipsOtherEventTypes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.Subscribe(shared.EventAnswerSubmitted, func(shared.Event) error {
		calls++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "user-1", "", nil)))

	assert.Zero(t, calls)
}

func TestInMemoryBusSubscribeAll(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var types []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		types = append(types, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "u", "", nil)))
	require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventDailyActivity, "u", "", nil)))

	assert.Equal(t, []shared.EventType{shared.EventQuizCompleted, shared.EventDailyActivity}, types)
}

func TestInMemoryBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	secondCalled := false
	require.NoError(t, bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error {
		secondCalled = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "u", "", nil)))

	assert.True(t, secondCalled)
}

func TestInMemoryBusRejectsNilHandlerAndEvent(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventQuizCompleted, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}

func TestInMemoryBusClosedRejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "u", "", nil))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is a no-op.
	assert.NoError(t, bus.Close())
}

func TestInMemoryBusAsyncWaitsOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 4,
	})

	const total = 20

	var wg sync.WaitGroup
	wg.Add(total)

	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		wg.Done()
		return nil
	}))

	for i := 0; i < total; i++ {
		require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "u", "", nil)))
	}

	wg.Wait()
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, total, count)
}

func TestEventBusMetricsSnapshot(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error { return nil }))
	require.NoError(t, bus.Subscribe(shared.EventQuizCompleted, func(shared.Event) error { return errors.New("fail") }))

	require.NoError(t, bus.Publish(shared.NewQuizActivityEvent(shared.EventQuizCompleted, "u", "", nil)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.InDelta(t, 0.5, snap.HandlerSuccessRate, 0.001)
}
