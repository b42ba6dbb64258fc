package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockConsumer struct {
	name           string
	processedCount atomic.Int32
	errorOnProcess bool
	panicOnProcess bool
	mu             sync.Mutex
	events         []ChangeEvent
}

func (m *mockConsumer) Name() string { return m.name }

func (m *mockConsumer) ProcessEvent(event ChangeEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	m.processedCount.Add(1)

	if m.panicOnProcess {
		panic("boom")
	}
	if m.errorOnProcess {
		return fmt.Errorf("mock error")
	}
	return nil
}

func (m *mockConsumer) GetEvents() []ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChangeEvent, len(m.events))
	copy(out, m.events)
	return out
}

func waitForProcessed(t *testing.T, consumer *mockConsumer, expected int32, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			require.Failf(t, "timeout waiting for events", "expected %d events, got %d", expected, consumer.processedCount.Load())
		case <-ticker.C:
			if consumer.processedCount.Load() >= expected {
				return
			}
		}
	}
}

func TestTryPublish_NoConsumers(t *testing.T) {
	t.Parallel()

	eb := New(DefaultConfig(), nil)
	t.Cleanup(func() { _ = eb.Shutdown(time.Second) })

	assert.False(t, eb.TryPublish(NewChangeEvent("SpinState", OpCreated, 1)))
}

func TestTryPublish_DeliversToAllConsumers(t *testing.T) {
	t.Parallel()

	eb := New(Config{BufferSize: 10, Workers: 1}, nil)
	t.Cleanup(func() { _ = eb.Shutdown(time.Second) })

	first := &mockConsumer{name: "first"}
	second := &mockConsumer{name: "second"}
	require.NoError(t, eb.RegisterConsumer(first))
	require.NoError(t, eb.RegisterConsumer(second))

	assert.True(t, eb.TryPublish(NewChangeEvent("BaseMethod", OpUpdated, 7)))

	waitForProcessed(t, first, 1, time.Second)
	waitForProcessed(t, second, 1, time.Second)

	got := first.GetEvents()[0]
	assert.Equal(t, "BaseMethod", got.Entity)
	assert.Equal(t, OpUpdated, got.Op)
	assert.Equal(t, uint(7), got.ID)
}

func TestRegisterConsumer_Duplicate(t *testing.T) {
	t.Parallel()

	eb := New(DefaultConfig(), nil)
	t.Cleanup(func() { _ = eb.Shutdown(time.Second) })

	require.NoError(t, eb.RegisterConsumer(&mockConsumer{name: "cache"}))
	err := eb.RegisterConsumer(&mockConsumer{name: "cache"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestConsumerErrorsAreCounted(t *testing.T) {
	t.Parallel()

	eb := New(Config{BufferSize: 10, Workers: 1}, nil)
	t.Cleanup(func() { _ = eb.Shutdown(time.Second) })

	failing := &mockConsumer{name: "failing", errorOnProcess: true}
	panicking := &mockConsumer{name: "panicking", panicOnProcess: true}
	require.NoError(t, eb.RegisterConsumer(failing))
	require.NoError(t, eb.RegisterConsumer(panicking))

	require.True(t, eb.TryPublish(NewChangeEvent("FullMethod", OpDeleted, 3)))
	waitForProcessed(t, failing, 1, time.Second)
	waitForProcessed(t, panicking, 1, time.Second)

	require.Eventually(t, func() bool {
		return eb.GetStats().ConsumerErrors == 2
	}, time.Second, 10*time.Millisecond)
}

func TestShutdown_StopsAcceptingEvents(t *testing.T) {
	t.Parallel()

	eb := New(DefaultConfig(), nil)
	consumer := &mockConsumer{name: "c"}
	require.NoError(t, eb.RegisterConsumer(consumer))

	require.NoError(t, eb.Shutdown(time.Second))
	assert.False(t, eb.TryPublish(NewChangeEvent("SpinState", OpCreated, 1)))
}

func TestConsumerFunc(t *testing.T) {
	t.Parallel()

	var got ChangeEvent
	c := ConsumerFunc{ConsumerName: "fn", Fn: func(ev ChangeEvent) error {
		got = ev
		return nil
	}}

	assert.Equal(t, "fn", c.Name())
	require.NoError(t, c.ProcessEvent(NewChangeEvent("MethodFamily", OpCreated, 2)))
	assert.Equal(t, "MethodFamily", got.Entity)
}
