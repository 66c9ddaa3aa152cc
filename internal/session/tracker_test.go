package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// expirable.LRU runs a background cleanup goroutine for the process lifetime.
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
	)
}

func TestBegin_IdsIncrease(t *testing.T) {
	tr := NewTracker(10, time.Minute, 0)

	a1 := tr.Begin("a")
	a2 := tr.Begin("a")
	b1 := tr.Begin("b")

	assert.Equal(t, uint64(1), a1.ID())
	assert.Equal(t, uint64(2), a2.ID())
	assert.Equal(t, uint64(3), b1.ID())
	assert.Equal(t, "a", a1.Session())

	assert.False(t, a1.Latest())
	assert.True(t, a2.Latest())
	assert.True(t, b1.Latest(), "sessions do not supersede each other")
}

func TestLatest_SessionEvictedAndRestarted(t *testing.T) {
	tr := NewTracker(1, time.Minute, 0)

	first := tr.Begin("a")
	other := tr.Begin("b") // evicts "a"
	assert.True(t, first.Latest(), "eviction alone does not supersede")

	second := tr.Begin("a") // evicts "b", starts "a" afresh

	assert.NotEqual(t, first.ID(), second.ID())
	assert.False(t, first.Latest())
	assert.True(t, second.Latest())
	assert.True(t, other.Latest())
}

func TestBegin_Anonymous(t *testing.T) {
	tr := NewTracker(10, time.Minute, time.Hour)

	tk := tr.Begin("")
	tr.Begin("")
	assert.Equal(t, uint64(0), tk.ID())
	assert.True(t, tk.Latest())

	// No debounce for anonymous tickets.
	assert.NoError(t, tk.Settle(context.Background()))
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tk := tr.Begin("a")
	assert.True(t, tk.Latest())
	assert.NoError(t, tk.Settle(context.Background()))
}

func TestSettle_Latest(t *testing.T) {
	tr := NewTracker(10, time.Minute, 10*time.Millisecond)
	tk := tr.Begin("s")
	assert.NoError(t, tk.Settle(context.Background()))
}

func TestSettle_Superseded(t *testing.T) {
	tr := NewTracker(10, time.Minute, 50*time.Millisecond)
	first := tr.Begin("s")

	errCh := make(chan error, 1)
	go func() { errCh <- first.Settle(context.Background()) }()

	time.Sleep(5 * time.Millisecond)
	second := tr.Begin("s")

	require.ErrorIs(t, <-errCh, ErrSuperseded)
	assert.NoError(t, second.Settle(context.Background()))
}

func TestSettle_ReturnsEarlyWhenSuperseded(t *testing.T) {
	tr := NewTracker(10, time.Minute, time.Hour)
	first := tr.Begin("s")

	errCh := make(chan error, 1)
	go func() { errCh <- first.Settle(context.Background()) }()

	tr.Begin("s")

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("Settle kept waiting after a newer request began")
	}
}

func TestSettle_ContextCanceled(t *testing.T) {
	tr := NewTracker(10, time.Minute, time.Hour)
	tk := tr.Begin("s")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tk.Settle(ctx), context.Canceled)
}

func TestBegin_Concurrent(t *testing.T) {
	tr := NewTracker(10, time.Minute, 0)

	const n = 50
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- tr.Begin("s").ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, tr.Begin("s").ID() == n+1)
}
