package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// fakeClock is a virtual clock. Advance moves time forward and fires
// due timers synchronously on the calling goroutine, so coalescer tests
// are deterministic.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Schedule(d time.Duration, fn func()) driven.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and fires every due timer in
// deadline order. Callbacks may schedule new timers; those fire too if
// they fall within the advanced window.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		timer := c.nextDue()
		if timer == nil {
			return
		}
		timer.fn()
	}
}

func (c *fakeClock) nextDue() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var due *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.deadline.After(c.now) {
			continue
		}
		if due == nil || t.deadline.Before(due.deadline) {
			due = t
		}
	}
	if due != nil {
		due.fired = true
	}
	return due
}

// batchRecorder collects processed batches.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]domain.ChangeEvent
}

func (r *batchRecorder) process(events []domain.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func event(id string) domain.ChangeEvent {
	return domain.ChangeEvent{DocumentID: id, Op: domain.OpModify}
}

func TestChangeCoalescer_OnChange(t *testing.T) {
	window := 15 * time.Second

	t.Run("quiet window releases a single batch", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.OnChange(event("pages/a.md")))
		clock.Advance(window)

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.batches[0], 1)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("each event resets the countdown", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.OnChange(event("pages/a.md")))
		clock.Advance(10 * time.Second)
		require.NoError(t, c.OnChange(event("pages/b.md")))
		clock.Advance(10 * time.Second)
		require.NoError(t, c.OnChange(event("pages/c.md")))

		// 20 seconds elapsed since the first event, but never a full
		// quiet window since the last one.
		assert.Equal(t, 0, rec.count())
		assert.Equal(t, 3, c.Pending())

		clock.Advance(window)

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.batches[0], 3)
	})

	t.Run("burst produces at most one batch", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		for i := 0; i < 50; i++ {
			require.NoError(t, c.OnChange(event("pages/a.md")))
			clock.Advance(100 * time.Millisecond)
		}
		clock.Advance(window)

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.batches[0], 50)
	})

	t.Run("stale timer fire reschedules instead of releasing early", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.OnChange(event("pages/a.md")))
		clock.Advance(5 * time.Second)

		// Simulate a timer callback that raced a recent event.
		c.fire()

		assert.Equal(t, 0, rec.count())
		assert.Equal(t, 1, c.Pending())

		clock.Advance(window - 5*time.Second)

		require.Equal(t, 1, rec.count())
	})

	t.Run("a panicking callback does not wedge the coalescer", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		exploding := true
		c := NewChangeCoalescer(window, clock, func(events []domain.ChangeEvent) {
			if exploding {
				exploding = false
				panic("callback blew up")
			}
			rec.process(events)
		})

		require.NoError(t, c.OnChange(event("pages/a.md")))
		clock.Advance(window)

		// The first batch was lost to the panic, but the busy flag was
		// reset, so the next burst still fires.
		require.NoError(t, c.OnChange(event("pages/b.md")))
		clock.Advance(window)

		require.Equal(t, 1, rec.count())
		assert.Equal(t, "pages/b.md", rec.batches[0][0].DocumentID)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("events during processing accumulate for the next batch", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		var c *ChangeCoalescer
		interrupting := true
		c = NewChangeCoalescer(window, clock, func(events []domain.ChangeEvent) {
			rec.process(events)
			if interrupting {
				interrupting = false
				require.NoError(t, c.OnChange(event("pages/late.md")))
			}
		})

		require.NoError(t, c.OnChange(event("pages/a.md")))
		clock.Advance(window)

		// First batch released; the event injected mid-processing is
		// buffered, never merged into the running batch.
		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.batches[0], 1)
		assert.Equal(t, 1, c.Pending())

		clock.Advance(window)

		require.Equal(t, 2, rec.count())
		assert.Equal(t, "pages/late.md", rec.batches[1][0].DocumentID)
	})
}

func TestChangeCoalescer_Close(t *testing.T) {
	window := 15 * time.Second

	t.Run("drains buffered events synchronously", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.OnChange(event("pages/a.md")))
		require.NoError(t, c.OnChange(event("pages/b.md")))

		require.NoError(t, c.Close())

		require.Equal(t, 1, rec.count())
		assert.Len(t, rec.batches[0], 2)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("empty buffer closes without processing", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.Close())

		assert.Equal(t, 0, rec.count())
	})

	t.Run("rejects events after close", func(t *testing.T) {
		clock := newFakeClock()
		c := NewChangeCoalescer(window, clock, func([]domain.ChangeEvent) {})

		require.NoError(t, c.Close())

		assert.ErrorIs(t, c.OnChange(event("pages/a.md")), domain.ErrCoalescerClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		clock := newFakeClock()
		rec := &batchRecorder{}
		c := NewChangeCoalescer(window, clock, rec.process)

		require.NoError(t, c.OnChange(event("pages/a.md")))
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		assert.Equal(t, 1, rec.count())
	})
}
