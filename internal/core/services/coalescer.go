package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// ProcessFunc handles one coalesced batch of change events.
type ProcessFunc func(events []domain.ChangeEvent)

// ChangeCoalescer buffers change events and releases them as a single
// batch once the vault has been quiet for a full quiescence window.
// Every new event resets the countdown, so a burst of edits produces at
// most one batch.
type ChangeCoalescer struct {
	window  time.Duration
	clock   driven.Clock
	process ProcessFunc

	mu         sync.Mutex
	buf        []domain.ChangeEvent
	lastChange time.Time
	timer      driven.Timer
	processing bool
	closed     bool

	// inflight tracks batch callbacks so Close can drain synchronously.
	inflight sync.WaitGroup
}

// NewChangeCoalescer creates a coalescer. A non-positive window falls
// back to the default quiescence window.
func NewChangeCoalescer(window time.Duration, clock driven.Clock, process ProcessFunc) *ChangeCoalescer {
	if window <= 0 {
		window = domain.DefaultQuiescenceWindow
	}
	return &ChangeCoalescer{
		window:  window,
		clock:   clock,
		process: process,
	}
}

// OnChange buffers an event and restarts the quiescence countdown.
// Events arriving while a batch is processing accumulate for the next
// batch; they are never merged into the running one.
func (c *ChangeCoalescer) OnChange(event domain.ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrCoalescerClosed
	}

	c.buf = append(c.buf, event)
	c.lastChange = c.clock.Now()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.Schedule(c.window, c.fire)

	return nil
}

// Pending returns the number of buffered events.
func (c *ChangeCoalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// fire runs when the scheduled countdown elapses. It re-checks actual
// quiescence before releasing a batch: timer delivery can race with a
// late OnChange, and a stale timer must never cut a burst short.
func (c *ChangeCoalescer) fire() {
	c.mu.Lock()

	if c.closed || len(c.buf) == 0 {
		c.mu.Unlock()
		return
	}

	elapsed := c.clock.Now().Sub(c.lastChange)
	if elapsed < c.window {
		c.timer = c.clock.Schedule(c.window-elapsed, c.fire)
		c.mu.Unlock()
		return
	}

	if c.processing {
		// The completion of the running batch reschedules for us.
		c.mu.Unlock()
		return
	}

	batch := c.takeBatchLocked()
	c.mu.Unlock()

	c.runBatch(batch)
}

// takeBatchLocked snapshots and clears the buffer and marks the
// coalescer busy. Caller must hold the mutex.
func (c *ChangeCoalescer) takeBatchLocked() []domain.ChangeEvent {
	batch := c.buf
	c.buf = nil
	c.timer = nil
	c.processing = true
	c.inflight.Add(1)
	return batch
}

// runBatch invokes the process callback and rearms the countdown if
// events accumulated during processing. The rearm is deferred so a
// misbehaving callback cannot leave the coalescer marked busy forever.
func (c *ChangeCoalescer) runBatch(batch []domain.ChangeEvent) {
	defer c.inflight.Done()
	defer c.rearm()

	logger.Debug("Processing batch of %d change events", len(batch))
	c.invoke(batch)
}

// invoke runs the process callback, containing panics.
func (c *ChangeCoalescer) invoke(batch []domain.ChangeEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("Change batch processing panicked: %v", rec)
		}
	}()
	c.process(batch)
}

// rearm clears the busy flag and restarts the countdown if events
// accumulated while the batch ran.
func (c *ChangeCoalescer) rearm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.processing = false
	if c.closed || len(c.buf) == 0 {
		return
	}

	remaining := c.window - c.clock.Now().Sub(c.lastChange)
	if remaining < 0 {
		remaining = 0
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.Schedule(remaining, c.fire)
}

// Close stops the countdown, waits for any running batch, and drains
// remaining buffered events synchronously. Pending changes survive
// shutdown rather than waiting out a window that will never elapse.
func (c *ChangeCoalescer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.inflight.Wait()

	c.mu.Lock()
	if len(c.buf) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.buf
	c.buf = nil
	c.mu.Unlock()

	logger.Debug("Draining %d buffered change events on shutdown", len(batch))
	c.invoke(batch)

	return nil
}
