// Package clock provides the system clock adapter.
package clock

import (
	"time"

	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// System is the wall-clock implementation of the Clock port.
type System struct{}

var _ driven.Clock = (*System)(nil)

// NewSystem creates a system clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current time.
func (s *System) Now() time.Time {
	return time.Now()
}

// Schedule runs fn after d elapses.
func (s *System) Schedule(d time.Duration, fn func()) driven.Timer {
	return systemTimer{timer: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	timer *time.Timer
}

// Stop cancels the callback if it hasn't fired.
func (t systemTimer) Stop() bool {
	return t.timer.Stop()
}
