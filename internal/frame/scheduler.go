// Package frame paces rendering to a fixed minimum period.
package frame

import "time"

// DefaultPeriod gives roughly 30 frames per second.
const DefaultPeriod = 33 * time.Millisecond

// Scheduler runs a frame callback at most once per period. It is polled, not
// timer driven: the owner calls Tick as often as it likes.
type Scheduler struct {
	period   time.Duration
	deadline time.Time
	frame    func(now time.Time)
	frames   uint64
}

// NewScheduler returns a scheduler whose first Tick renders immediately.
// A non-positive period selects DefaultPeriod.
func NewScheduler(period time.Duration, frame func(now time.Time)) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{period: period, frame: frame}
}

// Tick runs the frame when the deadline has passed and reports whether it did.
func (s *Scheduler) Tick(now time.Time) bool {
	if now.Before(s.deadline) {
		return false
	}
	if s.frame != nil {
		s.frame(now)
	}
	s.frames++
	s.deadline = now.Add(s.period)
	return true
}

func (s *Scheduler) Deadline() time.Time { return s.deadline }

func (s *Scheduler) Period() time.Duration { return s.period }

// Frames counts rendered frames.
func (s *Scheduler) Frames() uint64 { return s.frames }
