// Package anim eases the displayed bar value toward its target.
package anim

import (
	"math"
	"time"
)

const (
	// Rate is the convergence constant k in 1 - e^(-k*dt), per second.
	Rate = 7.0
	// MaxStep caps the time a single Advance may account for, so a stalled
	// loop resumes smoothly instead of jumping.
	MaxStep = 50 * time.Millisecond
)

// Easing tracks a displayed value in [0,100] chasing a target.
// Exponential approach never overshoots.
type Easing struct {
	displayed float64
	target    float64
	last      time.Time
}

func NewEasing(now time.Time) *Easing {
	return &Easing{last: now}
}

// SetTarget clamps v to [0,100]. The displayed value is left alone.
func (e *Easing) SetTarget(v float64) {
	e.target = clampPct(v)
}

// Advance moves displayed toward target by the time elapsed since the previous call.
func (e *Easing) Advance(now time.Time) {
	dt := now.Sub(e.last)
	e.last = now
	if dt <= 0 {
		return
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	a := 1 - math.Exp(-Rate*dt.Seconds())
	e.displayed += (e.target - e.displayed) * a
}

func (e *Easing) Displayed() float64 { return e.displayed }

func (e *Easing) Target() float64 { return e.target }

func clampPct(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
