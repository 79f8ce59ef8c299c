// Package dashboard ties the telemetry pipeline together: bytes in, animated
// bar and history out. Everything here runs on one goroutine.
package dashboard

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/anim"
	"github.com/Dicklesworthstone/pcmonitor/internal/frame"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/nav"
	"github.com/Dicklesworthstone/pcmonitor/internal/telemetry"
)

type Options struct {
	// Modes is the navigation cycle; nil means nav.StatsModes.
	Modes       []nav.Mode
	FramePeriod time.Duration
	// Render draws a frame. It runs after the bar has been advanced.
	Render func(now time.Time)
	// Publish receives a snapshot after every accepted record and mode change.
	Publish func(Snapshot)
}

type Engine struct {
	stats   model.Stats
	history telemetry.HistorySet
	bar     *anim.Easing
	modes   *nav.Controller
	lines   *telemetry.LineAccumulator
	sched   *frame.Scheduler

	render  func(time.Time)
	publish func(Snapshot)

	started  time.Time
	records  uint64
	rejected uint64
}

func New(now time.Time, opts Options) *Engine {
	e := &Engine{
		stats:   model.Unknown(),
		bar:     anim.NewEasing(now),
		lines:   telemetry.NewLineAccumulator(),
		render:  opts.Render,
		publish: opts.Publish,
		started: now,
	}
	e.modes = nav.NewController(opts.Modes, func(m nav.Mode) {
		e.bar.SetTarget(m.Target(e.stats))
	})
	e.sched = frame.NewScheduler(opts.FramePeriod, e.drawFrame)
	return e
}

// Ingest feeds raw link bytes and returns the number of records accepted.
func (e *Engine) Ingest(p []byte, now time.Time) int {
	accepted := 0
	e.lines.Write(p, func(rec string) {
		if e.IngestLine(rec, now) {
			accepted++
		}
	})
	return accepted
}

// IngestLine applies one complete record. A rejected record leaves the
// current stats, history and target untouched.
func (e *Engine) IngestLine(line string, now time.Time) bool {
	s, ok := telemetry.Parse(line, now)
	if !ok {
		e.rejected++
		return false
	}
	e.stats = s
	e.history.RecordStats(s)
	e.bar.SetTarget(e.modes.Current().Target(s))
	e.records++
	e.emit(now)
	return true
}

func (e *Engine) Next(now time.Time) nav.Mode {
	m := e.modes.Next()
	e.modeChanged(m, now)
	return m
}

func (e *Engine) Prev(now time.Time) nav.Mode {
	m := e.modes.Prev()
	e.modeChanged(m, now)
	return m
}

// SetMode jumps directly to m; it reports false when m is not in the cycle.
func (e *Engine) SetMode(m nav.Mode, now time.Time) bool {
	if !e.modes.Set(m) {
		return false
	}
	e.modeChanged(m, now)
	return true
}

// Apply performs a navigation action. Setup is not a mode change and is
// left to the caller.
func (e *Engine) Apply(a nav.Action, now time.Time) {
	switch a {
	case nav.ActionNext:
		e.Next(now)
	case nav.ActionPrev:
		e.Prev(now)
	}
}

// Tick renders a frame when one is due and reports whether it did.
func (e *Engine) Tick(now time.Time) bool {
	return e.sched.Tick(now)
}

func (e *Engine) drawFrame(now time.Time) {
	e.bar.Advance(now)
	if e.render != nil {
		e.render(now)
	}
}

func (e *Engine) Stats() model.Stats { return e.stats }

func (e *Engine) Sequence(m model.Metric) telemetry.Sequence { return e.history.Sequence(m) }

func (e *Engine) Displayed() float64 { return e.bar.Displayed() }

func (e *Engine) Target() float64 { return e.bar.Target() }

func (e *Engine) Mode() nav.Mode { return e.modes.Current() }

func (e *Engine) Modes() []nav.Mode { return e.modes.Modes() }

// DataAge surfaces staleness; ok is false when nothing has been received.
func (e *Engine) DataAge(now time.Time) (time.Duration, bool) { return e.stats.Age(now) }

func (e *Engine) Frames() uint64 { return e.sched.Frames() }

// Counters returns accepted and rejected record counts.
func (e *Engine) Counters() (records, rejected uint64) { return e.records, e.rejected }

// Snapshot copies the engine state.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		Stats:     e.stats,
		Mode:      e.modes.Current(),
		Target:    e.bar.Target(),
		Records:   e.records,
		Rejected:  e.rejected,
		Started:   e.started,
		Published: now,
	}
	for _, m := range model.Metrics {
		seq := e.history.Sequence(m)
		for i := 0; i < seq.Len(); i++ {
			s.History[m][i] = seq.At(i)
		}
	}
	return s
}

func (e *Engine) modeChanged(m nav.Mode, now time.Time) {
	log.Debug().Str("mode", m.String()).Float64("target", e.bar.Target()).Msg("dashboard: mode changed")
	e.emit(now)
}

func (e *Engine) emit(now time.Time) {
	if e.publish != nil {
		e.publish(e.Snapshot(now))
	}
}
