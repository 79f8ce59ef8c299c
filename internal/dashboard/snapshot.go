package dashboard

import (
	"sync"
	"time"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/nav"
	"github.com/Dicklesworthstone/pcmonitor/internal/telemetry"
)

// Snapshot is an immutable copy of the engine state for readers outside the
// render loop (HTTP handlers, the websocket hub).
type Snapshot struct {
	Stats     model.Stats
	Mode      nav.Mode
	Target    float64
	History   [3][telemetry.HistoryLen]float64
	Records   uint64
	Rejected  uint64
	Started   time.Time
	Published time.Time
}

// DataAge is the time since the last accepted record; ok is false before the first.
func (s Snapshot) DataAge(now time.Time) (time.Duration, bool) {
	return s.Stats.Age(now)
}

func (s Snapshot) Uptime(now time.Time) time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	return now.Sub(s.Started)
}

// Series returns the history of m ordered oldest to newest.
func (s Snapshot) Series(m model.Metric) []float64 {
	if m < 0 || int(m) >= len(s.History) {
		return nil
	}
	out := make([]float64, telemetry.HistoryLen)
	copy(out, s.History[m][:])
	return out
}

// Latest holds the most recently published snapshot.
type Latest struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []func(Snapshot)
}

// NewLatest seeds the holder so readers see a valid startup snapshot.
func NewLatest(now time.Time) *Latest {
	return &Latest{snap: Snapshot{Started: now, Published: now}}
}

func (l *Latest) Store(s Snapshot) {
	l.mu.Lock()
	l.snap = s
	subs := l.subs
	l.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (l *Latest) Load() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// OnStore registers fn to run after every Store. fn must not block.
func (l *Latest) OnStore(fn func(Snapshot)) {
	l.mu.Lock()
	subs := make([]func(Snapshot), 0, len(l.subs)+1)
	l.subs = append(append(subs, l.subs...), fn)
	l.mu.Unlock()
}
