package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

const DefaultInterval = 5 * time.Minute

// Fetcher is what the poller needs from a client.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (model.Weather, error)
}

// Poller refreshes weather on a fixed interval in its own goroutine and keeps
// the latest snapshot for the render loop and HTTP handlers.
type Poller struct {
	Interval time.Duration
	fetcher  Fetcher
	query    func(ctx context.Context) Query

	mu      sync.RWMutex
	current model.Weather
	lastErr error

	kick chan struct{}
}

// NewPoller reads credentials through query before every fetch, so saved
// changes take effect on the next refresh.
func NewPoller(f Fetcher, interval time.Duration, query func(ctx context.Context) Query) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		Interval: interval,
		fetcher:  f,
		query:    query,
		kick:     make(chan struct{}, 1),
	}
}

// Run fetches immediately and then every Interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		case <-p.kick:
			p.Refresh(ctx)
		}
	}
}

// Trigger asks Run for an early refresh without blocking.
func (p *Poller) Trigger() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Refresh fetches once. On failure the previous data is kept and marked stale.
func (p *Poller) Refresh(ctx context.Context) error {
	q := p.query(ctx)
	w, err := p.fetcher.Fetch(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.current.OK = false
		var se *StatusError
		p.current.Connected = errors.As(err, &se)
		if errors.Is(err, ErrNotConfigured) {
			log.Debug().Msg("weather: not configured")
		} else {
			log.Warn().Err(err).Str("city", q.City).Msg("weather: refresh failed")
		}
		return err
	}
	p.current = w
	log.Info().Str("location", w.Location).Str("desc", w.Description).Msg("weather updated")
	return nil
}

// Latest returns a copy of the last snapshot.
func (p *Poller) Latest() model.Weather {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Poller) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
