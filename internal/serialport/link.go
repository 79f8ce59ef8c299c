package serialport

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is one thing that happened on the link: a chunk of bytes, or a
// connection state change.
type Event struct {
	Data      []byte
	Connected bool
	Port      string
	Err       error
}

// Opener opens the link device. Open satisfies it for real ports.
type Opener func(path string, baud int) (io.ReadCloser, error)

// Link keeps a serial port open, reopening it after a disconnect.
type Link struct {
	Path  string
	Baud  int
	Retry time.Duration
	Open  Opener
}

func NewLink(path string, baud int, retry time.Duration) *Link {
	if retry <= 0 {
		retry = 2 * time.Second
	}
	return &Link{
		Path:  path,
		Baud:  baud,
		Retry: retry,
		Open: func(path string, baud int) (io.ReadCloser, error) {
			return Open(path, baud)
		},
	}
}

// Run streams events into out until ctx is done, then closes out.
func (l *Link) Run(ctx context.Context, out chan<- Event) {
	defer close(out)
	for {
		path, err := Pick(l.Path)
		if err == nil {
			var port io.ReadCloser
			port, err = l.Open(path, l.Baud)
			if err == nil {
				log.Info().Str("port", path).Int("baud", l.Baud).Msg("serial link connected")
				if !send(ctx, out, Event{Connected: true, Port: path}) {
					_ = port.Close()
					return
				}
				err = pump(ctx, port, path, out)
				_ = port.Close()
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("port", path).Msg("serial link lost")
			}
		}
		if err != nil && !IsDisconnect(err) && !errors.Is(err, ErrNoPorts) {
			log.Error().Err(err).Str("port", l.Path).Msg("serial link unavailable")
		}
		if !send(ctx, out, Event{Connected: false, Port: path, Err: err}) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.Retry):
		}
	}
}

// Stream forwards r (stdin, a pipe) as a link that is always connected.
// out is closed at EOF or when ctx is done.
func Stream(ctx context.Context, r io.Reader, name string, out chan<- Event) {
	defer close(out)
	if !send(ctx, out, Event{Connected: true, Port: name}) {
		return
	}
	err := pump(ctx, r, name, out)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Str("source", name).Msg("telemetry stream failed")
	}
	send(ctx, out, Event{Connected: false, Port: name, Err: err})
}

// pump copies chunks from r until a read error. A read timeout on a serial
// port yields zero bytes and no error, which just loops.
func pump(ctx context.Context, r io.Reader, name string, out chan<- Event) error {
	buf := make([]byte, 256)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if !send(ctx, out, Event{Data: chunk, Connected: true, Port: name}) {
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}
	}
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
