package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrWaiting is returned while a failed open is inside its retry delay.
var ErrWaiting = errors.New("serialport: waiting to reopen port")

// Writer is the feeder side of the link: an io.Writer that opens the port
// lazily and drops it after a write error so the next write reopens it.
type Writer struct {
	Path string
	Baud int
	Open func(path string, baud int) (io.WriteCloser, error)
	// Retry is the minimum time between failed open attempts.
	Retry time.Duration

	mu     sync.Mutex
	port   io.WriteCloser
	name   string
	failed time.Time
}

func NewWriter(path string, baud int) *Writer {
	return &Writer{
		Path: path,
		Baud: baud,
		Open: func(path string, baud int) (io.WriteCloser, error) {
			return Open(path, baud)
		},
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.port == nil {
		if !w.failed.IsZero() && time.Since(w.failed) < w.Retry {
			return 0, ErrWaiting
		}
		path, err := Pick(w.Path)
		if err != nil {
			w.failed = time.Now()
			return 0, err
		}
		port, err := w.Open(path, w.Baud)
		if err != nil {
			w.failed = time.Now()
			return 0, err
		}
		w.failed = time.Time{}
		log.Info().Str("port", path).Int("baud", w.Baud).Msg("connected")
		w.port, w.name = port, path
	}
	n, err := w.port.Write(p)
	if err != nil {
		_ = w.port.Close()
		w.port = nil
		return n, fmt.Errorf("write %s: %w", w.name, err)
	}
	return n, nil
}

// Connected reports whether a port is currently open.
func (w *Writer) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.port != nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.port == nil {
		return nil
	}
	err := w.port.Close()
	w.port = nil
	return err
}
