// Package serialport carries telemetry records over a USB serial link.
package serialport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaud = 115200
	// ReadTimeout bounds a single Read so a reader can notice cancellation.
	ReadTimeout = 100 * time.Millisecond
)

// ErrNoPorts is returned when no port was configured and none can be found.
var ErrNoPorts = errors.New("no serial ports found")

// Open opens path as 8N1 at baud with a short read timeout.
func Open(path string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return port, nil
}

// List returns the serial ports present on this host.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

// Pick returns preferred when set, otherwise the first port listed.
func Pick(preferred string) (string, error) {
	if preferred != "" {
		return preferred, nil
	}
	ports, err := List()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", ErrNoPorts
	}
	return ports[0], nil
}

// IsDisconnect reports whether err means the device went away, as opposed
// to a configuration or permission problem that retrying will not fix.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}
	// The library returns *PortError from Open and PortError elsewhere.
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return gone(portErr.Code())
	}
	var portErrVal serial.PortError
	if errors.As(err, &portErrVal) {
		return gone(portErrVal.Code())
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "device not configured") ||
		strings.Contains(msg, "input/output error") ||
		strings.Contains(msg, "no such device") ||
		strings.Contains(msg, "no such file") ||
		strings.Contains(msg, "broken pipe")
}

func gone(code serial.PortErrorCode) bool {
	switch code {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	}
	return false
}
