// Package nav holds the display mode cycle and the input gestures that drive it.
package nav

import "github.com/Dicklesworthstone/pcmonitor/internal/model"

type Mode int

const (
	ModeCPU Mode = iota
	ModeGPU
	ModeDisk
	ModeWeather
)

// StatsModes is the cycle for builds without weather.
var StatsModes = []Mode{ModeCPU, ModeGPU, ModeDisk}

// AllModes adds the weather page.
var AllModes = []Mode{ModeCPU, ModeGPU, ModeDisk, ModeWeather}

func (m Mode) String() string {
	switch m {
	case ModeCPU:
		return "CPU"
	case ModeGPU:
		return "GPU"
	case ModeDisk:
		return "DISK"
	case ModeWeather:
		return "WEATHER"
	}
	return "UNKNOWN"
}

// Metric is the series a mode plots. Weather has none.
func (m Mode) Metric() (model.Metric, bool) {
	switch m {
	case ModeCPU:
		return model.MetricCPU, true
	case ModeGPU:
		return model.MetricGPU, true
	case ModeDisk:
		return model.MetricDisk, true
	}
	return 0, false
}

// Target is the bar value a mode shows for s. Modes without a bar show 0.
func (m Mode) Target(s model.Stats) float64 {
	metric, ok := m.Metric()
	if !ok {
		return 0
	}
	return s.Value(metric)
}

// Controller cycles through an ordered list of modes. onChange fires after
// every transition, including a wrap back to the same mode.
type Controller struct {
	modes    []Mode
	idx      int
	onChange func(Mode)
}

// NewController starts on the first mode. An empty list falls back to StatsModes.
func NewController(modes []Mode, onChange func(Mode)) *Controller {
	if len(modes) == 0 {
		modes = StatsModes
	}
	return &Controller{
		modes:    append([]Mode(nil), modes...),
		onChange: onChange,
	}
}

func (c *Controller) Current() Mode { return c.modes[c.idx] }

func (c *Controller) Modes() []Mode { return append([]Mode(nil), c.modes...) }

func (c *Controller) Next() Mode {
	c.idx = (c.idx + 1) % len(c.modes)
	return c.changed()
}

func (c *Controller) Prev() Mode {
	c.idx = (c.idx + len(c.modes) - 1) % len(c.modes)
	return c.changed()
}

// Set jumps to m if it is part of the cycle.
func (c *Controller) Set(m Mode) bool {
	for i, v := range c.modes {
		if v == m {
			c.idx = i
			c.changed()
			return true
		}
	}
	return false
}

func (c *Controller) changed() Mode {
	m := c.modes[c.idx]
	if c.onChange != nil {
		c.onChange(m)
	}
	return m
}
