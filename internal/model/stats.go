package model

import (
	"math"
	"strconv"
	"time"
)

// Optional is a reading that may be absent. Absent readings encode as JSON null.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a present reading. Non-finite values are treated as absent.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// None is the absent reading.
func None() Optional { return Optional{} }

// Or returns the reading, or def when absent.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, o.Value, 'f', -1, 64), nil
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Metric names one of the sampled series shown as a bar and sparkline.
type Metric int

const (
	MetricCPU Metric = iota
	MetricGPU
	MetricDisk
)

// Metrics lists the sampled series in display order.
var Metrics = []Metric{MetricCPU, MetricGPU, MetricDisk}

func (m Metric) String() string {
	switch m {
	case MetricCPU:
		return "cpu"
	case MetricGPU:
		return "gpu"
	case MetricDisk:
		return "disk"
	}
	return "unknown"
}

// Stats is the latest decoded telemetry snapshot sent by the host feeder.
type Stats struct {
	CPU      float64 // percent 0-100
	Mem      float64 // percent 0-100
	GPU      float64 // percent 0-100
	DiskPct  float64 // throughput as percent of the feeder's full scale
	DiskMBps float64

	CPUTempF    Optional
	GPUTempF    Optional
	FreeC       Optional // GB
	FreeD       Optional // GB
	IndoorTempF Optional

	// Updated is zero until the first record is decoded.
	Updated time.Time
}

// Unknown returns the startup snapshot: nothing received yet.
func Unknown() Stats { return Stats{} }

// HasData reports whether any record has been decoded.
func (s Stats) HasData() bool { return !s.Updated.IsZero() }

// Age is the time since the last decoded record; ok is false before the first one.
func (s Stats) Age(now time.Time) (age time.Duration, ok bool) {
	if !s.HasData() {
		return 0, false
	}
	age = now.Sub(s.Updated)
	if age < 0 {
		age = 0
	}
	return age, true
}

// Value returns the percentage that drives the bar for m.
func (s Stats) Value(m Metric) float64 {
	switch m {
	case MetricCPU:
		return s.CPU
	case MetricGPU:
		return s.GPU
	case MetricDisk:
		return s.DiskPct
	}
	return 0
}
