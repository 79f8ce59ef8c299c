package telemetry

import "github.com/Dicklesworthstone/pcmonitor/internal/model"

// HistoryLen is the number of samples kept per metric for the sparkline.
const HistoryLen = 60

// HistorySet holds one circular buffer per metric behind a single write
// cursor, so index i of every series belongs to the same record.
// Buffers are zero-filled until real samples arrive.
type HistorySet struct {
	cursor int
	series [3][HistoryLen]float64
}

// Record stores one sample per metric at the cursor and advances it.
func (h *HistorySet) Record(cpu, gpu, disk float64) {
	h.series[model.MetricCPU][h.cursor] = cpu
	h.series[model.MetricGPU][h.cursor] = gpu
	h.series[model.MetricDisk][h.cursor] = disk
	h.cursor = (h.cursor + 1) % HistoryLen
}

// RecordStats stores the bar metrics of s.
func (h *HistorySet) RecordStats(s model.Stats) {
	h.Record(s.CPU, s.GPU, s.DiskPct)
}

// Cursor is the slot the next sample will overwrite, which is also the oldest sample.
func (h *HistorySet) Cursor() int { return h.cursor }

// Sequence returns a read-only view of m ordered oldest to newest.
func (h *HistorySet) Sequence(m model.Metric) Sequence {
	return Sequence{h: h, m: m}
}

// Sequence is a lazy view over one series. It reads the live cursor on every
// access, so it can be walked repeatedly and always reflects the latest record.
type Sequence struct {
	h *HistorySet
	m model.Metric
}

func (s Sequence) Len() int { return HistoryLen }

// At returns the i-th sample, 0 being the oldest.
func (s Sequence) At(i int) float64 {
	if s.h == nil || i < 0 || i >= HistoryLen || s.m < 0 || int(s.m) >= len(s.h.series) {
		return 0
	}
	return s.h.series[s.m][(s.h.cursor+i)%HistoryLen]
}

// Values copies the sequence.
func (s Sequence) Values() []float64 {
	out := make([]float64, HistoryLen)
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// Bounds returns the smallest and largest sample.
func (s Sequence) Bounds() (lo, hi float64) {
	lo, hi = s.At(0), s.At(0)
	for i := 1; i < HistoryLen; i++ {
		v := s.At(i)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
