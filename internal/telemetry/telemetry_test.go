package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

func TestAccumulatorRecords(t *testing.T) {
	a := NewLineAccumulator()
	var got []string
	a.Write([]byte("1,2\r\n3,4\npartial"), func(r string) { got = append(got, r) })
	if len(got) != 2 || got[0] != "1,2" || got[1] != "3,4" {
		t.Fatalf("records = %q", got)
	}
	if a.Pending() != len("partial") {
		t.Fatalf("pending = %d", a.Pending())
	}
}

func TestAccumulatorKeepsMostRecentBytes(t *testing.T) {
	a := NewLineAccumulator()
	var sent strings.Builder
	for i := 0; i < 250; i++ {
		b := byte('a' + i%26)
		sent.WriteByte(b)
		if _, ok := a.Feed(b); ok {
			t.Fatalf("record emitted without newline at byte %d", i)
		}
		if a.Pending() > MaxRecordLen {
			t.Fatalf("buffer grew to %d", a.Pending())
		}
	}
	rec, ok := a.Feed('\n')
	if !ok {
		t.Fatalf("newline did not complete a record")
	}
	if len(rec) != MaxRecordLen {
		t.Fatalf("record length = %d, want %d", len(rec), MaxRecordLen)
	}
	if want := sent.String()[250-MaxRecordLen:]; rec != want {
		t.Fatalf("record is not the last %d bytes sent", MaxRecordLen)
	}
	if a.Pending() != 0 {
		t.Fatalf("buffer not cleared")
	}
}

func TestParseFullRecord(t *testing.T) {
	now := time.Now()
	s, ok := Parse("45,60,30,50,12.5,70,80,100,200,68", now)
	if !ok {
		t.Fatalf("record rejected")
	}
	want := model.Stats{
		CPU: 45, Mem: 60, GPU: 30, DiskPct: 50, DiskMBps: 12.5,
		CPUTempF: model.Some(70), GPUTempF: model.Some(80),
		FreeC: model.Some(100), FreeD: model.Some(200),
		IndoorTempF: model.Some(68),
		Updated:     now,
	}
	if s != want {
		t.Fatalf("stats = %+v\nwant   %+v", s, want)
	}
}

func TestParseDefaultsIndoorToCPUTemp(t *testing.T) {
	s, ok := Parse("1,2,3,4,5,71.5,7,8,9", time.Now())
	if !ok {
		t.Fatalf("nine-field record rejected")
	}
	if s.IndoorTempF != s.CPUTempF || s.IndoorTempF.Value != 71.5 {
		t.Fatalf("indoor = %+v, cpu temp = %+v", s.IndoorTempF, s.CPUTempF)
	}
}

func TestParseRejectsShortRecords(t *testing.T) {
	cases := []string{"", "10,20,30", "1,2,3,4,5,6,7,8"}
	for _, line := range cases {
		if _, ok := Parse(line, time.Now()); ok {
			t.Errorf("Parse(%q) accepted", line)
		}
	}
}

func TestParseLossyFields(t *testing.T) {
	s, ok := Parse("abc, 12 ,NaN,4%,,-999,-999,-1,50,1,2,3", time.Now())
	if !ok {
		t.Fatalf("record rejected")
	}
	if s.CPU != 0 || s.Mem != 12 || s.GPU != 0 || s.DiskPct != 4 || s.DiskMBps != 0 {
		t.Fatalf("numeric fields = %+v", s)
	}
	if s.CPUTempF.Valid || s.GPUTempF.Valid || s.FreeC.Valid {
		t.Fatalf("wire markers decoded as readings: %+v", s)
	}
	if !s.FreeD.Valid || s.FreeD.Value != 50 {
		t.Fatalf("freeD = %+v", s.FreeD)
	}
	if !s.IndoorTempF.Valid || s.IndoorTempF.Value != 1 {
		t.Fatalf("indoor = %+v", s.IndoorTempF)
	}
}

func TestFormatParses(t *testing.T) {
	in := model.Stats{
		CPU: 12.5, Mem: 40, GPU: 3, DiskPct: 8, DiskMBps: 42.25,
		CPUTempF: model.Some(150), FreeC: model.Some(321),
	}
	line := Format(in)
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("record not newline terminated: %q", line)
	}
	out, ok := Parse(strings.TrimSuffix(line, "\n"), time.Time{})
	if !ok {
		t.Fatalf("formatted record rejected: %q", line)
	}
	if out.GPUTempF.Valid || out.FreeD.Valid {
		t.Fatalf("missing readings came back: %+v", out)
	}
	if out.CPU != 12.5 || out.DiskMBps != 42.25 || out.CPUTempF.Value != 150 || out.FreeC.Value != 321 {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestHistoryOrdering(t *testing.T) {
	var h HistorySet
	for i := 1; i <= HistoryLen; i++ {
		h.Record(float64(i), 0, 0)
	}
	seq := h.Sequence(model.MetricCPU)
	for i := 0; i < HistoryLen; i++ {
		if got := seq.At(i); got != float64(i+1) {
			t.Fatalf("after %d records At(%d) = %v", HistoryLen, i, got)
		}
	}

	h.Record(61, 0, 0)
	vals := seq.Values()
	if vals[0] != 2 || vals[HistoryLen-1] != 61 {
		t.Fatalf("after 61 records got first=%v last=%v", vals[0], vals[HistoryLen-1])
	}
	for i := 1; i < HistoryLen; i++ {
		if vals[i] != vals[i-1]+1 {
			t.Fatalf("sequence not contiguous at %d: %v", i, vals)
		}
	}
}

func TestHistorySharedCursor(t *testing.T) {
	var h HistorySet
	if vals := h.Sequence(model.MetricGPU).Values(); len(vals) != HistoryLen || vals[0] != 0 {
		t.Fatalf("empty history = %v", vals)
	}
	h.RecordStats(model.Stats{CPU: 1, GPU: 2, DiskPct: 3})
	h.RecordStats(model.Stats{CPU: 4, GPU: 5, DiskPct: 6})
	if h.Cursor() != 2 {
		t.Fatalf("cursor = %d", h.Cursor())
	}
	last := HistoryLen - 1
	for m, want := range map[model.Metric]float64{model.MetricCPU: 4, model.MetricGPU: 5, model.MetricDisk: 6} {
		if got := h.Sequence(m).At(last); got != want {
			t.Errorf("%s newest = %v, want %v", m, got, want)
		}
	}
	lo, hi := h.Sequence(model.MetricDisk).Bounds()
	if lo != 0 || hi != 6 {
		t.Fatalf("bounds = %v..%v", lo, hi)
	}
}
