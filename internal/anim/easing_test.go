package anim

import (
	"math"
	"testing"
	"time"
)

const frame = time.Second / 30

func TestEasingConverges(t *testing.T) {
	now := time.Unix(1000, 0)
	e := NewEasing(now)
	e.SetTarget(100)
	for i := 0; i < 30; i++ {
		now = now.Add(frame)
		e.Advance(now)
	}
	if d := e.Displayed(); math.Abs(100-d) > 1.0 {
		t.Fatalf("displayed = %.3f after one second, want within 1.0 of 100", d)
	}
}

func TestEasingNeverOvershoots(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		to    float64
	}{
		{"up", 0, 80},
		{"down", 90, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Unix(0, 0)
			e := NewEasing(now)
			e.SetTarget(tc.start)
			for i := 0; i < 200; i++ {
				now = now.Add(frame)
				e.Advance(now)
			}
			e.SetTarget(tc.to)
			prev := e.Displayed()
			for i := 0; i < 120; i++ {
				now = now.Add(frame)
				e.Advance(now)
				d := e.Displayed()
				if tc.to > tc.start && (d < prev || d > tc.to) {
					t.Fatalf("step %d: %.4f after %.4f heading to %.1f", i, d, prev, tc.to)
				}
				if tc.to < tc.start && (d > prev || d < tc.to) {
					t.Fatalf("step %d: %.4f after %.4f heading to %.1f", i, d, prev, tc.to)
				}
				prev = d
			}
		})
	}
}

func TestEasingClampsStep(t *testing.T) {
	now := time.Unix(0, 0)
	e := NewEasing(now)
	e.SetTarget(100)
	e.Advance(now.Add(10 * time.Second))

	want := 100 * (1 - math.Exp(-Rate*MaxStep.Seconds()))
	if d := e.Displayed(); math.Abs(d-want) > 1e-9 {
		t.Fatalf("displayed = %.6f after a long stall, want %.6f", d, want)
	}
}

func TestEasingIgnoresBackwardsClock(t *testing.T) {
	now := time.Unix(100, 0)
	e := NewEasing(now)
	e.SetTarget(50)
	e.Advance(now.Add(-time.Second))
	if e.Displayed() != 0 {
		t.Fatalf("displayed moved on a backwards clock: %v", e.Displayed())
	}
}

func TestSetTargetClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{150, 100},
		{math.NaN(), 0},
	}
	for _, tc := range tests {
		e := NewEasing(time.Time{})
		e.SetTarget(tc.in)
		if e.Target() != tc.want {
			t.Errorf("SetTarget(%v) -> %v, want %v", tc.in, e.Target(), tc.want)
		}
		if e.Displayed() != 0 {
			t.Errorf("SetTarget(%v) touched displayed", tc.in)
		}
	}
}
