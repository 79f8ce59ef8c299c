package weather

import (
	"math"
	"time"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

const (
	secondsPerDay = 86400
	middaySeconds = 12 * 3600
)

type bucket struct {
	used      bool
	low, high float64
	repTs     int64
	bestDelta int64
	cond      condition
}

// Bucket groups forecast entries into daily slots. Day boundaries are in the
// city's local time (tz seconds east of UTC). Slot 0 is the day of observed,
// or of the first entry when observed is unset. Each slot takes the lowest
// minimum and highest maximum of its entries, and the conditions of the entry
// closest to local midday. ok is false when no slot received an entry.
func Bucket(entries []Entry, observed int64, tz int32) (slots [model.ForecastSlots]model.Forecast, ok bool) {
	baseDay := localDay(observed, tz)
	if observed <= 0 || baseDay <= 0 {
		if len(entries) == 0 {
			return slots, false
		}
		baseDay = localDay(entries[0].Dt, tz)
	}

	var b [model.ForecastSlots]bucket
	for i := range b {
		b[i] = bucket{low: math.Inf(1), high: math.Inf(-1), bestDelta: math.MaxInt64}
	}
	for _, e := range entries {
		if e.Dt == 0 {
			continue
		}
		idx := localDay(e.Dt, tz) - baseDay
		if idx < 0 || idx >= model.ForecastSlots {
			continue
		}
		bk := &b[idx]
		bk.used = true
		if v := e.Main.TempMin; v != nil && !math.IsNaN(*v) {
			bk.low = math.Min(bk.low, *v)
		}
		if v := e.Main.TempMax; v != nil && !math.IsNaN(*v) {
			bk.high = math.Max(bk.high, *v)
		}
		secs := (e.Dt + int64(tz)) % secondsPerDay
		if secs < 0 {
			secs += secondsPerDay
		}
		delta := secs - middaySeconds
		if delta < 0 {
			delta = -delta
		}
		if delta < bk.bestDelta {
			bk.bestDelta = delta
			bk.repTs = e.Dt
			bk.cond = condition{}
			if len(e.Weather) > 0 {
				bk.cond = e.Weather[0]
			}
		}
	}

	for i, bk := range b {
		if !bk.used {
			continue
		}
		ok = true
		desc, icon := describe(bk.cond)
		slots[i] = model.Forecast{
			Valid:       true,
			Label:       dayLabel(bk.repTs, tz, i == 0),
			Description: desc,
			Icon:        icon,
			Timestamp:   bk.repTs,
			High:        model.Some(bk.high),
			Low:         model.Some(bk.low),
		}
	}
	return slots, ok
}

func localDay(ts int64, tz int32) int64 {
	return floorDiv(ts+int64(tz), secondsPerDay)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func dayLabel(ts int64, tz int32, today bool) string {
	if today {
		return "Today"
	}
	return time.Unix(ts+int64(tz), 0).UTC().Format("Mon")
}
