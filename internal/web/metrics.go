package web

import (
	"time"

	"github.com/Dicklesworthstone/pcmonitor/internal/dashboard"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

// Metrics is the /metrics and /ws payload. Missing readings are null.
type Metrics struct {
	CPU         float64        `json:"cpu"`
	Mem         float64        `json:"mem"`
	GPU         float64        `json:"gpu"`
	DiskPct     float64        `json:"diskPct"`
	DiskMBps    float64        `json:"diskMBps"`
	CPUTempF    model.Optional `json:"cpuTempF"`
	GPUTempF    model.Optional `json:"gpuTempF"`
	FreeC       model.Optional `json:"freeC"`
	FreeD       model.Optional `json:"freeD"`
	IndoorTempF model.Optional `json:"indoorTempF"`

	// DataAgeMs is -1 until the first record arrives.
	DataAgeMs int64  `json:"dataAgeMs"`
	UptimeMs  int64  `json:"uptimeMs"`
	Mode      string `json:"mode"`
	Records   uint64 `json:"records"`

	Weather  *WeatherJSON   `json:"weather,omitempty"`
	Forecast []ForecastJSON `json:"forecast,omitempty"`
}

type WeatherJSON struct {
	Location       string         `json:"location"`
	Description    string         `json:"description"`
	Icon           string         `json:"icon"`
	Units          string         `json:"units"`
	Temperature    model.Optional `json:"temperature"`
	FeelsLike      model.Optional `json:"feelsLike"`
	TempMin        model.Optional `json:"tempMin"`
	TempMax        model.Optional `json:"tempMax"`
	Humidity       model.Optional `json:"humidity"`
	WindSpeed      model.Optional `json:"windSpeed"`
	Updated        int64          `json:"updated"`
	TimezoneOffset int32          `json:"timezoneOffset"`
	OK             bool           `json:"ok"`
	Connected      bool           `json:"connected"`
}

// ForecastJSON carries only slot and valid for an empty slot.
type ForecastJSON struct {
	Slot        int             `json:"slot"`
	Valid       bool            `json:"valid"`
	Label       string          `json:"label,omitempty"`
	Description string          `json:"description,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
	High        *model.Optional `json:"high,omitempty"`
	Low         *model.Optional `json:"low,omitempty"`
}

// BuildMetrics assembles the payload. w is nil when weather is disabled.
func BuildMetrics(snap dashboard.Snapshot, w *model.Weather, now time.Time) Metrics {
	s := snap.Stats
	m := Metrics{
		CPU:         s.CPU,
		Mem:         s.Mem,
		GPU:         s.GPU,
		DiskPct:     s.DiskPct,
		DiskMBps:    s.DiskMBps,
		CPUTempF:    s.CPUTempF,
		GPUTempF:    s.GPUTempF,
		FreeC:       s.FreeC,
		FreeD:       s.FreeD,
		IndoorTempF: s.IndoorTempF,
		DataAgeMs:   -1,
		UptimeMs:    snap.Uptime(now).Milliseconds(),
		Mode:        snap.Mode.String(),
		Records:     snap.Records,
	}
	if age, ok := snap.DataAge(now); ok {
		m.DataAgeMs = age.Milliseconds()
	}
	if w == nil {
		return m
	}

	m.Weather = &WeatherJSON{
		Location:       w.Location,
		Description:    w.Description,
		Icon:           w.Icon,
		Units:          w.Units,
		Temperature:    w.Temperature,
		FeelsLike:      w.FeelsLike,
		TempMin:        w.TempMin,
		TempMax:        w.TempMax,
		Humidity:       nonNegative(w.Humidity),
		WindSpeed:      nonNegative(w.WindSpeed),
		Updated:        w.Updated,
		TimezoneOffset: w.TimezoneOffset,
		OK:             w.OK,
		Connected:      w.Connected,
	}
	m.Forecast = make([]ForecastJSON, len(w.Forecast))
	for i, f := range w.Forecast {
		day := ForecastJSON{Slot: i, Valid: f.Valid}
		if f.Valid {
			high, low := f.High, f.Low
			day.Label = f.Label
			day.Description = f.Description
			day.Icon = f.Icon
			day.Timestamp = f.Timestamp
			day.High = &high
			day.Low = &low
		}
		m.Forecast[i] = day
	}
	return m
}

func nonNegative(o model.Optional) model.Optional {
	if o.Valid && o.Value < 0 {
		return model.None()
	}
	return o
}
