package model

// ForecastSlots is the number of daily forecast slots: today and the next two days.
const ForecastSlots = 3

// Forecast is one daily slot. Slots are independent: any of them may be invalid.
type Forecast struct {
	Valid       bool
	Label       string // "Today", then abbreviated weekday
	Description string
	Icon        string
	Timestamp   int64 // representative entry, epoch seconds
	High        Optional
	Low         Optional
}

// Weather is the read-only snapshot supplied by the weather poller.
type Weather struct {
	Location    string
	Description string
	Icon        string
	Units       string // imperial, metric or standard

	Temperature Optional
	FeelsLike   Optional
	TempMin     Optional
	TempMax     Optional
	Humidity    Optional
	Pressure    Optional
	WindSpeed   Optional

	Updated        int64 // epoch seconds of the observation
	TimezoneOffset int32 // seconds east of UTC

	OK        bool // last fetch succeeded
	Connected bool // network reachable on last attempt

	Forecast [ForecastSlots]Forecast
}

// TempSymbol is the unit suffix for temperatures in w.
func (w Weather) TempSymbol() string {
	switch w.Units {
	case "metric":
		return "C"
	case "standard":
		return "K"
	}
	return "F"
}
