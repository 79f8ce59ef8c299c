// Package weather fetches current conditions and a three day outlook from
// OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// ErrNotConfigured is returned when no API key or city is available.
var ErrNotConfigured = errors.New("weather: api key and city required")

// Query selects what to fetch.
type Query struct {
	Key   string
	City  string
	Units string
}

func (q Query) Valid() bool { return q.Key != "" && q.City != "" }

func (q Query) units() string {
	if q.Units == "" {
		return "imperial"
	}
	return q.Units
}

// StatusError is a non-200 reply from the API.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather: %s returned HTTP %d: %s", e.Endpoint, e.Code, e.Body)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch returns current conditions plus the daily outlook. A failed forecast
// request still returns the current conditions, with every slot invalid.
func (c *Client) Fetch(ctx context.Context, q Query) (model.Weather, error) {
	w, err := c.Current(ctx, q)
	if err != nil {
		return w, err
	}
	slots, tz, err := c.Forecast(ctx, q, w.Updated, w.TimezoneOffset)
	if err != nil {
		log.Warn().Err(err).Str("city", q.City).Msg("weather: forecast failed, keeping current conditions")
		return w, nil
	}
	w.TimezoneOffset = tz
	w.Forecast = slots
	return w, nil
}

type currentReply struct {
	Name     string `json:"name"`
	Dt       int64  `json:"dt"`
	Timezone *int32 `json:"timezone"`
	Main     struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *float64 `json:"pressure"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []condition `json:"weather"`
}

type condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Current fetches /data/2.5/weather.
func (c *Client) Current(ctx context.Context, q Query) (model.Weather, error) {
	var r currentReply
	if err := c.get(ctx, "/data/2.5/weather", q, &r); err != nil {
		return model.Weather{}, err
	}
	w := model.Weather{
		Location:    r.Name,
		Description: "n/a",
		Icon:        "01d",
		Units:       q.units(),
		Temperature: opt(r.Main.Temp),
		FeelsLike:   opt(r.Main.FeelsLike),
		TempMin:     opt(r.Main.TempMin),
		TempMax:     opt(r.Main.TempMax),
		Pressure:    opt(r.Main.Pressure),
		Humidity:    opt(r.Main.Humidity),
		WindSpeed:   opt(r.Wind.Speed),
		Updated:     r.Dt,
		OK:          true,
		Connected:   true,
	}
	if w.Location == "" {
		w.Location = q.City
	}
	if r.Timezone != nil {
		w.TimezoneOffset = *r.Timezone
	}
	if len(r.Weather) > 0 {
		w.Description, w.Icon = describe(r.Weather[0])
	}
	return w, nil
}

type forecastReply struct {
	City struct {
		Timezone *int32 `json:"timezone"`
	} `json:"city"`
	List []Entry `json:"list"`
}

// Entry is one three-hour forecast step.
type Entry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMin *float64 `json:"temp_min"`
		TempMax *float64 `json:"temp_max"`
	} `json:"main"`
	Weather []condition `json:"weather"`
}

// Forecast fetches /data/2.5/forecast and buckets it into daily slots relative
// to the observation time. tz is the city offset, falling back to the one given.
func (c *Client) Forecast(ctx context.Context, q Query, observed int64, tz int32) ([model.ForecastSlots]model.Forecast, int32, error) {
	var slots [model.ForecastSlots]model.Forecast
	var r forecastReply
	if err := c.get(ctx, "/data/2.5/forecast", q, &r); err != nil {
		return slots, tz, err
	}
	if len(r.List) == 0 {
		return slots, tz, errors.New("weather: forecast has no entries")
	}
	if r.City.Timezone != nil {
		tz = *r.City.Timezone
	}
	slots, ok := Bucket(r.List, observed, tz)
	if !ok {
		return slots, tz, errors.New("weather: forecast has no entries for the next three days")
	}
	return slots, tz, nil
}

func (c *Client) get(ctx context.Context, path string, q Query, out any) error {
	if !q.Valid() {
		return ErrNotConfigured
	}
	v := url.Values{}
	v.Set("q", q.City)
	v.Set("appid", q.Key)
	v.Set("units", q.units())
	endpoint := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+v.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: build request: %w", err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("weather: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Endpoint: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather: decode %s: %w", path, err)
	}
	return nil
}

func describe(c condition) (desc, icon string) {
	desc, icon = c.Description, c.Icon
	if desc == "" {
		desc = "n/a"
	}
	if icon == "" {
		icon = "01d"
	}
	return desc, icon
}

func opt(v *float64) model.Optional {
	if v == nil {
		return model.None()
	}
	return model.Some(*v)
}
