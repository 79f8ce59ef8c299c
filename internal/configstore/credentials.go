package configstore

import (
	"context"
	"errors"
	"strings"
)

const (
	KeyConfigured = "configured"
	KeySSID       = "wifi_ssid"
	KeyPassword   = "wifi_pass"
	KeyAPIKey     = "owm_key"
	KeyCity       = "owm_city"
	KeyUnits      = "owm_units"

	DefaultUnits = "imperial"
)

// ErrIncomplete is returned when a required credential is missing.
var ErrIncomplete = errors.New("network name, API key and city are required")

type Credentials struct {
	SSID     string
	Password string
	APIKey   string
	City     string
	Units    string
}

// Normalize trims input and fills in default units.
func (c Credentials) Normalize() Credentials {
	c.SSID = strings.TrimSpace(c.SSID)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.City = strings.TrimSpace(c.City)
	c.Units = strings.ToLower(strings.TrimSpace(c.Units))
	switch c.Units {
	case "imperial", "metric", "standard":
	default:
		c.Units = DefaultUnits
	}
	return c
}

func (c Credentials) Validate() error {
	c = c.Normalize()
	if c.SSID == "" || c.APIKey == "" || c.City == "" {
		return ErrIncomplete
	}
	return nil
}

// Load reads stored credentials. configured is false until a Save succeeded.
func Load(ctx context.Context, s Store) (c Credentials, configured bool, err error) {
	get := func(key string) string {
		if err != nil {
			return ""
		}
		v, e := s.Get(ctx, key)
		if e != nil && !errors.Is(e, ErrNotFound) {
			err = e
		}
		return v
	}
	flag := get(KeyConfigured)
	c = Credentials{
		SSID:     get(KeySSID),
		Password: get(KeyPassword),
		APIKey:   get(KeyAPIKey),
		City:     get(KeyCity),
		Units:    get(KeyUnits),
	}
	if err != nil {
		return Credentials{}, false, err
	}
	return c.Normalize(), flag == "1", nil
}

// Save validates and stores c, marking the device configured.
func Save(ctx context.Context, s Store, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c = c.Normalize()
	return s.SetAll(ctx, map[string]string{
		KeySSID:       c.SSID,
		KeyPassword:   c.Password,
		KeyAPIKey:     c.APIKey,
		KeyCity:       c.City,
		KeyUnits:      c.Units,
		KeyConfigured: "1",
	})
}
