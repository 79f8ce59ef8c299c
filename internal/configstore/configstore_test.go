package configstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSaveRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		c    Credentials
	}{
		{"empty", Credentials{}},
		{"no ssid", Credentials{APIKey: "k", City: "Oslo"}},
		{"no key", Credentials{SSID: "home", City: "Oslo"}},
		{"blank city", Credentials{SSID: "home", APIKey: "k", City: "   "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewMemory()
			if err := Save(context.Background(), s, tc.c); !errors.Is(err, ErrIncomplete) {
				t.Fatalf("Save err = %v, want ErrIncomplete", err)
			}
			if _, err := s.Get(context.Background(), KeyConfigured); !errors.Is(err, ErrNotFound) {
				t.Fatalf("rejected save wrote to the store")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	c, configured, err := Load(ctx, s)
	if err != nil || configured {
		t.Fatalf("fresh store: configured=%v err=%v", configured, err)
	}
	if c.Units != DefaultUnits {
		t.Fatalf("default units = %q", c.Units)
	}

	in := Credentials{SSID: " home ", Password: "secret", APIKey: "abc", City: "Oslo,NO", Units: "Metric"}
	if err := Save(ctx, s, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, configured, err := Load(ctx, s)
	if err != nil || !configured {
		t.Fatalf("Load: configured=%v err=%v", configured, err)
	}
	want := Credentials{SSID: "home", Password: "secret", APIKey: "abc", City: "Oslo,NO", Units: "metric"}
	if out != want {
		t.Fatalf("loaded %+v, want %+v", out, want)
	}
}

type brokenStore struct{ Memory }

func (b *brokenStore) Get(context.Context, string) (string, error) {
	return "", errors.New("connection reset")
}

func TestLoadPropagatesStoreErrors(t *testing.T) {
	if _, _, err := Load(context.Background(), &brokenStore{}); err == nil {
		t.Fatalf("store error swallowed")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, RedisOptions{Addr: "127.0.0.1:1", Prefix: "pcmonitor:"})
	if err == nil || !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Fatalf("NewRedis err = %v", err)
	}
}
