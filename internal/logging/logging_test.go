package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"loud":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupFiltersByLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	Setup(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Str("port", "/dev/ttyACM0").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"port":"/dev/ttyACM0"`) {
		t.Fatalf("log output = %s", out)
	}
}

func TestFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	path := filepath.Join(t.TempDir(), "pcmonitor.log")
	c, err := File(path, "info")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	log.Info().Msg("hello")
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := File(filepath.Join(path, "nested"), "info"); err == nil {
		t.Fatalf("opening a log under a file succeeded")
	}
}
