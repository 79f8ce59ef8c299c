package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries runtime options for the pcmonitor dashboard.
type Config struct {
	Port  string
	Baud  int
	Stdin bool

	Listen string
	MDNS   bool

	FramePeriod    time.Duration
	SwipeThreshold int
	LongPress      time.Duration
	Debounce       time.Duration

	Weather         bool
	WeatherInterval time.Duration
	OWMKey          string
	OWMCity         string
	OWMUnits        string
	OWMBaseURL      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	LogFile  string
	LogLevel string
}

func Default() Config {
	return Config{
		Port:            "",
		Baud:            115200,
		Stdin:           false,
		Listen:          ":8080",
		MDNS:            true,
		FramePeriod:     33 * time.Millisecond,
		SwipeThreshold:  10,
		LongPress:       3 * time.Second,
		Debounce:        150 * time.Millisecond,
		Weather:         true,
		WeatherInterval: 5 * time.Minute,
		OWMUnits:        "imperial",
		OWMBaseURL:      "https://api.openweathermap.org",
		RedisPrefix:     "pcmonitor:",
		LogFile:         "pcmonitor.log",
		LogLevel:        "info",
	}
}

// FromFlags parses flags and environment overrides.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet("pcmonitor", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "serial port to read telemetry from (empty: first port found)")
	fs.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial baud rate")
	fs.BoolVar(&cfg.Stdin, "stdin", cfg.Stdin, "read telemetry records from stdin instead of a serial port")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address (empty disables the web server)")
	fs.BoolVar(&cfg.MDNS, "mdns", cfg.MDNS, "advertise the web server over mDNS")
	fs.DurationVar(&cfg.FramePeriod, "frame", cfg.FramePeriod, "minimum time between frames")
	fs.IntVar(&cfg.SwipeThreshold, "swipe", cfg.SwipeThreshold, "horizontal drag in cells that counts as a swipe")
	fs.DurationVar(&cfg.LongPress, "long-press", cfg.LongPress, "hold time that enters setup mode")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "minimum time between accepted button presses")
	fs.BoolVar(&cfg.Weather, "weather", cfg.Weather, "enable the weather page")
	fs.DurationVar(&cfg.WeatherInterval, "weather-interval", cfg.WeatherInterval, "weather refresh interval")
	fs.StringVar(&cfg.OWMKey, "owm-key", cfg.OWMKey, "OpenWeatherMap API key (overrides stored credentials)")
	fs.StringVar(&cfg.OWMCity, "owm-city", cfg.OWMCity, "OpenWeatherMap city query, e.g. \"Austin,US\"")
	fs.StringVar(&cfg.OWMUnits, "owm-units", cfg.OWMUnits, "units: imperial|metric|standard")
	fs.StringVar(&cfg.OWMBaseURL, "owm-url", cfg.OWMBaseURL, "OpenWeatherMap base URL")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for stored credentials (empty: in-memory)")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "redis database")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "redis key prefix")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file (the terminal is the display)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if v := os.Getenv("PCMON_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("PCMON_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Baud = n
		}
	}
	if v := os.Getenv("PCMON_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PCMON_WEATHER"); v == "0" {
		cfg.Weather = false
	}
	if v := os.Getenv("PCMON_MDNS"); v == "0" {
		cfg.MDNS = false
	}
	if v := os.Getenv("PCMON_WEATHER_INTERVAL"); v != "" {
		cfg.WeatherInterval = envDuration(v, cfg.WeatherInterval)
	}
	if v := os.Getenv("PCMON_OWM_KEY"); v != "" {
		cfg.OWMKey = v
	}
	if v := os.Getenv("PCMON_OWM_CITY"); v != "" {
		cfg.OWMCity = v
	}
	if v := os.Getenv("PCMON_OWM_UNITS"); v != "" {
		cfg.OWMUnits = strings.ToLower(v)
	}
	if v := os.Getenv("PCMON_REDIS"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("PCMON_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("PCMON_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// FeederConfig carries options for the host-side pcfeeder.
type FeederConfig struct {
	Port      string
	Baud      int
	Stdout    bool
	List      bool
	Interval  time.Duration
	DiskScale float64 // MB/s shown as 100%
	Drives    []string
	EnableGPU bool
	Reconnect time.Duration
	LogLevel  string
}

func DefaultFeeder() FeederConfig {
	return FeederConfig{
		Baud:      115200,
		Interval:  200 * time.Millisecond,
		DiskScale: 200,
		Drives:    defaultDrives(),
		EnableGPU: true,
		Reconnect: 2 * time.Second,
		LogLevel:  "info",
	}
}

// FeederFromFlags parses feeder flags and environment overrides.
func FeederFromFlags(args []string) (FeederConfig, error) {
	cfg := DefaultFeeder()
	drives := strings.Join(cfg.Drives, ",")
	fs := flag.NewFlagSet("pcfeeder", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "serial port to write telemetry to (empty: first port found)")
	fs.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial baud rate")
	fs.BoolVar(&cfg.Stdout, "stdout", cfg.Stdout, "write records to stdout instead of a serial port")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list serial ports and exit")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between records")
	fs.Float64Var(&cfg.DiskScale, "disk-scale", cfg.DiskScale, "disk throughput in MB/s that maps to 100%")
	fs.StringVar(&drives, "drives", drives, "comma separated mount points reported as free space C and D")
	fs.BoolVar(&cfg.EnableGPU, "gpu", cfg.EnableGPU, "enable GPU sampling via nvidia-smi")
	fs.DurationVar(&cfg.Reconnect, "reconnect", cfg.Reconnect, "delay before reopening a lost port")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Drives = splitList(drives)

	if v := os.Getenv("PCMON_FEEDER_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("PCMON_FEEDER_INTERVAL"); v != "" {
		cfg.Interval = envDuration(v, cfg.Interval)
	}
	if v := os.Getenv("PCMON_FEEDER_GPU"); v == "0" {
		cfg.EnableGPU = false
	}
	if v := os.Getenv("PCMON_FEEDER_DISK_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DiskScale = f
		}
	}
	if cfg.DiskScale < 1 {
		cfg.DiskScale = 1
	}
	return cfg, nil
}

// envDuration accepts Go durations and bare seconds.
func envDuration(v string, def time.Duration) time.Duration {
	if parsed, err := time.ParseDuration(v); err == nil {
		return parsed
	} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
		return parsed
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
