// Command pcmonitor is the dashboard: it reads host telemetry from a serial
// link and shows it as animated pages in the terminal, mirrored over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/config"
	"github.com/Dicklesworthstone/pcmonitor/internal/configstore"
	"github.com/Dicklesworthstone/pcmonitor/internal/dashboard"
	"github.com/Dicklesworthstone/pcmonitor/internal/discovery"
	"github.com/Dicklesworthstone/pcmonitor/internal/logging"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/nav"
	"github.com/Dicklesworthstone/pcmonitor/internal/serialport"
	"github.com/Dicklesworthstone/pcmonitor/internal/ui"
	"github.com/Dicklesworthstone/pcmonitor/internal/weather"
	"github.com/Dicklesworthstone/pcmonitor/internal/web"
)

func main() {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "pcmonitor:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logFile, err := logging.File(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg)
	defer store.Close()

	_, configured, err := configstore.Load(ctx, store)
	if err != nil {
		log.Warn().Err(err).Msg("load stored settings")
	}

	modes := nav.StatsModes
	var (
		poller    *weather.Poller
		weatherFn func() model.Weather
	)
	if cfg.Weather {
		modes = nav.AllModes
		client := weather.NewClient(cfg.OWMBaseURL)
		poller = weather.NewPoller(client, cfg.WeatherInterval, func(ctx context.Context) weather.Query {
			return weatherQuery(ctx, cfg, store)
		})
		weatherFn = poller.Latest
		go poller.Run(ctx)
	}

	ip, err := web.LocalIP()
	if err != nil {
		log.Warn().Err(err).Msg("no LAN address, portal shown as localhost")
		ip = "localhost"
	}
	portal := fmt.Sprintf("http://%s:%d", ip, web.Port(cfg.Listen))

	events := make(chan serialport.Event, 64)
	var teaOpts []tea.ProgramOption
	if cfg.Stdin {
		go serialport.Stream(ctx, os.Stdin, "stdin", events)
		teaOpts = append(teaOpts, tea.WithInputTTY())
	} else {
		go serialport.NewLink(cfg.Port, cfg.Baud, 2*time.Second).Run(ctx, events)
	}

	latest := dashboard.NewLatest(time.Now())
	m := ui.New(ui.Options{
		Modes:       modes,
		FramePeriod: cfg.FramePeriod,
		Gestures:    nav.NewGestures(cfg.SwipeThreshold, cfg.LongPress, cfg.Debounce),
		Events:      events,
		Weather:     weatherFn,
		Publish:     latest.Store,
		PortalURL:   portal,
		Setup:       cfg.Weather && !configured && cfg.OWMKey == "",
	})

	if cfg.Listen != "" {
		srv := web.New(web.Options{
			Latest:      latest,
			Weather:     weatherFn,
			Store:       store,
			SetupActive: m.SetupActive,
			OnSaved: func(configstore.Credentials) {
				if poller != nil {
					poller.Trigger()
				}
			},
			LinkStatus: m.LinkStatus,
		})
		latest.OnStore(srv.Publish)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
				log.Error().Err(err).Str("addr", cfg.Listen).Msg("web server stopped")
			}
		}()

		if cfg.MDNS {
			adv := discovery.New(web.Port(cfg.Listen), ip)
			if err := adv.Start(); err != nil {
				log.Warn().Err(err).Msg("mdns advertisement unavailable")
			}
			defer adv.Stop()
		}
	}

	log.Info().Str("port", cfg.Port).Bool("stdin", cfg.Stdin).Str("portal", portal).Msg("pcmonitor started")
	return ui.Run(ctx, m, teaOpts...)
}

// openStore prefers Redis and falls back to memory, where saved settings
// last until exit.
func openStore(ctx context.Context, cfg config.Config) configstore.Store {
	if cfg.RedisAddr == "" {
		return configstore.NewMemory()
	}
	r, err := configstore.NewRedis(ctx, configstore.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	})
	if err != nil {
		log.Warn().Err(err).Msg("settings store unavailable, using memory")
		return configstore.NewMemory()
	}
	return r
}

// weatherQuery merges flag credentials over stored ones. Stored units win
// once the portal has been used.
func weatherQuery(ctx context.Context, cfg config.Config, store configstore.Store) weather.Query {
	q := weather.Query{Key: cfg.OWMKey, City: cfg.OWMCity, Units: cfg.OWMUnits}
	c, configured, err := configstore.Load(ctx, store)
	if err != nil {
		log.Warn().Err(err).Msg("load weather settings")
		return q
	}
	if !configured {
		return q
	}
	if q.Key == "" {
		q.Key = c.APIKey
	}
	if q.City == "" {
		q.City = c.City
	}
	q.Units = c.Units
	return q
}
