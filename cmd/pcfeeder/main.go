// Command pcfeeder samples this machine and streams telemetry records to a
// pcmonitor dashboard over a serial port.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/config"
	"github.com/Dicklesworthstone/pcmonitor/internal/feeder"
	"github.com/Dicklesworthstone/pcmonitor/internal/logging"
	"github.com/Dicklesworthstone/pcmonitor/internal/serialport"
)

func main() {
	cfg, err := config.FeederFromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Console(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("pcfeeder stopped")
		os.Exit(1)
	}
}

func run(cfg config.FeederConfig) error {
	if cfg.List {
		ports, err := serialport.List()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out io.Writer = os.Stdout
	if !cfg.Stdout {
		w := serialport.NewWriter(cfg.Port, cfg.Baud)
		w.Retry = cfg.Reconnect
		defer w.Close()
		out = w
	}

	log.Info().
		Str("port", cfg.Port).
		Bool("stdout", cfg.Stdout).
		Dur("interval", cfg.Interval).
		Strs("drives", cfg.Drives).
		Msg("pcfeeder started")

	err := feeder.New(cfg).Run(ctx, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
