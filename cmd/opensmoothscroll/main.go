// SPDX-License-Identifier: Unlicense OR MIT

// Command opensmoothscroll runs the wheel-smoothing engine as a
// headless foreground process: it loads an INI settings document,
// installs the system hook, and serves until interrupted. Tray icon,
// settings GUI, global hotkey, and autostart registration all live
// outside this binary.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/activitylog"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/config"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/engine"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

func main() {
	var (
		configPath = flag.String("config", "opensmoothscroll.ini", "path to the INI settings document")
		logPath    = flag.String("activity-log", "", "optional path to write a binary activity log (empty disables it)")
		verbose    = flag.Bool("v", false, "enable debug-level logging")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()

	gs, err := loadOrDefault(log, *configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config: unreadable, refusing to start")
	}

	opts := []engine.Option{
		engine.WithStatusCallback(func(running bool) {
			log.Info().Bool("running", running).Msg("engine status changed")
		}),
	}
	var sink *activitylog.Sink
	if *logPath != "" {
		w, err := activitylog.Create(*logPath)
		if err != nil {
			log.Warn().Err(err).Str("path", *logPath).Msg("activity log: disabled, could not create file")
		} else {
			sink = activitylog.NewSink(w, 256)
			opts = append(opts, engine.WithActivityLog(sink))
		}
	}

	e := engine.New(log, gs, engine.NewDispatcher, engine.EmitVertical, engine.EmitHorizontal, opts...)

	if err := e.Start(); err != nil {
		log.Error().Err(err).Msg("engine: failed to start")
		if sink != nil {
			sink.Close()
		}
		os.Exit(1)
	}

	sig := make(chan os.Signal, 4)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for s := range sig {
		if s == syscall.SIGHUP {
			reloaded, err := config.Load(*configPath)
			if err != nil {
				log.Warn().Err(err).Msg("config: reload failed, keeping current settings")
				continue
			}
			e.ReplaceSettings(reloaded)
			continue
		}
		break
	}

	log.Info().Msg("shutting down")
	if err := e.Stop(); err != nil {
		log.Error().Err(err).Msg("engine: stop reported an error")
	}
	if sink != nil {
		sink.Close()
	}
}

// loadOrDefault loads path, falling back to package defaults: a
// missing or malformed document is never a reason to refuse to start.
func loadOrDefault(log zerolog.Logger, path string) (*settings.GlobalSettings, error) {
	gs, err := config.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config: using built-in defaults")
		return settings.Default(), nil
	}
	return gs, nil
}
