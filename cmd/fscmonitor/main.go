package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	fsc "github.com/xmidt-org/fscmonitor"
	"github.com/xmidt-org/fscmonitor/internal/server"
	"github.com/xmidt-org/fscmonitor/platform"
	"github.com/xmidt-org/fscmonitor/probe"
	"github.com/xmidt-org/fscmonitor/runtime"
)

var cli struct {
	Config     string `short:"c" help:"Configuration file path" type:"path"`
	LogFile    string `help:"Append diagnostic log output to this file instead of stderr" type:"path"`
	StatusAddr string `help:"Expose the status API on this address (e.g. :8090)"`
}

// fscmonitor: firmware sanity checker. It runs one bounded wait-then-decide
// cycle after a firmware flash and reports the verdict to the platform
// abstraction layer. The exit code is always 0; the verdict travels only
// through the platform boundary.
func main() {
	kong.Parse(&cli,
		kong.Name("fscmonitor"),
		kong.Description("Checks the update server connection after a firmware flash and marks the code image valid or not."))

	logger, closeLog := openLogger(cli.LogFile)
	defer closeLog()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		logger.Printf("error loading config %s: %v, using defaults", cli.Config, err)
	}
	applyEnv(&cfg)
	if cli.StatusAddr != "" {
		cfg.StatusAddr = cli.StatusAddr
	}

	opts := fsc.DefaultOptions()
	opts.Paths = cfg.paths(opts.Paths)

	logger.Printf("started firmware sanity checker")

	hal, closeHAL := buildHAL(cfg.Platform, logger)
	defer closeHAL()

	checker, err := runtime.New(runtime.Config{
		Prober: probe.New(opts.Paths, logger),
		HAL:    hal,
		Timing: opts.Timing,
		Logger: logger,
	})
	if err != nil {
		logger.Printf("error building checker: %v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StatusAddr != "" {
		statusCtx, stopStatus := context.WithCancel(context.Background())
		defer stopStatus()
		if _, errCh, err := server.StartStatusServer(statusCtx, server.StatusConfig{
			ListenAddr: cfg.StatusAddr,
			Source:     checker,
			Logger:     logger,
		}); err != nil {
			logger.Printf("status API disabled: %v", err)
		} else {
			go func() {
				if err := <-errCh; err != nil {
					logger.Printf("status API error: %v", err)
				}
			}()
		}
	}

	valid := checker.Run(ctx)
	logger.Printf("firmware sanity checker exit with valid image: %t", valid)
}

// openLogger prepares the diagnostic sink. A bad log file path is non-fatal:
// logging falls back to stderr with a warning.
func openLogger(path string) (*log.Logger, func()) {
	flags := log.LstdFlags | log.LUTC
	if path == "" {
		return log.New(os.Stderr, "fsc: ", flags), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger := log.New(os.Stderr, "fsc: ", flags)
		logger.Printf("warning: cannot open log file %s: %v, logging to stderr", path, err)
		return logger, func() {}
	}
	return log.New(f, "fsc: ", flags), func() {
		_ = f.Sync()
		_ = f.Close()
	}
}

// buildHAL selects the platform adapter. A failed websocket connect is
// logged but not fatal; the subsequent HAL calls fail individually and the
// OEM watchdog covers the device.
func buildHAL(cfg platformConfig, logger *log.Logger) (platform.HAL, func()) {
	var auth fsc.AuthStrategy
	if cfg.Token != "" {
		auth = fsc.StaticAuth{Value: cfg.Token}
	}
	switch cfg.Adapter {
	case "http":
		return platform.NewHTTPAdapter(cfg.URL, auth), func() {}
	case "log":
		return platform.LogHAL{Logger: logger}, func() {}
	default:
		a := platform.NewWRPAdapter(cfg.URL, cfg.Source, auth)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Connect(ctx); err != nil {
			logger.Printf("error connecting to platform agent at %s: %v", cfg.URL, err)
		}
		return a, func() { _ = a.Close() }
	}
}
