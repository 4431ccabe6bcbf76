package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
	"parking-facility/internal/server"
)

const (
	modeShell  = "shell"
	modeServer = "server"
	modeBoth   = "both"
)

func main() {
	cmd := &cli.Command{
		Name:  "parking-facility",
		Usage: "multi-floor parking facility with an interactive shell and an HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "port for the HTTP server (overrides APP_PORT)",
			},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "TOML facility layout file (overrides FACILITY_LAYOUT_FILE)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, "")
		},
		Commands: []*cli.Command{
			{
				Name:  modeShell,
				Usage: "run the interactive shell on stdin",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, modeShell)
				},
			},
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, modeServer)
				},
			},
			{
				Name:  modeBoth,
				Usage: "run the HTTP API and the shell against the same facility",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, modeBoth)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "parking-facility: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	facility  *parking.InstrumentedFacility
	hub       *server.Hub
}

// run starts the requested mode. An empty mode falls back to APP_MODE.
func run(ctx context.Context, cmd *cli.Command, mode string) error {
	if layout := cmd.String("layout"); layout != "" {
		if err := os.Setenv("FACILITY_LAYOUT_FILE", layout); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port := cmd.String("port"); port != "" {
		cfg.Port = port
	}
	if mode == "" {
		mode = cfg.Mode
	}

	telemetry, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(telemetry)

	logging.Init(cfg.OTelServiceName, cfg.Environment)

	a, err := newApp(cfg, telemetry)
	if err != nil {
		return err
	}

	logging.Info(ctx, "facility ready",
		"mode", mode,
		"floors", cfg.Layout.Floors,
		"capacity", a.facility.Capacity(),
		"allocation", cfg.Layout.Allocation,
		"pricing", cfg.Layout.Pricing.Policy,
	)

	switch mode {
	case modeShell:
		return a.runShell(ctx)
	case modeServer:
		return a.runServer(ctx)
	case modeBoth:
		return a.runBoth(ctx)
	default:
		return fmt.Errorf("invalid mode %q: must be %s, %s or %s", mode, modeShell, modeServer, modeBoth)
	}
}

func newApp(cfg *config.Config, telemetry *parking.TelemetryProvider) (*app, error) {
	facility, err := cfg.Layout.Build(time.Now)
	if err != nil {
		return nil, fmt.Errorf("build facility: %w", err)
	}

	hub := server.NewHub()
	instrumented, err := parking.NewInstrumentedFacility(facility, telemetry, hub)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		telemetry: telemetry,
		facility:  instrumented,
		hub:       hub,
	}, nil
}

func (a *app) startShell(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		parking.NewShell(a.facility, a.telemetry, os.Stdin, os.Stdout).Run(ctx)
	}()
	return done
}

func (a *app) runShell(ctx context.Context) error {
	go a.hub.Run(ctx)

	select {
	case <-a.startShell(ctx):
		logging.Info(ctx, "shell exited")
	case <-ctx.Done():
		logging.Info(context.Background(), "received shutdown signal")
	}
	return nil
}

func (a *app) runServer(ctx context.Context) error {
	srv := server.NewServer(a.cfg.Port, a.cfg.OTelServiceName, a.facility, a.hub)
	go a.hub.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.Info(context.Background(), "received shutdown signal")
	}

	return shutdownServer(srv)
}

func (a *app) runBoth(ctx context.Context) error {
	srv := server.NewServer(a.cfg.Port, a.cfg.OTelServiceName, a.facility, a.hub)
	go a.hub.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-a.startShell(ctx):
		logging.Info(ctx, "shell exited")
	case <-ctx.Done():
		logging.Info(context.Background(), "received shutdown signal")
	}

	return shutdownServer(srv)
}

func shutdownServer(srv *server.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func shutdownTelemetry(telemetry *parking.TelemetryProvider) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "parking-facility: shutdown telemetry: %v\n", err)
	}
}
