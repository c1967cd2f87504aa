package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/adapters/http/api"
	"github.com/okian/skillmonitor/internal/adapters/http/site"
	"github.com/okian/skillmonitor/internal/adapters/http/swagger"
	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/internal/config"
	"github.com/okian/skillmonitor/pkg/logger"
	"github.com/okian/skillmonitor/pkg/metrics"
)

// setup loads the configuration and initializes logging to out.
func setup(ctx context.Context, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat)), logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.SetEnabled(cfg.MetricsEnabled)
	return cfg, nil
}

// newService builds and starts the session service against the configured backend.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	log := logger.Get()
	client := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout()),
		backend.WithLogger(log.Named("backend")),
	)
	svc := service.New(
		service.WithConfig(cfg),
		service.WithBackend(client),
		service.WithLogger(log),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

// newHandler registers every route on a fresh mux.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register the embedded stylesheet and script under /static/
	site.Register(ctx, mux)

	// Register pages, actions and the event stream with the session service.
	api.NewServer(svc, svc, api.WithLogger(logger.Get())).Register(ctx, mux)

	return mux
}
