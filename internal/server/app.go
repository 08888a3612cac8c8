// Package server wires the tripauth server: storage backend, token codec,
// auth service, gRPC and HTTP surfaces and the optional session sweeper.
// It also handles signals and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/logging"
	"github.com/dmitrijs2005/tripauth/internal/server/auth"
	"github.com/dmitrijs2005/tripauth/internal/server/config"
	"github.com/dmitrijs2005/tripauth/internal/server/httpapi"
	"github.com/dmitrijs2005/tripauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tripauth/internal/server/services"
	"github.com/dmitrijs2005/tripauth/internal/server/sweeper"
	"github.com/dmitrijs2005/tripauth/internal/telemetry"

	gs "github.com/dmitrijs2005/tripauth/internal/server/grpc"
)

const serviceName = "tripauth"

// runner is one long-lived component of the app.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     kv.Backend
	telemetry *telemetry.Provider
	runners   map[string]runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	tp, err := telemetry.NewProvider(ctx, serviceName, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}
	metrics, err := telemetry.NewMetrics(tp.Meter())
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	store, err := kv.Open(ctx, c.StorageDSN, c.S3Options())
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	codec, err := auth.NewCodec(c.TokenFormat, []byte(c.SecretKey), c.TokenValidity, time.Now)
	if err != nil {
		_ = store.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	svc := services.NewAuthService(store, repomanager.NewKVRepositoryManager(), codec, logger,
		services.WithLatency(c.Latency),
		services.WithLegacyPasswordCheck(c.LegacyPasswordCheck),
		services.WithMetrics(metrics),
		services.WithTracer(tp.Tracer()),
	)

	runners := map[string]runner{
		"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc),
		"http": httpapi.NewServer(c.EndpointAddrHTTP, logger, svc, tp.Handler()),
	}
	if c.SessionSweepSchedule != "" {
		sw, err := sweeper.New(c.SessionSweepSchedule, svc, logger)
		if err != nil {
			_ = store.Close()
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		runners["sweeper"] = sw
	}

	return &App{config: c, logger: logger, store: store, telemetry: tp, runners: runners}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// start runs r and cancels the whole app if it fails.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or a component fails,
// then waits for every component and releases the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	// Only the scheme: DSNs may carry credentials.
	scheme, _, _ := strings.Cut(app.config.StorageDSN, "://")
	app.logger.Info(ctx, "Starting app...", "storage", scheme, "token_format", app.config.TokenFormat)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	for name, r := range app.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, name, r)
		}()
	}

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.store.Close(); err != nil {
		app.logger.Error(shutdownCtx, "store close", "error", err)
	}
	if err := app.telemetry.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "telemetry shutdown", "error", err)
	}
	app.logger.Info(shutdownCtx, "App stopped")
}
