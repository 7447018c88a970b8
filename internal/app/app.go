package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kallerup/pickline/internal/domain/catalog"
	"github.com/kallerup/pickline/internal/domain/order"
	"github.com/kallerup/pickline/internal/fulfill"
	"github.com/kallerup/pickline/internal/handler"
	"github.com/kallerup/pickline/internal/robot"
	"github.com/kallerup/pickline/pkg/health"
	"github.com/kallerup/pickline/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("robot_host", cfg.Robot.Host))

	// Core state. Nothing persists across restarts; the catalog is seeded
	// below and the ledger/book live in memory.
	ledger := catalog.NewLedger()
	book := order.NewBook()

	robotClient := robot.NewClient(robot.Config{
		Host:          cfg.Robot.Host,
		DashboardPort: cfg.Robot.DashboardPort,
		ProgramPort:   cfg.Robot.ProgramPort,
		DialTimeout:   cfg.Robot.DialTimeout,
	})

	metrics, err := fulfill.NewMetrics(m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}

	coord := fulfill.NewCoordinator(ledger, book, robotClient, lg.Named("fulfill"),
		fulfill.WithMetrics(metrics),
		fulfill.WithDispatchTimeout(cfg.Robot.DispatchTimeout),
	)

	if cfg.Seed.Demo {
		seedDemoCatalog(ledger)
		lg.Info("Demo catalog seeded", zap.Int("items", len(ledger.Items())))
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP surface.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(coord, robotClient).Routes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		// Let in-flight pick/place dispatches report their outcome.
		coord.Close()
		return nil
	})
	return g.Wait()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedDemoCatalog installs the demo items and their starting stock.
func seedDemoCatalog(ledger *catalog.Ledger) {
	for _, seed := range []struct {
		item    catalog.Item
		initial string
	}{
		{catalog.NewDiscreteItem("hydraulic pump", dec("8500"), dec("12")), "5"},
		{catalog.NewDiscreteItem("PLC module", dec("1200"), dec("0.4")), "10"},
		{catalog.NewDiscreteItem("servo motor", dec("4300"), dec("1.1")), "3"},
	} {
		ledger.Register(seed.item, dec(seed.initial))
	}
}
