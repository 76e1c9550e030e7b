package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/acme-basket/internal/domain/catalogue"
	"github.com/xenking/acme-basket/internal/handler"
	"github.com/xenking/acme-basket/internal/rules"
	"github.com/xenking/acme-basket/internal/storage/postgres"
	"github.com/xenking/acme-basket/pkg/health"
	"github.com/xenking/acme-basket/pkg/httpmiddleware"
)

const serviceName = "basket-api"

// Run loads the pricing rules and catalogue, starts the HTTP server and
// handles graceful shutdown. It is the single wiring point for the server.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	set, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return errors.Wrap(err, "load rules")
	}
	pricing := handler.Pricing{
		Catalogue: set.Catalogue,
		Delivery:  set.Delivery,
		Offers:    set.Offers,
	}

	healthSvc := health.New()
	healthSvc.Add(health.Liveness, health.Check{
		Name: "runtime",
		Func: health.RuntimeCheck(10000, time.Second),
	})

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		cat, err := catalogue.Load(ctx, postgres.NewProductRepository(pool))
		if err != nil {
			return errors.Wrap(err, "load catalogue")
		}
		if cat.Len() == 0 {
			return errors.New("catalogue in database is empty: run seed-db first")
		}
		pricing.Catalogue = cat

		healthSvc.Add(health.Readiness, health.Check{
			Name:    "postgres",
			Timeout: 5 * time.Second,
			Func: func(ctx context.Context) error {
				return pool.Ping(ctx)
			},
		})
		lg.Info("Catalogue loaded from database", zap.Int("products", cat.Len()))
	} else {
		lg.Info("Catalogue loaded from rules", zap.Int("products", set.Catalogue.Len()))
	}

	for _, o := range pricing.Offers {
		lg.Info("Offer enabled", zap.String("offer", o.Name()))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	router, err := NewRouter(ctx, lg, m.TracerProvider(), m.MeterProvider(), cfg, pricing, healthSvc)
	if err != nil {
		return errors.Wrap(err, "create router")
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           router,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
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
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// NewRouter mounts the health and API endpoints behind the middleware chain.
func NewRouter(
	ctx context.Context,
	lg *zap.Logger,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	cfg *Config,
	pricing handler.Pricing,
	healthSvc *health.Health,
) (http.Handler, error) {
	h, err := handler.New(pricing, tp, mp)
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.Instrument(serviceName, tp, mp),
		httpmiddleware.LogRequests(),
	), nil
}
