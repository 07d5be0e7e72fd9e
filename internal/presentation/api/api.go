package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mesarpg/mesa/internal/infrastructure/configs"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/metrics"
	"github.com/mesarpg/mesa/internal/infrastructure/ratelimiter"
	"github.com/mesarpg/mesa/internal/infrastructure/ws"
	healthHandler "github.com/mesarpg/mesa/internal/presentation/handler/health"
	tablesHandler "github.com/mesarpg/mesa/internal/presentation/handler/tables"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config        configs.Config
	gateway       *ws.Gateway
	tablesHandler tablesHandler.Handler
	healthHandler healthHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	gateway *ws.Gateway,
	tablesHandler tablesHandler.Handler,
	healthHandler healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		gateway:       gateway,
		tablesHandler: tablesHandler,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.requestLogger)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		// The gateway holds connections open; keep it out of the HTTP rate
		// limiter and timeout, it has its own per-connection frame limit.
		r.Get("/ws", app.gateway.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(app.rateLimiterMiddleware)

			r.Route("/tables", func(r chi.Router) {
				r.Get("/{tableId}", app.tablesHandler.GetTableHandler)
				r.Get("/{tableId}/history", app.tablesHandler.GetHistoryHandler)
				r.Get("/{tableId}/members", app.tablesHandler.GetMembersHandler)
			})

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      otelhttp.NewHandler(mux, "mesa-http"),
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			logging.ErrorMessage: s.String(),
		})

		app.gateway.Close()
		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		logging.Path: srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		logging.Path: srv.Addr,
	})

	return nil
}
