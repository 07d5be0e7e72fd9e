package api

import (
	"net/http"
	"time"

	"github.com/mesarpg/mesa/internal/infrastructure/json"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
)

func (app *Application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sourceKey := app.ratelimiter.GetSourceKey(r)
		if !app.ratelimiter.Allow(sourceKey) {
			app.logger.Warn(logging.General, logging.RateLimiting, "request throttled", map[logging.ExtraKey]any{
				logging.ClientIp: sourceKey,
				logging.Path:     r.URL.Path,
			})
			json.WriteRateLimitError(w, 1)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) enableCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// allow preflight requests from the browser API
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		app.logger.Info(logging.RequestResponse, logging.ExternalService, "request handled", map[logging.ExtraKey]any{
			logging.Method:  r.Method,
			logging.Path:    r.URL.Path,
			logging.Latency: time.Since(start).String(),
		})
	})
}
