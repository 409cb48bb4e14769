package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ConnectionStatus interface {
	IsConnected() bool
}

type SessionCounter interface {
	GetActiveSessionCount() int
}

// Config holds router dependencies. Nil checks are skipped.
type Config struct {
	Logger         *zap.Logger
	Redis          Pinger
	NATS           ConnectionStatus
	Sessions       SessionCounter
	MetricsHandler http.Handler
}

// New creates the ops router: /health and /metrics.
func New(cfg *Config) http.Handler {
	log := logger.OrNop(cfg.Logger).Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", healthHandler(cfg))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	return r
}

type healthResponse struct {
	Status         string            `json:"status"`
	Checks         map[string]string `json:"checks"`
	ActiveSessions int               `json:"active_sessions"`
}

func healthHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		if cfg.Redis != nil {
			if err := cfg.Redis.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks["redis"] = err.Error()
			} else {
				resp.Checks["redis"] = "ok"
			}
		}
		if cfg.NATS != nil {
			if cfg.NATS.IsConnected() {
				resp.Checks["nats"] = "ok"
			} else {
				resp.Status = "degraded"
				resp.Checks["nats"] = "disconnected"
			}
		}
		if cfg.Sessions != nil {
			resp.ActiveSessions = cfg.Sessions.GetActiveSessionCount()
		}

		code := http.StatusOK
		if resp.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
