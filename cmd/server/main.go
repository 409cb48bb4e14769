package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/catalog"
	"github.com/moonback/Esil-events-v1-sub001/internal/config"
	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/handlers"
	"github.com/moonback/Esil-events-v1-sub001/internal/httpapi"
	"github.com/moonback/Esil-events-v1-sub001/internal/llm"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/memory"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/recommend"
	"github.com/moonback/Esil-events-v1-sub001/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogFile, cfg.IsProduction()).With(zap.String("service", cfg.ServiceName))
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("starting quote assistant",
		zap.String("nats_url", cfg.NatsURL),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.String("llm_model", cfg.LLMModel),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewAssistantMetrics(registry)

	// Catalog
	var store catalog.Store
	if cfg.CatalogDSN != "" {
		pg, pool, err := catalog.NewPostgresStore(ctx, cfg.CatalogDSN, zlog)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pg
		zlog.Info("catalog connected to postgres")
	} else {
		store = catalog.NewMemoryStore(catalog.DemoProducts())
		zlog.Warn("CATALOG_DSN not set, serving the demo catalog")
	}
	gateway := catalog.NewGateway(store, cfg.BudgetPolicy, zlog, m)

	// Model
	provider, err := llm.NewProvider(llm.Settings{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	}, zlog, m)
	if err != nil {
		return err
	}

	service := recommend.NewService(gateway, provider, cfg.BudgetPolicy, recommend.Options{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}, zlog, m)

	// Sessions
	redisStore, err := memory.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return err
	}
	manager := memory.NewManager(redisStore, conversation.DefaultSteps(time.Now), service, conversation.Options{
		PipelineTimeout: cfg.PipelineTimeout,
		Logger:          zlog,
		Metrics:         m,
		Now:             time.Now,
	})
	defer func() {
		if err := manager.Close(); err != nil {
			zlog.Warn("failed to close session store", zap.Error(err))
		}
	}()

	// NATS
	nc, err := transport.Connect(cfg, zlog)
	if err != nil {
		return err
	}
	defer nc.Close()

	manager.AddListener(transport.NewEventPublisher(nc, cfg.NatsEventPrefix, zlog))
	handler := handlers.NewAssistantHandler(manager, transport.NewCartSink(nc, cfg.NatsCartSubject), zlog)

	natsTransport := transport.NewNATSTransport(nc, cfg, handler, zlog)
	if err := natsTransport.Start(); err != nil {
		return err
	}

	// HTTP
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.New(&httpapi.Config{
			Logger:         zlog,
			Redis:          redisStore,
			NATS:           nc,
			Sessions:       manager,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zlog.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	// Idle conversations are dropped from memory; Redis keeps them until the TTL.
	go func() {
		ticker := time.NewTicker(cfg.SessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := manager.EvictIdle(cfg.SessionTTL); n > 0 {
					zlog.Info("evicted idle conversations", zap.Int("count", n))
				}
			}
		}
	}()

	zlog.Info("quote assistant running", zap.String("subject", cfg.NatsRequestSubject))
	<-ctx.Done()
	zlog.Info("shutting down", zap.Int("active_sessions", manager.GetActiveSessionCount()))

	if err := natsTransport.Close(); err != nil {
		zlog.Warn("failed to close NATS transport", zap.Error(err))
	}
	manager.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}

	zlog.Info("quote assistant stopped")
	return nil
}
