package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/chunker"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/config"
	dbRedis "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/db/redis"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	logpkg "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/logger"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/metrics"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/repository/embcache"
	indexrepo "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/repository/index"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/transport/chihttp"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/transport/mediawiki"
	openaiEmb "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/transport/openai"
	ingestuc "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/usecase/ingest"
	queryuc "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/usecase/query"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting guideindex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	// Chunk embeddings go straight to the provider; query embeddings are
	// cached since the same question is asked repeatedly.
	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var queryEmbedder domain.Embedder = embcache.New(
		provider, store, metrics.EmbeddingCacheTotal, logger,
	)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	repo := indexrepo.New(store, cfg.Embedding.Dimensions)
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create search index", zap.Error(err))
	}

	fetcher := mediawiki.New(mediawiki.Config{
		Timeout:        time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		RequestsPerSec: cfg.Fetch.RequestsPerSec,
		UserAgent:      cfg.Fetch.UserAgent,
		Logger:         logger,
	})

	chunks := chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap,
		cfg.Ingest.ParsedTargetSections()...)

	ingestSvc := ingestuc.New(
		fetcher, chunks, provider, repo,
		cfg.Ingest.Workers, cfg.Embedding.BatchSize, logger,
	)
	querySvc := queryuc.New(queryEmbedder, repo, logger)

	server := chihttp.NewServer(ingestSvc, querySvc, store, provider, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chihttp.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
