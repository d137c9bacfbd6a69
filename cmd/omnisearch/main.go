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
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/config"
	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/goodmem"
	logpkg "github.com/quran-omni/omnisearch/internal/logger"
	"github.com/quran-omni/omnisearch/internal/metrics"
	"github.com/quran-omni/omnisearch/internal/registry"
	translationrepo "github.com/quran-omni/omnisearch/internal/repository/translation"
	versetextrepo "github.com/quran-omni/omnisearch/internal/repository/versetext"
	"github.com/quran-omni/omnisearch/internal/transport/httpapi"
	searchuc "github.com/quran-omni/omnisearch/internal/usecase/search"
	"github.com/quran-omni/omnisearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting omnisearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("goodmem_base_url", cfg.GoodMem.BaseURL),
	)

	// Register domain metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	// Bundled fallback datasets. A missing file degrades the fallback
	// paths, it never blocks startup.
	verseText := versetextrepo.New(logger)
	if cfg.Data.QuranPath != "" {
		if err := verseText.Load(cfg.Data.QuranPath); err != nil {
			logger.Warn("quran dataset unavailable",
				zap.String("path", cfg.Data.QuranPath), zap.Error(err))
		} else {
			logger.Info("quran dataset loaded", zap.Int("verses", verseText.Len()))
		}
	}

	translations := translationrepo.New(logger)
	if cfg.Data.TranslationPath != "" {
		if err := translations.Load(cfg.Data.TranslationPath); err != nil {
			logger.Warn("fallback translation unavailable",
				zap.String("path", cfg.Data.TranslationPath), zap.Error(err))
		} else {
			logger.Info("fallback translation loaded", zap.Int("entries", translations.Len()))
		}
	}

	// Upstream gateway
	gateway := goodmem.New(goodmem.Config{
		BaseURL:     cfg.GoodMem.BaseURL,
		APIKey:      cfg.GoodMem.APIKey,
		InsecureTLS: cfg.GoodMem.InsecureTLS,
		Reranker: goodmem.RerankerConfig{
			ID:                  cfg.GoodMem.Reranker.ID,
			CandidatePoolSize:   cfg.GoodMem.Reranker.CandidatePoolSize,
			ChronologicalResort: cfg.GoodMem.Reranker.ChronologicalResort,
		},
		Overview: goodmem.OverviewConfig{
			LLMID:              cfg.Overview.LLMID,
			SysPrompt:          cfg.Overview.SysPrompt,
			Prompt:             cfg.Overview.Prompt,
			TokenBudget:        cfg.Overview.TokenBudget,
			Temperature:        cfg.Overview.Temperature,
			MaxResults:         cfg.Overview.MaxResults,
			CandidatePoolSize:  cfg.Overview.CandidatePoolSize,
			RelevanceThreshold: cfg.Overview.RelevanceThreshold,
		},
		Logger: logger,
	})

	spaceRegistry := registry.New(
		gateway,
		cfg.SpaceIDOverrides(),
		time.Duration(cfg.Spaces.CacheTTLSec)*time.Second,
		logger,
	)

	// Bounded fan-out pool shared by all requests
	pool, err := ants.NewPool(cfg.Search.WorkerPoolSize)
	if err != nil {
		logger.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer pool.Release()

	limits := make(map[domain.SpaceType]int)
	for _, st := range domain.AllSpaceTypes() {
		limits[st] = cfg.SpaceLimit(st)
	}

	searchSvc := searchuc.New(gateway, spaceRegistry, verseText, translations, pool, searchuc.Config{
		DefaultLanguage:   cfg.Search.DefaultLanguage,
		Limits:            limits,
		FallbackBatchSize: cfg.Search.FallbackBatch,
	}, logger)

	server := httpapi.NewServer(searchSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

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
						"error":   "server_error",
						"message": "Unexpected server error",
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

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
