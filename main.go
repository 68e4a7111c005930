package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/ternarybob/arbor"

	"blockpress/auth"
	"blockpress/comments"
	"blockpress/config"
	"blockpress/globals"
	"blockpress/live"
	"blockpress/logging"
	"blockpress/posts"
	"blockpress/products"
	"blockpress/ratelim"
	"blockpress/rdx"
	"blockpress/render"
	"blockpress/routes"
	"blockpress/search"
	"blockpress/storage"
	"blockpress/storage/badgerstore"
	"blockpress/storage/mongostore"
)

const defaultConfigFile = "blockpress.toml"

type configPaths []string

func (c *configPaths) String() string { return strings.Join(*c, ",") }

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// Referrer and permissions
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack is required for websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs each request method, path, status, remote address, and duration.
func loggingMiddleware(logger arbor.ILogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("remote", r.RemoteAddr).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("Request handled")
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func openStore(ctx context.Context, cfg *config.Config, logger arbor.ILogger) (storage.Store, products.Catalog, error) {
	switch cfg.Storage.Driver {
	case "mongo":
		store, err := mongostore.Open(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Catalog.Driver == "mongo" {
			catalog := products.NewMongoCatalog(store.Database())
			if err := catalog.SeedDefaults(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to seed product catalog")
			}
			return store, catalog, nil
		}
		return store, products.NewStaticCatalog(), nil
	default:
		store, err := badgerstore.Open(cfg.Badger, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, products.NewStaticCatalog(), nil
	}
}

func main() {
	var configFiles configPaths
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	flag.Parse()

	if len(configFiles) == 0 {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			configFiles = append(configFiles, defaultConfigFile)
		}
	}

	cfg, err := config.Load(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Init(cfg.Logging)
	if cfg.Auth.JWTSecret != "" {
		globals.JwtSecret = []byte(cfg.Auth.JWTSecret)
	}

	ctx := context.Background()

	store, catalog, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open store")
		os.Exit(1)
	}

	if cfg.Storage.SeedSamples {
		if seeded, err := posts.Seed(ctx, store, logger); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed sample posts")
		} else if len(seeded) > 0 {
			logger.Info().Int("posts", len(seeded)).Msg("Sample posts created")
		}
	}

	// search index is optional
	var index *search.Indexer
	redisClient, err := rdx.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, search falls back to filtering")
	} else if redisClient != nil {
		index = search.NewIndexer(redisClient, logger)
	}

	hub := live.NewHub(logger)
	go hub.Run()

	opts := []posts.Option{posts.WithComments(store)}
	var searcher search.Searcher
	var scheduler *search.Scheduler
	if index != nil {
		opts = append(opts, posts.WithIndexer(index))
		searcher = index
		scheduler = search.NewScheduler(store, index, logger)
		if err := scheduler.Start(cfg.Search.ReindexSchedule); err != nil {
			logger.Warn().Err(err).Msg("Search reindex scheduler not started")
			scheduler = nil
		}
	}

	postService := posts.NewService(store, render.New(catalog, logger), logger, opts...)
	authService := auth.NewService(store, cfg.Auth.TTL(), logger)

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimit)
	rateLimiter.StartCleanup(cfg.RateLimit.IdleDuration())

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddStaticRoutes(router, cfg.Server.StaticDir)
	routes.RoutesWrapper(router, routes.Handlers{
		Posts:    posts.NewHandler(postService, logger),
		Comments: comments.NewHandler(store, store, hub, logger),
		Auth:     auth.NewHandler(authService, logger),
		Products: products.NewHandler(catalog, logger),
		Search:   search.NewHandler(postService, searcher, cfg.Search.ResultLimit, logger),
		Hub:      hub,
	}, rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(securityHeaders(loggingMiddleware(logger, router)))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           corsHandler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info().Msg("Shutting down live hub")
		hub.Stop()
	})

	go func() {
		logger.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Driver).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ListenAndServe error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutdown signal received, shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	rateLimiter.Stop()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to close store")
	}

	logger.Info().Msg("Server stopped cleanly")
}
