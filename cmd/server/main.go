package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/stockmatch/internal/config"
	"github.com/JonMunkholm/stockmatch/internal/core"
	"github.com/JonMunkholm/stockmatch/internal/database"
	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/oracle"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
	"github.com/JonMunkholm/stockmatch/internal/tracing"
	"github.com/JonMunkholm/stockmatch/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL, slog.Default()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := openRedis(ctx, cfg.Cache)
	if rdb != nil {
		defer rdb.Close()
	}

	mappings := inventory.NewMappingStore(pool)

	var semantic matching.SemanticMatcher
	if cfg.Oracle.Configured() {
		llm, err := oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Model)
		if err != nil {
			slog.Error("failed to create oracle client", "error", err)
			os.Exit(1)
		}
		opts := oracle.Options{
			Model:         cfg.Oracle.Model,
			Timeout:       cfg.Oracle.Timeout,
			RatePerSecond: cfg.Oracle.RatePerSecond,
			Burst:         cfg.Oracle.Burst,
			CacheTTL:      cfg.Oracle.CacheTTL,
		}
		if rdb != nil {
			opts.Cache = oracle.NewRedisCache(rdb)
		}
		semantic = oracle.NewMatcher(llm, opts)
		slog.Info("semantic matching enabled", "model", cfg.Oracle.Model, "cache", rdb != nil)
	} else {
		slog.Warn("oracle not configured, matching is heuristic only")
	}

	deps := core.Deps{
		Catalog:    inventory.NewRepository(pool),
		Mappings:   mappings,
		Matcher:    matching.NewMatcher(mappings, semantic, cfg.Matching.Parallelism),
		Reconciler: reconcile.NewManager(reconcile.NewPGStore(pool)),
		Limiter:    core.NewRequestLimiter(cfg.Matching.MaxConcurrent, cfg.Matching.MaxWaitTime),
	}
	if cfg.Extraction.URL != "" {
		deps.Extractor = extraction.NewClient(cfg.Extraction.URL, cfg.Extraction.APIKey, cfg.Extraction.Timeout, cfg.Extraction.MaxFileSize)
	} else {
		slog.Warn("extraction service not configured, /extract-invoice is disabled")
	}

	service, err := core.NewService(deps)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg, pool)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for match requests to complete", "active", status.Active)
			if err := service.WaitForRequests(shutdownCtx); err != nil {
				slog.Warn("match requests did not complete in time", "error", err)
			}
		}

		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to database", "database", poolConfig.ConnConfig.Database)
	return pool, nil
}

// openRedis returns nil when no cache is configured or it cannot be
// reached. Oracle answers are then not cached.
func openRedis(ctx context.Context, cfg config.CacheConfig) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid redis URL, oracle cache disabled", "error", err)
		return nil
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, oracle cache disabled", "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
