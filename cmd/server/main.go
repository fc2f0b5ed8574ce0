package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mindfall/mindfall-server/internal/catalog"
	"github.com/mindfall/mindfall-server/internal/config"
	"github.com/mindfall/mindfall-server/internal/deck"
	"github.com/mindfall/mindfall-server/internal/game"
	"github.com/mindfall/mindfall-server/internal/game/resource"
	"github.com/mindfall/mindfall-server/internal/profile"
	"github.com/mindfall/mindfall-server/internal/server"
	"github.com/mindfall/mindfall-server/internal/storage"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting mindfall server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	store, closeStore, err := initStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer closeStore()

	cat := catalog.New(store, logger)
	decks := deck.NewStore(store, logger)
	profiles := profile.NewStore(store, logger)

	engine := game.NewEngine(logger, cat, rulesFromConfig(cfg.Game))
	games := game.NewManager(logger, store, decks, profiles, engine)

	srv := server.New(logger, games, cat, decks, profiles)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("mindfall server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not complete cleanly", zap.Error(err))
	}

	logger.Info("mindfall server stopped")
}

// initStore builds the configured storage backend and returns it with its
// cleanup function.
func initStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		logger.Info("using in-memory storage")
		return storage.NewMemoryStore(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("using redis storage", zap.String("addr", cfg.Redis.Addr))
		return storage.NewRedisStore(client), func() { client.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		store := storage.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// rulesFromConfig overlays configured rule overrides on the defaults.
func rulesFromConfig(cfg config.GameConfig) game.Rules {
	rules := game.DefaultRules()
	if cfg.InitialHandSize > 0 {
		rules.InitialHandSize = cfg.InitialHandSize
	}
	if cfg.InitialHealth > 0 {
		rules.InitialHealth = cfg.InitialHealth
	}
	if cfg.FieldSize > 0 {
		rules.FieldSize = cfg.FieldSize
	}
	if cfg.BaseMaterial > 0 || cfg.BaseMind > 0 {
		rules.BaseResources = resource.State{Material: cfg.BaseMaterial, Mind: cfg.BaseMind}
	}
	return rules
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
