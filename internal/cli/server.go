package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iso-games-service/internal/app"
	"iso-games-service/internal/config"
	"iso-games-service/internal/domain"
	"iso-games-service/internal/infra/memory"
	pgloader "iso-games-service/internal/infra/postgres"
	redisstore "iso-games-service/internal/infra/redis"
	"iso-games-service/internal/llm"
	"iso-games-service/internal/metrics"
	transport "iso-games-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the games server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
	}

	var loader memory.PoolLoader
	if cfg.Postgres.URL != "" {
		pgPool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgPool.Close()
		loader = pgloader.NewPoolLoader(pgPool)
	} else {
		pools, err := loadPools(cfg)
		if err != nil {
			return err
		}
		loader = memory.NewStaticPoolLoader(pools)
	}

	// every configured pool must validate before serving
	startupPools := make(map[string][]domain.Scenario, len(cfg.Games))
	for _, g := range cfg.Games {
		pool, err := loader.LoadPool(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("load pool %s: %w", g.ID, err)
		}
		startupPools[g.ID] = pool
	}
	if err := validatePools(startupPools, cfg.Games, logger); err != nil {
		return err
	}

	poolTTL := config.TTLDuration(cfg.Pool.TTL, 10*time.Minute)
	var pools app.PoolRepository
	if redisClient != nil {
		pools = redisstore.NewPoolRepository(redisClient, loader, poolTTL)
	} else {
		pools = memory.NewPoolRepository(loader, poolTTL)
	}

	ttl := sessionTTL(cfg)
	var store app.SessionRepository
	if redisClient != nil {
		// the key outlives the logical TTL so lazy expiry still sees and drops it
		store = redisstore.NewSessionStore(redisClient, 2*ttl)
	} else {
		store = memory.NewSessionStore()
	}

	m := metrics.New()
	opts := []app.Option{
		app.WithSessionTTL(ttl),
		app.WithMetrics(m),
		app.WithLogger(logger),
	}

	llmCfg := llmConfig(cfg)
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return err
	}
	if provider != nil {
		opts = append(opts,
			app.WithGenerator(llm.NewGenerator(provider, logger)),
			app.WithGenerationTimeout(llmCfg.Timeout),
		)
		logger.Info("scenario generation enabled", zap.String("provider", cfg.LLM.Provider))
	}

	service := app.NewGameService(store, pools, gamesFromConfig(cfg), opts...)
	go service.RunSweeper(ctx, config.TTLDuration(cfg.Session.CleanupInterval, 5*time.Minute))

	router := transport.NewRouter(service, transport.RouterConfig{
		Metrics:   m,
		Logger:    logger,
		StaticDir: cfg.Server.StaticDir,
	})
	server := transport.NewServer(":"+finalPort, router, llmCfg.Timeout)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting iso games service", zap.String("addr", server.Addr), zap.Int("games", len(cfg.Games)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
