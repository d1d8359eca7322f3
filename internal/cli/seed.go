package cli

import (
	"context"
	"fmt"

	"iso-games-service/internal/config"
	pgloader "iso-games-service/internal/infra/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd writes the configured pools into the scenarios table.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load scenario pools into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pools, err := loadPools(cfg)
	if err != nil {
		return err
	}
	if err := validatePools(pools, cfg.Games, logger); err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := pgloader.Seed(ctx, db, pools)
	if err != nil {
		return fmt.Errorf("seed scenarios: %w", err)
	}
	logger.Info("scenarios seeded", zap.Int("rows", n), zap.Int("games", len(pools)))
	return nil
}
