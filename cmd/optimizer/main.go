package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/export"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/loader"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/optimizer"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/config"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/logger"
)

const (
	exitInfeasible = 2
	exitFailure    = 1
)

func main() {
	flags := pflag.NewFlagSet("optimizer", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfigWithFlags(flags)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("lineup-optimizer-cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := run(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Lineup optimization failed")
	}
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Entry) (int, error) {
	f, err := os.Open(cfg.PoolPath)
	if err != nil {
		return exitFailure, fmt.Errorf("failed to open player pool: %w", err)
	}
	defer f.Close()

	pool, err := loader.LoadCSV(f)
	if err != nil {
		return exitFailure, fmt.Errorf("failed to load %s: %w", cfg.PoolPath, err)
	}
	log.WithFields(logrus.Fields{
		"pool_path": cfg.PoolPath,
		"players":   pool.Len(),
	}).Info("Player pool loaded")

	opt, err := optimizer.New(optimizer.ConfigFromSettings(cfg), log)
	if err != nil {
		return exitFailure, err
	}

	result, err := opt.Optimize(ctx, pool)
	if err != nil {
		return exitFailure, err
	}
	if err := result.Err(); errors.Is(err, optimizer.ErrSolverInfeasible) {
		fmt.Fprintln(os.Stderr, "No feasible lineup for this pool:", err)
		return exitInfeasible, nil
	}

	if err := export.WriteLineupCSV(os.Stdout, result.Lineup); err != nil {
		return exitFailure, err
	}

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return exitFailure, fmt.Errorf("failed to create %s: %w", cfg.OutputPath, err)
	}
	if err := export.WriteLineupCSV(out, result.Lineup); err != nil {
		out.Close()
		return exitFailure, err
	}
	if err := out.Close(); err != nil {
		return exitFailure, err
	}

	log.WithFields(logrus.Fields{
		"status":      result.Status,
		"output_path": cfg.OutputPath,
		"fpts":        result.Lineup.TotalProjection,
	}).Info("Lineup exported")
	return 0, nil
}
