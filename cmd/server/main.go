package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/api"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/optimizer"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/config"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/logger"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfigWithFlags(flags)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("lineup-optimizer")
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting lineup optimizer service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(optimizer.ConfigFromSettings(cfg), structuredLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Lineup optimizer service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down lineup optimizer service...")

	// In-flight solves get until their own time limit plus a margin
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SolverTimeLimit+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Lineup optimizer service forced to shutdown: %v", err)
	}

	log.Info("Lineup optimizer service exited")
}
