package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/api/handlers"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/optimizer"
)

// NewRouter wires the optimizer endpoints
func NewRouter(rules optimizer.Config, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	optimizationHandler := handlers.NewOptimizationHandler(rules, log)
	healthHandler := handlers.NewHealthHandler(map[string]string{
		"min_salary": fmt.Sprintf("%.0f", rules.MinSalary),
		"max_salary": fmt.Sprintf("%.0f", rules.MaxSalary),
		"team_limit": fmt.Sprintf("%d", rules.TeamLimit),
		"time_limit": rules.TimeLimit.String(),
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizationHandler.OptimizeLineup)
		apiV1.POST("/optimize/csv", optimizationHandler.OptimizeCSV)
		apiV1.POST("/players/query", optimizationHandler.ListPlayers)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	return router
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"http_method": c.Request.Method,
			"http_path":   c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"latency":     time.Since(start),
		}).Info("Request handled")
	}
}
