package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/loader"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/optimizer"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/config"
)

// DefaultMaxBodyBytes caps request bodies. A full slate export is well
// under 100 KiB.
const DefaultMaxBodyBytes int64 = 8 << 20

// OptimizationHandler handles lineup optimization and pool listing
type OptimizationHandler struct {
	defaults     optimizer.Config
	logger       *logrus.Logger
	maxBodyBytes int64
}

// NewOptimizationHandler creates a new optimization handler
func NewOptimizationHandler(defaults optimizer.Config, logger *logrus.Logger) *OptimizationHandler {
	return &OptimizationHandler{
		defaults:     defaults,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// SetMaxBodyBytes changes the request body cap; n <= 0 keeps the default
func (h *OptimizationHandler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBodyBytes = n
	}
}

func (h *OptimizationHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
}

// OptimizeLineup handles POST /api/v1/optimize with a JSON pool
func (h *OptimizationHandler) OptimizeLineup(c *gin.Context) {
	h.limitBody(c)
	var req OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge(err) {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  CodeInvalidRequest,
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	cfg := h.defaults
	if req.MinSalary != nil {
		cfg.MinSalary = *req.MinSalary
	}
	if req.MaxSalary != nil {
		cfg.MaxSalary = *req.MaxSalary
	}
	if req.TeamLimit != nil {
		cfg.TeamLimit = *req.TeamLimit
	}

	pool, err := loader.Load(req.Players)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.optimize(c, pool, cfg)
}

// OptimizeCSV handles POST /api/v1/optimize/csv with a salary export body
func (h *OptimizationHandler) OptimizeCSV(c *gin.Context) {
	h.limitBody(c)
	pool, err := loader.LoadCSV(c.Request.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.optimize(c, pool, h.defaults)
}

func (h *OptimizationHandler) optimize(c *gin.Context, pool *loader.Registry, cfg optimizer.Config) {
	log := h.logger.WithFields(logrus.Fields{
		"http_path":   c.FullPath(),
		"pool_size":   pool.Len(),
		"remote_addr": c.ClientIP(),
	})

	opt, err := optimizer.New(cfg, log)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := opt.Optimize(c.Request.Context(), pool)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Infeasibility is reported in the body's status field
	c.JSON(http.StatusOK, result)
}

// ListPlayers handles POST /api/v1/players/query. The query string filters
// and sorts the posted pool (position, search, sort_by, sort_order, count).
func (h *OptimizationHandler) ListPlayers(c *gin.Context) {
	var query loader.PlayerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query",
			Code:    CodeInvalidRequest,
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}
	if query.Position != "" {
		pos, err := models.ParsePosition(string(query.Position))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid position filter",
				Code:    CodeInvalidRequest,
				Details: map[string]string{"position": string(query.Position)},
			})
			return
		}
		query.Position = pos
	}

	h.limitBody(c)
	var req PlayerListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge(err) {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Code:    CodeInvalidRequest,
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}

	pool, err := loader.Load(req.Players)
	if err != nil {
		h.respondError(c, err)
		return
	}

	players := pool.Query(query)
	c.JSON(http.StatusOK, PlayerListResponse{
		Players: players,
		Total:   pool.Len(),
		Count:   len(players),
	})
}

func (h *OptimizationHandler) respondError(c *gin.Context, err error) {
	var malformed *loader.MalformedRecordError
	var missing *loader.MissingColumnError
	var assignment *optimizer.AssignmentInfeasibleError

	switch {
	case tooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "Request body too large",
			Code:    CodePayloadTooLarge,
			Details: map[string]string{"limit_bytes": strconv.FormatInt(h.maxBodyBytes, 10)},
		})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeInvalidHeader,
			Details: map[string]string{"column": missing.Column},
		})
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  CodeMalformedRecord,
			Details: map[string]string{
				"record": strconv.Itoa(malformed.Record),
				"field":  malformed.Field,
				"value":  malformed.Value,
				"reason": malformed.Reason,
			},
		})
	case errors.Is(err, config.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidConfig})
	case errors.Is(err, optimizer.ErrNoSolution):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: CodeSolverTimeout})
	case errors.As(err, &assignment):
		h.logger.WithError(err).Error("Lineup could not be packed into roster slots")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: CodeAssignment})
	default:
		h.logger.WithError(err).Error("Optimization failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Optimization failed",
			Code:    CodeOptimization,
			Details: map[string]string{"error": err.Error()},
		})
	}
}

func tooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes)
}
