package handlers

import (
	"time"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// OptimizationRequest carries a raw pool and optional rule overrides
type OptimizationRequest struct {
	Players   []models.RawPlayer `json:"players" binding:"required"`
	MinSalary *float64           `json:"min_salary,omitempty"`
	MaxSalary *float64           `json:"max_salary,omitempty"`
	TeamLimit *int               `json:"team_limit,omitempty"`
}

// PlayerListRequest carries a raw pool to list
type PlayerListRequest struct {
	Players []models.RawPlayer `json:"players" binding:"required"`
}

// PlayerListResponse is the filtered, sorted pool
type PlayerListResponse struct {
	Players []models.Player `json:"players"`
	Total   int             `json:"total"`
	Count   int             `json:"count"`
}

// Error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeMalformedRecord = "MALFORMED_RECORD"
	CodeInvalidHeader   = "INVALID_HEADER"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeSolverTimeout   = "SOLVER_TIMEOUT"
	CodeAssignment      = "ASSIGNMENT_INFEASIBLE"
	CodeOptimization    = "OPTIMIZATION_ERROR"
)
