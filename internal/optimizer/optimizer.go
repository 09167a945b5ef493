package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/loader"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/logger"
)

// Status is the outcome of one optimization
type Status string

const (
	// StatusOptimal means the search proved the lineup optimal (within Gap)
	StatusOptimal Status = "optimal"
	// StatusFeasible means the time limit or context stopped the search
	// and the lineup is the best found
	StatusFeasible Status = "feasible"
	// StatusInfeasible means no lineup satisfies the constraints
	StatusInfeasible Status = "infeasible"
)

// Result is what one Optimize call returns. Lineup and Candidate are nil
// when Status is StatusInfeasible.
type Result struct {
	OptimizationID string                  `json:"optimization_id"`
	Status         Status                  `json:"status"`
	Lineup         *models.Lineup          `json:"lineup,omitempty"`
	Candidate      *models.LineupCandidate `json:"-"`
	Stats          SolveStats              `json:"stats"`
}

// Err returns ErrSolverInfeasible for the infeasible outcome and nil otherwise
func (r *Result) Err() error {
	if r.Status == StatusInfeasible {
		return ErrSolverInfeasible
	}
	return nil
}

// Optimizer selects the best lineup for a pool. It holds only immutable
// settings; every Optimize call builds its own model, so one Optimizer can
// serve concurrent requests.
type Optimizer struct {
	cfg Config
	log *logrus.Entry
}

// New validates cfg. A nil log uses the package logger.
func New(cfg Config, log *logrus.Entry) (*Optimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logger.GetLogger())
	}
	return &Optimizer{cfg: cfg, log: log}, nil
}

// Config returns the optimizer's settings
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Optimize solves the lineup ILP over the registry and packs the result into
// roster slots. An infeasible pool is a normal result, not an error.
func (o *Optimizer) Optimize(ctx context.Context, pool *loader.Registry) (*Result, error) {
	optimizationID := uuid.New().String()
	log := o.log.WithFields(logger.OptimizationFields(optimizationID, "nba", "draftkings"))

	players := pool.Players()
	log.WithFields(logrus.Fields{
		"total_players": len(players),
		"min_salary":    o.cfg.MinSalary,
		"max_salary":    o.cfg.MaxSalary,
		"team_limit":    o.cfg.TeamLimit,
	}).Info("Starting optimization")

	candidates := dropDominated(players, o.cfg)
	m := buildModel(candidates, o.cfg)
	log.WithFields(logrus.Fields{
		"constraints": len(m.rows),
		"dominated":   len(players) - len(candidates),
	}).Debug("Lineup model built")

	sol, err := m.solve(ctx, o.cfg, log)
	if err != nil {
		log.WithError(err).Warn("Optimization stopped without a lineup")
		return nil, err
	}

	result := &Result{OptimizationID: optimizationID, Stats: sol.stats}
	if sol.selected == nil {
		result.Status = StatusInfeasible
		log.WithFields(logrus.Fields{
			"nodes":     sol.stats.Nodes,
			"lp_solves": sol.stats.LPSolves,
		}).Info("No lineup satisfies the constraints")
		return result, nil
	}

	candidate := &models.LineupCandidate{Objective: sol.objective}
	for _, i := range sol.selected {
		candidate.Players = append(candidate.Players, m.players[i])
	}

	lineup, err := AssignSlots(candidate.Players)
	if err != nil {
		log.WithError(err).WithField("player_ids", candidate.PlayerIDs()).
			Error("INVARIANT VIOLATION: solver lineup could not be packed into roster slots")
		return nil, err
	}

	if math.Abs(lineup.TotalProjection-candidate.Objective) > feasTol {
		err := fmt.Errorf("lineup score %.6f does not match solver objective %.6f", lineup.TotalProjection, candidate.Objective)
		log.WithError(err).Error("INVARIANT VIOLATION: score mismatch")
		return nil, err
	}
	if err := ValidateLineup(lineup, o.cfg); err != nil {
		log.WithError(err).Error("INVARIANT VIOLATION: solver lineup breaks a constraint")
		return nil, fmt.Errorf("solver returned an invalid lineup: %w", err)
	}

	result.Status = StatusOptimal
	if !sol.optimal {
		result.Status = StatusFeasible
	}
	result.Lineup = lineup
	result.Candidate = candidate

	log.WithFields(logrus.Fields{
		"status":          result.Status,
		"projected_total": lineup.TotalProjection,
		"total_salary":    lineup.TotalSalary,
		"nodes":           sol.stats.Nodes,
		"lp_solves":       sol.stats.LPSolves,
		"fixed":           sol.stats.Fixed,
		"elapsed":         sol.stats.Elapsed,
	}).Info("Optimization completed")

	return result, nil
}
