package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

var (
	// ErrSolverInfeasible means no lineup satisfies the constraints for the pool
	ErrSolverInfeasible = errors.New("no lineup satisfies the roster, salary and team constraints")

	// ErrNoSolution means the time limit or context ended the search before
	// any feasible lineup was found
	ErrNoSolution = errors.New("solver stopped before finding a feasible lineup")
)

// AssignmentInfeasibleError reports selected players that cannot be packed
// into the roster slots. The constraint set makes this unreachable, so
// seeing it means an internal invariant broke.
type AssignmentInfeasibleError struct {
	PlayerIDs []string
	Unfilled  []models.RosterSlot
	Reason    string
}

func (e *AssignmentInfeasibleError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot assign players [%s] to roster: %s", strings.Join(e.PlayerIDs, ", "), e.Reason)
	}
	slots := make([]string, len(e.Unfilled))
	for i, s := range e.Unfilled {
		slots[i] = string(s)
	}
	return fmt.Sprintf("cannot assign players [%s] to roster: no eligible player left for %s",
		strings.Join(e.PlayerIDs, ", "), strings.Join(slots, ", "))
}

// LineupViolationError reports a lineup that breaks a constraint
type LineupViolationError struct {
	Constraint string
	Detail     string
}

func (e *LineupViolationError) Error() string {
	return fmt.Sprintf("lineup violates %s: %s", e.Constraint, e.Detail)
}
