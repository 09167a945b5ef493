package optimizer

import (
	"fmt"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// ValidateLineup re-checks a packed lineup against every rule in raw units
func ValidateLineup(lineup *models.Lineup, cfg Config) error {
	if lineup == nil {
		return &LineupViolationError{Constraint: "roster_size", Detail: "no lineup"}
	}
	if len(lineup.Slots) != models.RosterSize {
		return &LineupViolationError{
			Constraint: "roster_size",
			Detail:     fmt.Sprintf("expected %d players, got %d", models.RosterSize, len(lineup.Slots)),
		}
	}

	seen := make(map[string]bool, models.RosterSize)
	salary := 0.0
	for i, a := range lineup.Slots {
		if a.Slot != models.RosterSlots[i] {
			return &LineupViolationError{Constraint: "slot_order", Detail: fmt.Sprintf("slot %d is %s, want %s", i, a.Slot, models.RosterSlots[i])}
		}
		if !a.Player.CanFill(a.Slot) {
			return &LineupViolationError{Constraint: "eligibility", Detail: fmt.Sprintf("%s (%s) cannot play %s", a.Player.Name, a.Player.Eligible, a.Slot)}
		}
		if seen[a.Player.ID] {
			return &LineupViolationError{Constraint: "distinct_players", Detail: fmt.Sprintf("player %s used twice", a.Player.ID)}
		}
		seen[a.Player.ID] = true
		salary += a.Player.Salary
	}

	if salary > cfg.MaxSalary {
		return &LineupViolationError{Constraint: "salary_cap", Detail: fmt.Sprintf("%.0f > %.0f", salary, cfg.MaxSalary)}
	}
	if salary < cfg.MinSalary {
		return &LineupViolationError{Constraint: "salary_floor", Detail: fmt.Sprintf("%.0f < %.0f", salary, cfg.MinSalary)}
	}

	players := lineup.Players()
	for _, q := range NBAQuotas {
		n := 0
		for _, p := range players {
			if p.Eligible.HasAny(q.Positions...) {
				n++
			}
		}
		if n < q.Min || (q.Max >= 0 && n > q.Max) {
			return &LineupViolationError{Constraint: "quota_" + q.Name, Detail: fmt.Sprintf("%d players outside [%d, %d]", n, q.Min, q.Max)}
		}
	}

	single := 0
	for _, p := range players {
		if p.IsSingleRaw(models.PositionPG) || p.IsSingleRaw(models.PositionC) {
			single++
		}
	}
	if single > MaxSinglePositionPGOrC {
		return &LineupViolationError{Constraint: "max_single_pg_or_c", Detail: fmt.Sprintf("%d > %d", single, MaxSinglePositionPGOrC)}
	}

	if cfg.TeamLimit > 0 {
		teams := make(map[string]int)
		for _, p := range players {
			teams[p.Team]++
			if teams[p.Team] > cfg.TeamLimit {
				return &LineupViolationError{Constraint: "team_limit", Detail: fmt.Sprintf("more than %d players from %s", cfg.TeamLimit, p.Team)}
			}
		}
	}

	return nil
}
