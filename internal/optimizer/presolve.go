package optimizer

import (
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// dominates reports whether q can always stand in for p. The declared
// positions must match so slot eligibility and the single-position row are
// unchanged. With a salary floor the salaries must be equal, otherwise q may
// be cheaper. The final comparison breaks ties by pool order so the relation
// has no cycles.
func dominates(q, p models.Player, qi, pi int, cfg Config) bool {
	if q.RawPositions != p.RawPositions || q.Projection < p.Projection {
		return false
	}
	if cfg.MinSalary > 0 {
		if q.Salary != p.Salary {
			return false
		}
	} else if q.Salary > p.Salary {
		return false
	}
	switch {
	case q.Projection != p.Projection:
		return q.Projection > p.Projection
	case q.Salary != p.Salary:
		return q.Salary < p.Salary
	default:
		return qi < pi
	}
}

// dropDominated removes players who can never be needed: a full roster of
// dominating alternatives exists, and under a team cap those alternatives
// are spread so that one of them always fits. Pool order is kept.
func dropDominated(players []models.Player, cfg Config) []models.Player {
	kept := make([]models.Player, 0, len(players))
	for pi, p := range players {
		total, sameTeam := 0, 0
		otherTeams := make(map[string]struct{})
		for qi, q := range players {
			if qi == pi || !dominates(q, p, qi, pi, cfg) {
				continue
			}
			total++
			if q.Team == p.Team {
				sameTeam++
			} else {
				otherTeams[q.Team] = struct{}{}
			}
		}

		alternatives := total
		if cfg.TeamLimit > 0 {
			alternatives = sameTeam + len(otherTeams)
		}
		if alternatives < models.RosterSize {
			kept = append(kept, p)
		}
	}
	return kept
}
