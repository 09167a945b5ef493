package optimizer

import (
	"math"
	"sort"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

const (
	maxImprovePasses = 200
	scoreTol         = 1e-9
)

// lineupScore orders trial selections: less row violation first, then more
// projected points. An unpackable selection counts as a violation of one.
type lineupScore struct {
	violation float64
	points    float64
}

func (a lineupScore) better(b lineupScore) bool {
	if a.violation < b.violation-scoreTol {
		return true
	}
	return math.Abs(a.violation-b.violation) <= scoreTol && a.points > b.points+scoreTol
}

func (m *model) score(selected []int) lineupScore {
	violation := 0.0
	for _, row := range m.rows {
		activity := 0.0
		for _, i := range selected {
			activity += row.coef[i]
		}
		switch row.sense {
		case lessEq:
			violation += math.Max(0, activity-row.rhs)
		case greaterEq:
			violation += math.Max(0, row.rhs-activity)
		default:
			violation += math.Abs(activity - row.rhs)
		}
	}
	if violation <= feasTol {
		violation = 0
		if !m.packable(selected) {
			violation = 1
		}
	}
	return lineupScore{violation: violation, points: m.value(selected)}
}

// improve repairs and then climbs from selected by first-improvement single
// swaps. Players pinned on stay, players pinned off never enter. It reports
// false when the walk ends on a selection that still breaks a row.
func (m *model) improve(selected []int, pinned []int8) ([]int, float64, bool) {
	cur := append([]int(nil), selected...)
	in := make([]bool, len(m.players))
	for _, i := range cur {
		in[i] = true
	}
	best := m.score(cur)

	for pass := 0; pass < maxImprovePasses; pass++ {
		moved := false
	swap:
		for k, out := range cur {
			if pinned[out] == on {
				continue
			}
			for j := range m.players {
				if in[j] || pinned[j] == off {
					continue
				}
				cur[k] = j
				if sc := m.score(cur); sc.better(best) {
					in[out], in[j] = false, true
					best, moved = sc, true
					break swap
				}
				cur[k] = out
			}
		}
		if !moved {
			break
		}
	}

	if best.violation > 0 {
		return nil, 0, false
	}
	sort.Ints(cur)
	return cur, best.points, true
}

// seedOrder ranks players for the starting roster: relaxation value, then
// projection, then pool order
func (m *model) seedOrder(values []float64) []int {
	order := make([]int, len(m.players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if values != nil && values[i] != values[j] {
			return values[i] > values[j]
		}
		return m.objective[i] > m.objective[j]
	})
	if len(order) > models.RosterSize {
		order = order[:models.RosterSize]
	}
	return order
}
