package optimizer

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// salaryScale keeps salary coefficients near the magnitude of the count rows
const salaryScale = 1000.0

type sense int

const (
	lessEq sense = iota
	greaterEq
	equal
)

func (s sense) String() string {
	switch s {
	case lessEq:
		return "<="
	case greaterEq:
		return ">="
	default:
		return "=="
	}
}

// constraint is one linear row over the per-player binaries
type constraint struct {
	name  string
	coef  []float64
	sense sense
	rhs   float64
}

func (c constraint) holds(activity float64) bool {
	switch c.sense {
	case lessEq:
		return activity <= c.rhs+feasTol
	case greaterEq:
		return activity >= c.rhs-feasTol
	default:
		return activity >= c.rhs-feasTol && activity <= c.rhs+feasTol
	}
}

// PositionQuota bounds how many selected players may be eligible for any of
// Positions. Max below zero means unbounded.
type PositionQuota struct {
	Name      string
	Positions []models.Position
	Min       int
	Max       int
}

// NBAQuotas are the position quotas for the classic 8-slot roster. G, F and
// UTIL are flex slots overlapping PG/SG, SF/PF and everyone.
var NBAQuotas = []PositionQuota{
	{Name: "PG", Positions: []models.Position{models.PositionPG}, Min: 1, Max: 3},
	{Name: "SG", Positions: []models.Position{models.PositionSG}, Min: 1, Max: 3},
	{Name: "SF", Positions: []models.Position{models.PositionSF}, Min: 1, Max: 3},
	{Name: "PF", Positions: []models.Position{models.PositionPF}, Min: 1, Max: 3},
	{Name: "C", Positions: []models.Position{models.PositionC}, Min: 1, Max: 2},
	{Name: "guards", Positions: []models.Position{models.PositionPG, models.PositionSG}, Min: 3, Max: -1},
	{Name: "forwards", Positions: []models.Position{models.PositionSF, models.PositionPF}, Min: 3, Max: -1},
}

// MaxSinglePositionPGOrC caps players declared as only PG or only C
const MaxSinglePositionPGOrC = 4

// model is the ILP for one run. It is built per call and never shared.
type model struct {
	players   []models.Player
	objective []float64
	rows      []constraint
}

func buildModel(players []models.Player, cfg Config) *model {
	m := &model{
		players:   players,
		objective: make([]float64, len(players)),
	}
	for i, p := range players {
		m.objective[i] = p.Projection
	}

	m.add("roster_size", func(models.Player) float64 { return 1 }, equal, models.RosterSize)

	salary := func(p models.Player) float64 { return p.Salary / salaryScale }
	m.add("salary_cap", salary, lessEq, cfg.MaxSalary/salaryScale)
	if cfg.MinSalary > 0 {
		m.add("salary_floor", salary, greaterEq, cfg.MinSalary/salaryScale)
	}

	for _, q := range NBAQuotas {
		q := q
		eligible := indicator(func(p models.Player) bool { return p.Eligible.HasAny(q.Positions...) })
		m.add("min_"+q.Name, eligible, greaterEq, float64(q.Min))
		if q.Max >= 0 {
			m.add("max_"+q.Name, eligible, lessEq, float64(q.Max))
		}
	}

	m.add("max_single_pg_or_c", indicator(func(p models.Player) bool {
		return p.IsSingleRaw(models.PositionPG) || p.IsSingleRaw(models.PositionC)
	}), lessEq, MaxSinglePositionPGOrC)

	if cfg.TeamLimit > 0 {
		for _, team := range teamsOver(players, cfg.TeamLimit) {
			team := team
			m.add("team_"+team, indicator(func(p models.Player) bool { return p.Team == team }),
				lessEq, float64(cfg.TeamLimit))
		}
	}

	return m
}

func (m *model) add(name string, coef func(models.Player) float64, s sense, rhs float64) {
	row := constraint{name: name, coef: make([]float64, len(m.players)), sense: s, rhs: rhs}
	for i, p := range m.players {
		row.coef[i] = coef(p)
	}
	m.rows = append(m.rows, row)
}

func indicator(pred func(models.Player) bool) func(models.Player) float64 {
	return func(p models.Player) float64 {
		if pred(p) {
			return 1
		}
		return 0
	}
}

// teamsOver lists, sorted, the teams with more pool players than the cap.
// Other teams can never break it, so they get no row.
func teamsOver(players []models.Player, limit int) []string {
	counts := make(map[string]int)
	for _, p := range players {
		counts[p.Team]++
	}
	var teams []string
	for team, n := range counts {
		if n > limit {
			teams = append(teams, team)
		}
	}
	sort.Strings(teams)
	return teams
}

// check reports the first row the selection violates
func (m *model) check(selected []int) error {
	for _, row := range m.rows {
		activity := 0.0
		for _, i := range selected {
			activity += row.coef[i]
		}
		if !row.holds(activity) {
			return fmt.Errorf("%s: %.4f %s %.4f", row.name, activity, row.sense, row.rhs)
		}
	}
	return nil
}
