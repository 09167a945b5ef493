package optimizer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

const (
	feasTol  = 1e-6
	intTol   = 1e-6
	pruneTol = 1e-6
)

const (
	free int8 = -1
	off  int8 = 0
	on   int8 = 1
)

type relaxStatus int

const (
	relaxSolved relaxStatus = iota
	relaxInfeasible
	// relaxFailed means the simplex gave up numerically; the node is
	// branched without a bound
	relaxFailed
)

type relaxation struct {
	status  relaxStatus
	bound   float64
	values  []float64
	simplex bool
	// freeIdx maps reduced and state back to model columns
	freeIdx []int
	reduced []float64
	state   []varState
}

// node is a partial assignment; parentBound is the LP bound it inherited
type node struct {
	fixed       []int8
	parentBound float64
}

// SolveStats describes one branch-and-bound run. RootBound is absent when
// the root relaxation was infeasible or could not be solved.
type SolveStats struct {
	Nodes      int           `json:"nodes"`
	LPSolves   int           `json:"lp_solves"`
	LPFailures int           `json:"lp_failures"`
	Cuts       int           `json:"cuts"`
	Fixed      int           `json:"fixed"`
	RootBound  *float64      `json:"root_bound,omitempty"`
	Gap        float64       `json:"gap"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// solution.selected is nil when the model is infeasible
type solution struct {
	selected  []int
	objective float64
	optimal   bool
	stats     SolveStats
}

// search is the mutable state of one solve
type search struct {
	m       *model
	cfg     Config
	log     *logrus.Entry
	root    relaxation
	pinned  []int8
	best    []int
	bestObj float64
	stats   SolveStats
}

// solve runs depth-first branch-and-bound over the model's binaries. The
// root relaxation seeds an incumbent by local search, and its reduced costs
// pin players that cannot appear in a better lineup. The up branch is
// explored first and ties pick the lowest index, so runs are deterministic.
func (m *model) solve(ctx context.Context, cfg Config, log *logrus.Entry) (*solution, error) {
	start := time.Now()
	var deadline time.Time
	if cfg.TimeLimit > 0 {
		deadline = start.Add(cfg.TimeLimit)
	}

	s := &search{
		m:       m,
		cfg:     cfg,
		log:     log,
		pinned:  make([]int8, len(m.players)),
		bestObj: math.Inf(-1),
	}
	rootFixed := make([]int8, len(m.players))
	for i := range rootFixed {
		rootFixed[i] = free
		s.pinned[i] = free
	}

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Branch-and-bound cancelled")
		s.stats.Elapsed = time.Since(start)
		return &solution{stats: s.stats}, ErrNoSolution
	}

	s.root = m.relax(rootFixed)
	if s.root.simplex {
		s.stats.LPSolves++
	}
	rootBound := math.Inf(1)
	switch s.root.status {
	case relaxInfeasible:
		s.stats.Elapsed = time.Since(start)
		return &solution{stats: s.stats}, nil
	case relaxFailed:
		s.stats.LPFailures++
	case relaxSolved:
		rootBound = s.root.bound
		s.stats.RootBound = &rootBound
	}
	s.seed()

	stopped := false
	stack := []node{{fixed: rootFixed, parentBound: rootBound}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Branch-and-bound cancelled")
			stopped = true
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			log.WithField("time_limit", cfg.TimeLimit).Warn("Branch-and-bound hit time limit")
			stopped = true
			break
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.stats.Nodes++

		if s.prunes(n.parentBound) {
			continue
		}
		fixed, ok := s.applyPins(n.fixed)
		if !ok {
			continue
		}

		r := m.relax(fixed)
		if r.simplex {
			s.stats.LPSolves++
		}
		switch r.status {
		case relaxInfeasible:
			continue
		case relaxFailed:
			s.stats.LPFailures++
			r.bound = n.parentBound
		}
		if s.prunes(r.bound) {
			continue
		}

		var branch int
		if r.status == relaxSolved {
			branch = mostFractional(r.values, fixed)
			if branch < 0 {
				selected := integral(r.values)
				if err := m.check(selected); err != nil {
					log.WithError(err).Debug("Rejected integral relaxation")
					continue
				}
				if !m.packable(selected) {
					// Quotas can pass while one player is the only option
					// for two slots. Cut this exact selection and retry.
					m.addNoGood(selected)
					s.stats.Cuts++
					log.WithField("cuts", s.stats.Cuts).Debug("Selection cannot fill every roster slot, added cut")
					stack = append(stack, n)
					continue
				}
				s.offer(selected)
				continue
			}
		} else {
			branch = firstFree(fixed)
			if branch < 0 {
				continue
			}
		}

		down := append([]int8(nil), fixed...)
		down[branch] = off
		up := append([]int8(nil), fixed...)
		up[branch] = on
		stack = append(stack, node{fixed: down, parentBound: r.bound}, node{fixed: up, parentBound: r.bound})
	}

	s.stats.Elapsed = time.Since(start)

	if s.best == nil {
		if stopped {
			return &solution{stats: s.stats}, ErrNoSolution
		}
		return &solution{stats: s.stats}, nil
	}

	if stopped && s.bestObj != 0 && s.stats.RootBound != nil {
		s.stats.Gap = math.Max(0, (rootBound-s.bestObj)/math.Abs(s.bestObj))
	}

	return &solution{selected: s.best, objective: s.bestObj, optimal: !stopped, stats: s.stats}, nil
}

func pruneMargin(incumbent, gap float64) float64 {
	return math.Max(pruneTol, gap*math.Abs(incumbent))
}

func (s *search) prunes(bound float64) bool {
	return s.best != nil && bound <= s.bestObj+pruneMargin(s.bestObj, s.cfg.Gap)
}

// seed starts local search from the players the root relaxation likes most,
// or from the top projections when the root has no solution
func (s *search) seed() {
	if len(s.m.players) < models.RosterSize {
		return
	}
	var values []float64
	if s.root.status == relaxSolved {
		values = s.root.values
	}
	selected, obj, ok := s.m.improve(s.m.seedOrder(values), s.pinned)
	if !ok {
		s.log.Debug("Local search found no starting lineup")
		return
	}
	s.best, s.bestObj = selected, obj
	s.log.WithField("objective", obj).Debug("Seeded incumbent")
	s.fixByReducedCost()
}

// offer records an integral lineup from the tree, polishes it by local
// search and tightens the reduced-cost pins
func (s *search) offer(selected []int) {
	obj := s.m.value(selected)
	if obj <= s.bestObj {
		return
	}
	s.best, s.bestObj = selected, obj
	if polished, pobj, ok := s.m.improve(selected, s.pinned); ok && pobj > s.bestObj {
		s.best, s.bestObj = polished, pobj
	}
	s.log.WithFields(logrus.Fields{
		"objective": s.bestObj,
		"nodes":     s.stats.Nodes,
	}).Debug("New incumbent")
	s.fixByReducedCost()
}

// fixByReducedCost pins every player whose move off its root bound already
// costs more than the gap to the incumbent
func (s *search) fixByReducedCost() {
	if s.best == nil || s.root.status != relaxSolved {
		return
	}
	limit := s.bestObj + pruneMargin(s.bestObj, s.cfg.Gap)
	fixed := 0
	for k, i := range s.root.freeIdx {
		d := s.root.reduced[k]
		switch s.root.state[k] {
		case atLower:
			if d < 0 && s.root.bound+d <= limit {
				s.pinned[i] = off
			}
		case atUpper:
			if d > 0 && s.root.bound-d <= limit {
				s.pinned[i] = on
			}
		}
		if s.pinned[i] != free {
			fixed++
		}
	}
	s.stats.Fixed = fixed
}

// applyPins merges the global pins into a node. A node that fixed a pinned
// player the other way cannot beat the incumbent.
func (s *search) applyPins(fixed []int8) ([]int8, bool) {
	merged := append([]int8(nil), fixed...)
	for i, p := range s.pinned {
		if p == free {
			continue
		}
		if merged[i] == free {
			merged[i] = p
		} else if merged[i] != p {
			return nil, false
		}
	}
	return merged, true
}

// relax solves the LP relaxation with the fixed variables substituted out.
// Rows are first tightened against the free variables' activity range, so
// decided rows are dropped and contradictions prune without a simplex call.
func (m *model) relax(fixed []int8) relaxation {
	var freeIdx []int
	base := 0.0
	for i, f := range fixed {
		switch f {
		case free:
			freeIdx = append(freeIdx, i)
		case on:
			base += m.objective[i]
		}
	}

	var rows []lpRow
	for ri := range m.rows {
		row := &m.rows[ri]
		rhs := row.rhs
		for i, f := range fixed {
			if f == on {
				rhs -= row.coef[i]
			}
		}
		minAct, maxAct := 0.0, 0.0
		for _, i := range freeIdx {
			if a := row.coef[i]; a < 0 {
				minAct += a
			} else {
				maxAct += a
			}
		}

		switch row.sense {
		case lessEq:
			if minAct > rhs+feasTol {
				return relaxation{status: relaxInfeasible}
			}
			if maxAct <= rhs+feasTol {
				continue
			}
		case greaterEq:
			if maxAct < rhs-feasTol {
				return relaxation{status: relaxInfeasible}
			}
			if minAct >= rhs-feasTol {
				continue
			}
		case equal:
			if rhs < minAct-feasTol || rhs > maxAct+feasTol {
				return relaxation{status: relaxInfeasible}
			}
			if minAct == 0 && maxAct == 0 {
				continue
			}
		}

		coef := make([]float64, len(freeIdx))
		for j, i := range freeIdx {
			coef[j] = row.coef[i]
		}
		rows = append(rows, lpRow{coef: coef, sense: row.sense, rhs: rhs})
	}

	values := make([]float64, len(fixed))
	for i, f := range fixed {
		if f == on {
			values[i] = 1
		}
	}
	if len(freeIdx) == 0 {
		return relaxation{status: relaxSolved, bound: base, values: values}
	}

	c := make([]float64, len(freeIdx))
	for j, i := range freeIdx {
		c[j] = m.objective[i]
	}
	res := solveLP(c, rows)
	switch res.status {
	case lpInfeasible:
		return relaxation{status: relaxInfeasible, simplex: true}
	case lpFailed:
		return relaxation{status: relaxFailed, values: values, simplex: true}
	}

	for j, i := range freeIdx {
		values[i] = res.x[j]
	}
	return relaxation{
		status:  relaxSolved,
		bound:   base + res.objective,
		values:  values,
		simplex: true,
		freeIdx: freeIdx,
		reduced: res.reduced,
		state:   res.state,
	}
}

// mostFractional picks the free variable closest to 0.5, or -1 when the
// relaxation is integral
func mostFractional(values []float64, fixed []int8) int {
	branch, bestDist := -1, 0.5
	for i, v := range values {
		if fixed[i] != free {
			continue
		}
		frac := v - math.Floor(v)
		if frac <= intTol || frac >= 1-intTol {
			continue
		}
		if d := math.Abs(frac - 0.5); d < bestDist {
			branch, bestDist = i, d
		}
	}
	return branch
}

func integral(values []float64) []int {
	var selected []int
	for i, v := range values {
		if v > 0.5 {
			selected = append(selected, i)
		}
	}
	return selected
}

// packable reports whether the selection has a complete slot assignment
func (m *model) packable(selected []int) bool {
	players := make([]models.Player, len(selected))
	for k, i := range selected {
		players[k] = m.players[i]
	}
	_, err := AssignSlots(players)
	return err == nil
}

// addNoGood forbids selecting every player of the set together
func (m *model) addNoGood(selected []int) {
	row := constraint{
		name:  fmt.Sprintf("no_good_%d", len(m.rows)),
		coef:  make([]float64, len(m.players)),
		sense: lessEq,
		rhs:   float64(len(selected) - 1),
	}
	for _, i := range selected {
		row.coef[i] = 1
	}
	m.rows = append(m.rows, row)
}

func firstFree(fixed []int8) int {
	for i, f := range fixed {
		if f == free {
			return i
		}
	}
	return -1
}

func (m *model) value(selected []int) float64 {
	points := make([]float64, len(selected))
	for k, i := range selected {
		points[k] = m.objective[i]
	}
	return floats.Sum(points)
}
