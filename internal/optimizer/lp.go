package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTol    = 1e-9
	pricingTol  = 1e-9
	phaseOneTol = 1e-7
	ratioTieTol = 1e-12
	// blandAfter is the run of degenerate pivots after which pricing falls
	// back to the first eligible column
	blandAfter = 50
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpFailed
)

// varState is where a structural variable ended in the final basis
type varState int8

const (
	basic varState = iota
	atLower
	atUpper
)

type lpRow struct {
	coef  []float64
	sense sense
	rhs   float64
}

type lpResult struct {
	status    lpStatus
	objective float64
	x         []float64
	// reduced and state are per structural variable
	reduced []float64
	state   []varState
}

// boundedLP is a dense tableau for max c·x with 0 <= x <= 1. The unit upper
// bounds never become rows: a nonbasic column sits at 0 or at its bound and
// the ratio test may flip it. Slacks and artificials have lower bound zero.
type boundedLP struct {
	tab   *mat.Dense
	basis []int
	// row is the tableau row of a basic column, -1 for nonbasic
	row  []int
	up   []float64
	val  []float64
	atUp []bool
	arts []int
}

// solveLP runs a two-phase bounded simplex. Phase one drives the
// artificials to zero; phase two maximizes c over the feasible basis.
func solveLP(c []float64, rows []lpRow) lpResult {
	n, m := len(c), len(rows)
	if m == 0 {
		return solveBox(c)
	}

	slackOf := make([]int, m)
	artOf := make([]int, m)
	cols := n
	for i, r := range rows {
		slackOf[i] = -1
		if r.sense != equal {
			slackOf[i] = cols
			cols++
		}
	}
	for i, r := range rows {
		artOf[i] = -1
		if r.sense == equal || (r.sense == lessEq && r.rhs < 0) || (r.sense == greaterEq && r.rhs > 0) {
			artOf[i] = cols
			cols++
		}
	}

	s := &boundedLP{
		tab:   mat.NewDense(m, cols, nil),
		basis: make([]int, m),
		row:   make([]int, cols),
		up:    make([]float64, cols),
		val:   make([]float64, cols),
		atUp:  make([]bool, cols),
	}
	for j := range s.row {
		s.row[j] = -1
		s.up[j] = math.Inf(1)
		if j < n {
			s.up[j] = 1
		}
	}

	for i, r := range rows {
		t := s.tab.RawRowView(i)
		copy(t, r.coef)
		start := slackOf[i]
		if start >= 0 {
			t[start] = 1
			if r.sense == greaterEq {
				t[start] = -1
			}
		}
		if a := artOf[i]; a >= 0 {
			t[a] = 1
			if r.rhs < 0 {
				t[a] = -1
			}
			start = a
			s.arts = append(s.arts, a)
		}
		rhs := r.rhs
		if p := t[start]; p != 1 {
			floats.Scale(1/p, t)
			rhs /= p
		}
		s.basis[i] = start
		s.row[start] = i
		s.val[start] = rhs
	}

	maxIter := 50 * (m + cols)
	if len(s.arts) > 0 {
		phaseOne := make([]float64, cols)
		for _, a := range s.arts {
			phaseOne[a] = -1
		}
		if _, ok := s.run(phaseOne, maxIter); !ok {
			return lpResult{status: lpFailed}
		}
		infeasibility := 0.0
		for _, a := range s.arts {
			infeasibility += s.val[a]
		}
		if infeasibility > phaseOneTol {
			return lpResult{status: lpInfeasible}
		}
		for _, a := range s.arts {
			s.up[a] = 0
		}
	}

	cost := make([]float64, cols)
	copy(cost, c)
	d, ok := s.run(cost, maxIter)
	if !ok {
		return lpResult{status: lpFailed}
	}

	res := lpResult{
		status:  lpOptimal,
		x:       make([]float64, n),
		reduced: d[:n],
		state:   make([]varState, n),
	}
	for j := 0; j < n; j++ {
		res.x[j] = math.Min(1, math.Max(0, s.val[j]))
		res.objective += c[j] * s.val[j]
		switch {
		case s.row[j] >= 0:
			res.state[j] = basic
		case s.atUp[j]:
			res.state[j] = atUpper
		default:
			res.state[j] = atLower
		}
	}
	return res
}

// solveBox handles a relaxation with no binding rows
func solveBox(c []float64) lpResult {
	res := lpResult{
		status:  lpOptimal,
		x:       make([]float64, len(c)),
		reduced: append([]float64(nil), c...),
		state:   make([]varState, len(c)),
	}
	for j, cj := range c {
		res.state[j] = atLower
		if cj > 0 {
			res.x[j] = 1
			res.objective += cj
			res.state[j] = atUpper
		}
	}
	return res
}

func (s *boundedLP) reducedCosts(cost []float64) []float64 {
	d := append([]float64(nil), cost...)
	for i, bv := range s.basis {
		if cb := cost[bv]; cb != 0 {
			floats.AddScaled(d, -cb, s.tab.RawRowView(i))
		}
	}
	return d
}

// run pivots until no column prices out. It returns false on the iteration
// cap or an unbounded ray.
func (s *boundedLP) run(cost []float64, maxIter int) ([]float64, bool) {
	d := s.reducedCosts(cost)
	rows, _ := s.tab.Dims()
	degenerate := 0

	for iter := 0; iter < maxIter; iter++ {
		enter := s.price(d, degenerate > blandAfter)
		if enter < 0 {
			return d, true
		}

		dir := 1.0
		if s.atUp[enter] {
			dir = -1
		}
		step := s.up[enter]
		leave, toUpper := -1, false
		for i := 0; i < rows; i++ {
			a := s.tab.At(i, enter)
			if math.Abs(a) < pivotTol {
				continue
			}
			bv := s.basis[i]
			delta := -a * dir
			var t float64
			upper := false
			if delta < 0 {
				t = s.val[bv] / -delta
			} else {
				if math.IsInf(s.up[bv], 1) {
					continue
				}
				t, upper = (s.up[bv]-s.val[bv])/delta, true
			}
			t = math.Max(t, 0)
			if t < step-ratioTieTol ||
				(leave >= 0 && math.Abs(t-step) <= ratioTieTol && math.Abs(a) > math.Abs(s.tab.At(leave, enter))) {
				step, leave, toUpper = t, i, upper
			}
		}
		if math.IsInf(step, 1) {
			return d, false
		}
		if step < ratioTieTol {
			degenerate++
		} else {
			degenerate = 0
		}

		for i := 0; i < rows; i++ {
			if a := s.tab.At(i, enter); a != 0 {
				s.val[s.basis[i]] -= a * dir * step
			}
		}
		s.val[enter] += dir * step

		if leave < 0 {
			s.atUp[enter] = !s.atUp[enter]
			s.val[enter] = 0
			if s.atUp[enter] {
				s.val[enter] = s.up[enter]
			}
			continue
		}
		s.pivot(leave, enter, toUpper, d)
	}
	return d, false
}

// price picks the entering column by largest reduced cost, or the first
// eligible one when bland is set
func (s *boundedLP) price(d []float64, bland bool) int {
	enter, best := -1, pricingTol
	for j, dj := range d {
		if s.row[j] >= 0 || s.up[j] <= 0 {
			continue
		}
		var score float64
		switch {
		case !s.atUp[j] && dj > pricingTol:
			score = dj
		case s.atUp[j] && dj < -pricingTol:
			score = -dj
		default:
			continue
		}
		if bland {
			return j
		}
		if score > best {
			enter, best = j, score
		}
	}
	return enter
}

func (s *boundedLP) pivot(leave, enter int, toUpper bool, d []float64) {
	lv := s.basis[leave]
	s.val[lv] = 0
	if toUpper {
		s.val[lv] = s.up[lv]
	}
	s.atUp[lv] = toUpper

	pr := s.tab.RawRowView(leave)
	floats.Scale(1/pr[enter], pr)
	rows, _ := s.tab.Dims()
	for i := 0; i < rows; i++ {
		if i == leave {
			continue
		}
		r := s.tab.RawRowView(i)
		if a := r[enter]; a != 0 {
			floats.AddScaled(r, -a, pr)
		}
	}
	if de := d[enter]; de != 0 {
		floats.AddScaled(d, -de, pr)
	}

	s.basis[leave] = enter
	s.row[enter] = leave
	s.row[lv] = -1
	s.atUp[enter] = false
}
