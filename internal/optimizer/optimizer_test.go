package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/loader"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/config"
	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/logger"
)

func rawPlayer(id, name, positions, team string, salary, projection float64) models.RawPlayer {
	return models.RawPlayer{
		Name:             name,
		TeamAbbrev:       team,
		Position:         positions,
		ID:               id,
		Salary:           fmt.Sprintf("%g", salary),
		AvgPointsPerGame: fmt.Sprintf("%g", projection),
	}
}

func slatePool() []models.RawPlayer {
	return []models.RawPlayer{
		rawPlayer("1", "Trae Young", "PG", "ATL", 6000, 48),
		rawPlayer("2", "Jalen Brunson", "PG", "NYK", 5800, 44),
		rawPlayer("3", "Devin Booker", "SG", "PHX", 5900, 45),
		rawPlayer("4", "Desmond Bane", "SG", "MEM", 5000, 36),
		rawPlayer("5", "Jayson Tatum", "SF/PF", "BOS", 6000, 47),
		rawPlayer("6", "Mikal Bridges", "SF", "NYK", 4800, 33),
		rawPlayer("7", "Pascal Siakam", "PF", "IND", 5200, 38),
		rawPlayer("8", "Nikola Jokic", "C", "DEN", 6000, 50),
		rawPlayer("9", "Jalen Duren", "C", "DET", 4200, 28),
		rawPlayer("10", "Josh Hart", "SG/SF", "NYK", 4500, 31),
	}
}

func slateConfig() Config {
	cfg := DefaultConfig()
	cfg.MinSalary = 40000
	cfg.TimeLimit = 0
	return cfg
}

func loadPool(t *testing.T, records []models.RawPlayer) *loader.Registry {
	t.Helper()
	pool, err := loader.Load(records)
	require.NoError(t, err)
	return pool
}

func newOptimizer(t *testing.T, cfg Config) *Optimizer {
	t.Helper()
	opt, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	return opt
}

func sortedIDs(l *models.Lineup) []string {
	ids := l.PlayerIDs()
	sort.Strings(ids)
	return ids
}

func TestOptimize_SelectsBestLineup(t *testing.T) {
	opt := newOptimizer(t, slateConfig())

	result, err := opt.Optimize(context.Background(), loadPool(t, slatePool()))
	require.NoError(t, err)
	require.NoError(t, result.Err())

	assert.Equal(t, StatusOptimal, result.Status)
	assert.NotEmpty(t, result.OptimizationID)
	require.NotNil(t, result.Lineup)

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, sortedIDs(result.Lineup))
	assert.InDelta(t, 341.0, result.Lineup.TotalProjection, 1e-9)
	assert.Equal(t, 44700.0, result.Lineup.TotalSalary)
	assert.InDelta(t, result.Candidate.Objective, result.Lineup.TotalProjection, 1e-6)

	sum := 0.0
	for _, a := range result.Lineup.Slots {
		sum += a.Player.Projection
	}
	assert.InDelta(t, sum, result.Lineup.TotalProjection, 1e-9)
	assert.NoError(t, ValidateLineup(result.Lineup, opt.Config()))
	assert.Positive(t, result.Stats.Nodes)
	require.NotNil(t, result.Stats.RootBound)
	assert.GreaterOrEqual(t, *result.Stats.RootBound, 341.0-1e-6)
}

func TestOptimize_IsIdempotent(t *testing.T) {
	opt := newOptimizer(t, slateConfig())
	pool := loadPool(t, slatePool())

	first, err := opt.Optimize(context.Background(), pool)
	require.NoError(t, err)
	second, err := opt.Optimize(context.Background(), pool)
	require.NoError(t, err)

	assert.Equal(t, first.Lineup, second.Lineup)
	assert.NotEqual(t, first.OptimizationID, second.OptimizationID)
}

func TestOptimize_ConcurrentCallsShareOptimizer(t *testing.T) {
	opt := newOptimizer(t, slateConfig())
	pool := loadPool(t, slatePool())

	var wg sync.WaitGroup
	totals := make([]float64, 4)
	errs := make([]error, 4)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := opt.Optimize(context.Background(), pool)
			errs[i] = err
			if err == nil {
				totals[i] = result.Lineup.TotalProjection
			}
		}(i)
	}
	wg.Wait()

	for i := range totals {
		require.NoError(t, errs[i])
		assert.InDelta(t, 341.0, totals[i], 1e-9)
	}
}

func TestOptimize_RespectsRules(t *testing.T) {
	tests := []struct {
		name  string
		cfg   func(*Config)
		total float64
		ids   []string
	}{
		{
			name:  "one player per team",
			cfg:   func(c *Config) { c.TeamLimit = 1 },
			total: 325,
			ids:   []string{"1", "3", "4", "5", "6", "7", "8", "9"},
		},
		{
			name:  "tighter salary cap",
			cfg:   func(c *Config) { c.MaxSalary = 44000 },
			total: 334,
			ids:   []string{"1", "10", "2", "3", "4", "5", "6", "8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := slateConfig()
			tt.cfg(&cfg)
			opt := newOptimizer(t, cfg)

			result, err := opt.Optimize(context.Background(), loadPool(t, slatePool()))
			require.NoError(t, err)
			require.Equal(t, StatusOptimal, result.Status)

			assert.InDelta(t, tt.total, result.Lineup.TotalProjection, 1e-9)
			assert.Equal(t, tt.ids, sortedIDs(result.Lineup))
			assert.NoError(t, ValidateLineup(result.Lineup, cfg))
		})
	}
}

func TestOptimize_InfeasiblePool(t *testing.T) {
	t.Run("no centers", func(t *testing.T) {
		var records []models.RawPlayer
		for _, r := range slatePool() {
			if r.Position != "C" {
				records = append(records, r)
			}
		}

		result, err := newOptimizer(t, slateConfig()).Optimize(context.Background(), loadPool(t, records))
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, result.Status)
		assert.Nil(t, result.Lineup)
		assert.True(t, errors.Is(result.Err(), ErrSolverInfeasible))
	})

	t.Run("salary floor out of reach", func(t *testing.T) {
		// The eight most expensive players total 44700
		result, err := newOptimizer(t, DefaultConfig()).Optimize(context.Background(), loadPool(t, slatePool()))
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, result.Status)
	})

	t.Run("too few players", func(t *testing.T) {
		result, err := newOptimizer(t, slateConfig()).Optimize(context.Background(), loadPool(t, slatePool()[:7]))
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, result.Status)
	})

	t.Run("empty pool", func(t *testing.T) {
		result, err := newOptimizer(t, slateConfig()).Optimize(context.Background(), loadPool(t, nil))
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, result.Status)
	})
}

func TestOptimize_RejectsUnpackableSelection(t *testing.T) {
	// "p" is the only PG and the only SF, so the position quotas accept
	// {p, s1, s2, s3, f1, f2, c1, c2} even though PG and SF cannot both be
	// filled. The best packable lineup has to bring in q.
	records := []models.RawPlayer{
		rawPlayer("p", "Swing", "PG/SF", "T1", 5000, 60),
		rawPlayer("s1", "Guard One", "SG", "T2", 5000, 30),
		rawPlayer("s2", "Guard Two", "SG", "T3", 5000, 29),
		rawPlayer("s3", "Guard Three", "SG", "T4", 5000, 28),
		rawPlayer("f1", "Forward One", "PF", "T5", 5000, 27),
		rawPlayer("f2", "Forward Two", "PF", "T6", 5000, 26),
		rawPlayer("c1", "Center One", "C", "T7", 5000, 25),
		rawPlayer("c2", "Center Two", "C", "T8", 5000, 24),
		rawPlayer("q", "Backup", "PG", "T9", 5000, 10),
	}
	cfg := Config{MinSalary: 0, MaxSalary: 50000, TeamLimit: 0}

	result, err := newOptimizer(t, cfg).Optimize(context.Background(), loadPool(t, records))
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, result.Status)

	assert.InDelta(t, 235.0, result.Lineup.TotalProjection, 1e-9)
	assert.Equal(t, []string{"c1", "f1", "f2", "p", "q", "s1", "s2", "s3"}, sortedIDs(result.Lineup))
	assert.Positive(t, result.Stats.Cuts)

	pg, _ := result.Lineup.PlayerAt(models.SlotPG)
	sf, _ := result.Lineup.PlayerAt(models.SlotSF)
	assert.Equal(t, "q", pg.ID)
	assert.Equal(t, "p", sf.ID)
}

func TestOptimize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newOptimizer(t, slateConfig()).Optimize(ctx, loadPool(t, slatePool()))
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNoSolution))
}

func TestNew_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"min above max", Config{MinSalary: 50001, MaxSalary: 50000}},
		{"zero cap", Config{MinSalary: 0, MaxSalary: 0}},
		{"negative floor", Config{MinSalary: -1, MaxSalary: 50000}},
		{"negative time limit", Config{MaxSalary: 50000, TimeLimit: -1}},
		{"gap of one", Config{MaxSalary: 50000, Gap: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := New(tt.cfg, nil)
			assert.Nil(t, opt)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig))
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(&config.Config{
		MinSalary:       48000,
		MaxSalary:       50000,
		TeamLimit:       2,
		SolverTimeLimit: DefaultTimeLimit,
		SolverGap:       0.01,
	})

	assert.Equal(t, Config{MinSalary: 48000, MaxSalary: 50000, TeamLimit: 2, TimeLimit: DefaultTimeLimit, Gap: 0.01}, cfg)
}

// bruteForce scores every 8-player combination that packs and passes
// ValidateLineup. It returns -Inf when none does.
func bruteForce(players []models.Player, cfg Config) float64 {
	best := math.Inf(-1)
	n := len(players)
	combo := make([]models.Player, models.RosterSize)

	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == models.RosterSize {
			lineup, err := AssignSlots(append([]models.Player(nil), combo...))
			if err != nil || ValidateLineup(lineup, cfg) != nil {
				return
			}
			best = math.Max(best, lineup.TotalProjection)
			return
		}
		for i := start; i <= n-(models.RosterSize-depth); i++ {
			combo[depth] = players[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

func TestOptimize_MatchesBruteForce(t *testing.T) {
	positions := []string{"PG", "SG", "SF", "PF", "C", "PG/SG", "SG/SF", "SF/PF", "PF/C", "PG/SF", "C"}
	teams := []string{"ATL", "BOS", "DEN", "LAL", "MIA"}
	rng := rand.New(rand.NewSource(42))

	cfg := Config{MinSalary: 35000, MaxSalary: 50000, TeamLimit: 2}
	opt := newOptimizer(t, cfg)

	for trial := 0; trial < 12; trial++ {
		records := make([]models.RawPlayer, 12)
		for i := range records {
			records[i] = rawPlayer(
				fmt.Sprintf("%d-%d", trial, i),
				fmt.Sprintf("Player %d", i),
				positions[rng.Intn(len(positions))],
				teams[rng.Intn(len(teams))],
				float64(3000+rng.Intn(61)*100),
				float64(10+rng.Intn(160))/4,
			)
		}
		pool := loadPool(t, records)

		t.Run(fmt.Sprintf("pool %d", trial), func(t *testing.T) {
			want := bruteForce(pool.Players(), cfg)

			result, err := opt.Optimize(context.Background(), pool)
			require.NoError(t, err)

			if math.IsInf(want, -1) {
				assert.Equal(t, StatusInfeasible, result.Status)
				return
			}
			require.Equal(t, StatusOptimal, result.Status)
			assert.InDelta(t, want, result.Lineup.TotalProjection, 1e-6)
		})
	}
}

// realisticPool mimics a full NBA slate: salaries between 3000 and 11000
// and projections near five points per $1,000
func realisticPool(seed int64, n int) []models.RawPlayer {
	positions := []string{"PG", "SG", "SF", "PF", "C", "PG/SG", "SG/SF", "SF/PF", "PF/C", "C"}
	rng := rand.New(rand.NewSource(seed))

	records := make([]models.RawPlayer, n)
	for i := range records {
		salary := float64(3000 + rng.Intn(81)*100)
		projection := math.Round(salary/1000*5*(0.75+rng.Float64()/2)*100) / 100
		records[i] = rawPlayer(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("Player %d", i+1),
			positions[rng.Intn(len(positions))],
			fmt.Sprintf("T%02d", rng.Intn(20)),
			salary,
			projection,
		)
	}
	return records
}

func TestOptimize_FullSlate(t *testing.T) {
	for _, seed := range []int64{7, 2024} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			cfg := DefaultConfig()
			opt := newOptimizer(t, cfg)

			result, err := opt.Optimize(context.Background(), loadPool(t, realisticPool(seed, 200)))
			require.NoError(t, err)
			require.Equal(t, StatusOptimal, result.Status)

			assert.NoError(t, ValidateLineup(result.Lineup, cfg))
			assert.GreaterOrEqual(t, result.Lineup.TotalSalary, float64(DefaultMinSalary))
			require.NotNil(t, result.Stats.RootBound)
			assert.GreaterOrEqual(t, *result.Stats.RootBound, result.Lineup.TotalProjection-1e-6)
		})
	}
}

func TestOptimize_TimeLimitKeepsSeededLineup(t *testing.T) {
	cfg := slateConfig()
	cfg.TimeLimit = time.Nanosecond

	result, err := newOptimizer(t, cfg).Optimize(context.Background(), loadPool(t, slatePool()))
	require.NoError(t, err)
	require.Equal(t, StatusFeasible, result.Status)
	require.NotNil(t, result.Lineup)
	assert.NoError(t, ValidateLineup(result.Lineup, cfg))

	require.NotNil(t, result.Stats.RootBound)
	assert.False(t, math.IsInf(*result.Stats.RootBound, 0))
	assert.GreaterOrEqual(t, *result.Stats.RootBound, result.Lineup.TotalProjection-1e-6)
	assert.GreaterOrEqual(t, result.Stats.Gap, 0.0)
	assert.False(t, math.IsInf(result.Stats.Gap, 0) || math.IsNaN(result.Stats.Gap))

	data, err := json.Marshal(result)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "feasible", body["status"])
	assert.Contains(t, body, "lineup")
	assert.Contains(t, body["stats"], "root_bound")
}

func TestResult_MarshalsWhenInfeasible(t *testing.T) {
	var noCenters []models.RawPlayer
	for _, r := range slatePool() {
		if r.Position != "C" {
			noCenters = append(noCenters, r)
		}
	}

	tests := []struct {
		name    string
		cfg     Config
		records []models.RawPlayer
	}{
		// Row activity ranges rule out the root before any simplex call
		{"decided by row ranges", slateConfig(), noCenters},
		// The floor passes the range check and fails in phase one
		{"decided by simplex", DefaultConfig(), slatePool()},
		{"empty pool", slateConfig(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newOptimizer(t, tt.cfg).Optimize(context.Background(), loadPool(t, tt.records))
			require.NoError(t, err)
			require.Equal(t, StatusInfeasible, result.Status)
			assert.Nil(t, result.Stats.RootBound)

			data, err := json.Marshal(result)
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, "infeasible", body["status"])
			assert.NotContains(t, body, "lineup")
			require.Contains(t, body, "stats")
			assert.NotContains(t, body["stats"], "root_bound")
		})
	}
}
