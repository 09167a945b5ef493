package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

func validLineup(t *testing.T) *models.Lineup {
	t.Helper()
	lineup, err := AssignSlots([]models.Player{
		testPlayer(t, "1", "PG", "ATL", 6000, 48),
		testPlayer(t, "2", "PG", "NYK", 5800, 44),
		testPlayer(t, "3", "SG", "PHX", 5900, 45),
		testPlayer(t, "4", "SG", "MEM", 5000, 36),
		testPlayer(t, "5", "SF/PF", "BOS", 6000, 47),
		testPlayer(t, "6", "SF", "NYK", 4800, 33),
		testPlayer(t, "7", "PF", "IND", 5200, 38),
		testPlayer(t, "8", "C", "DEN", 6000, 50),
	})
	require.NoError(t, err)
	return lineup
}

func violation(t *testing.T, err error) string {
	t.Helper()
	var v *LineupViolationError
	require.True(t, errors.As(err, &v), "expected a LineupViolationError, got %v", err)
	return v.Constraint
}

func TestValidateLineup(t *testing.T) {
	cfg := Config{MinSalary: 40000, MaxSalary: 50000, TeamLimit: 3}

	assert.NoError(t, ValidateLineup(validLineup(t), cfg))

	t.Run("salary cap", func(t *testing.T) {
		c := cfg
		c.MaxSalary = 44000
		assert.Equal(t, "salary_cap", violation(t, ValidateLineup(validLineup(t), c)))
	})

	t.Run("salary floor", func(t *testing.T) {
		c := cfg
		c.MinSalary = 45000
		assert.Equal(t, "salary_floor", violation(t, ValidateLineup(validLineup(t), c)))
	})

	t.Run("team limit", func(t *testing.T) {
		c := cfg
		c.TeamLimit = 1
		assert.Equal(t, "team_limit", violation(t, ValidateLineup(validLineup(t), c)))
	})

	t.Run("ineligible slot", func(t *testing.T) {
		lineup := validLineup(t)
		lineup.Slots[0], lineup.Slots[4] = models.SlotAssignment{Slot: models.SlotPG, Player: lineup.Slots[4].Player},
			models.SlotAssignment{Slot: models.SlotC, Player: lineup.Slots[0].Player}
		assert.Equal(t, "eligibility", violation(t, ValidateLineup(lineup, cfg)))
	})

	t.Run("repeated player", func(t *testing.T) {
		lineup := validLineup(t)
		lineup.Slots[7].Player = lineup.Slots[0].Player
		assert.Equal(t, "distinct_players", violation(t, ValidateLineup(lineup, cfg)))
	})

	t.Run("short roster", func(t *testing.T) {
		lineup := validLineup(t)
		lineup.Slots = lineup.Slots[:7]
		assert.Equal(t, "roster_size", violation(t, ValidateLineup(lineup, cfg)))
		assert.Equal(t, "roster_size", violation(t, ValidateLineup(nil, cfg)))
	})

	t.Run("slot order", func(t *testing.T) {
		lineup := validLineup(t)
		lineup.Slots[5], lineup.Slots[7] = lineup.Slots[7], lineup.Slots[5]
		assert.Equal(t, "slot_order", violation(t, ValidateLineup(lineup, cfg)))
	})
}
