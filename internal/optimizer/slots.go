package optimizer

import (
	"fmt"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// AssignSlots packs the selected players into the roster slots. It finds a
// maximum bipartite matching of slots to eligible players with augmenting
// paths (Kuhn), so it succeeds whenever any complete packing exists, unlike
// filling slots greedily in order. Slots are matched in canonical order and
// candidates are tried in the order given; the same input yields the same
// lineup.
func AssignSlots(players []models.Player) (*models.Lineup, error) {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	if len(players) != models.RosterSize {
		return nil, &AssignmentInfeasibleError{
			PlayerIDs: ids,
			Reason:    fmt.Sprintf("need %d players, got %d", models.RosterSize, len(players)),
		}
	}

	m := newSlotMatcher(players)
	for s := range models.RosterSlots {
		visited := make([]bool, len(players))
		m.augment(s, visited)
	}

	if unfilled := m.unfilled(); len(unfilled) > 0 {
		return nil, &AssignmentInfeasibleError{PlayerIDs: ids, Unfilled: unfilled}
	}

	lineup := &models.Lineup{Slots: make([]models.SlotAssignment, 0, models.RosterSize)}
	for s, slot := range models.RosterSlots {
		p := players[m.slotPlayer[s]]
		lineup.Slots = append(lineup.Slots, models.SlotAssignment{Slot: slot, Player: p})
		lineup.TotalProjection += p.Projection
		lineup.TotalSalary += p.Salary
	}
	return lineup, nil
}

type slotMatcher struct {
	players    []models.Player
	slotPlayer []int // slot index -> player index, -1 when open
	playerSlot []int // player index -> slot index, -1 when unassigned
}

func newSlotMatcher(players []models.Player) *slotMatcher {
	m := &slotMatcher{
		players:    players,
		slotPlayer: make([]int, models.RosterSize),
		playerSlot: make([]int, len(players)),
	}
	for i := range m.slotPlayer {
		m.slotPlayer[i] = -1
	}
	for i := range m.playerSlot {
		m.playerSlot[i] = -1
	}
	return m
}

// augment tries to give slot s a player, re-seating already assigned
// players along an alternating path when needed
func (m *slotMatcher) augment(s int, visited []bool) bool {
	slot := models.RosterSlots[s]
	for p, player := range m.players {
		if visited[p] || !player.CanFill(slot) {
			continue
		}
		visited[p] = true
		if m.playerSlot[p] < 0 || m.augment(m.playerSlot[p], visited) {
			m.slotPlayer[s] = p
			m.playerSlot[p] = s
			return true
		}
	}
	return false
}

func (m *slotMatcher) unfilled() []models.RosterSlot {
	var out []models.RosterSlot
	for s, slot := range models.RosterSlots {
		if m.slotPlayer[s] < 0 {
			out = append(out, slot)
		}
	}
	return out
}
