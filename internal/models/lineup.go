package models

// RosterSlot is one of the eight classic NBA roster slots
type RosterSlot Position

const (
	SlotPG   = RosterSlot(PositionPG)
	SlotSG   = RosterSlot(PositionSG)
	SlotSF   = RosterSlot(PositionSF)
	SlotPF   = RosterSlot(PositionPF)
	SlotC    = RosterSlot(PositionC)
	SlotG    = RosterSlot(PositionG)
	SlotF    = RosterSlot(PositionF)
	SlotUTIL = RosterSlot(PositionUTIL)
)

// RosterSize is the number of players in a lineup
const RosterSize = 8

// RosterSlots is the canonical slot order used for assignment and export
var RosterSlots = [RosterSize]RosterSlot{SlotPG, SlotSG, SlotSF, SlotPF, SlotC, SlotG, SlotF, SlotUTIL}

// LineupCandidate is the solver's selection before slot assignment
type LineupCandidate struct {
	Players []Player `json:"players"`
	// Objective is the value reported by the solver
	Objective float64 `json:"objective"`
}

// PlayerIDs returns the selected ids in selection order
func (c LineupCandidate) PlayerIDs() []string {
	ids := make([]string, len(c.Players))
	for i, p := range c.Players {
		ids[i] = p.ID
	}
	return ids
}

// SlotAssignment places one player in one slot
type SlotAssignment struct {
	Slot   RosterSlot `json:"slot"`
	Player Player     `json:"player"`
}

// Lineup is a fully packed roster in canonical slot order
type Lineup struct {
	Slots           []SlotAssignment `json:"slots"`
	TotalProjection float64          `json:"total_projection"`
	TotalSalary     float64          `json:"total_salary"`
}

// PlayerAt returns the player assigned to the slot
func (l Lineup) PlayerAt(slot RosterSlot) (Player, bool) {
	for _, a := range l.Slots {
		if a.Slot == slot {
			return a.Player, true
		}
	}
	return Player{}, false
}

// Players returns the lineup's players in slot order
func (l Lineup) Players() []Player {
	out := make([]Player, len(l.Slots))
	for i, a := range l.Slots {
		out[i] = a.Player
	}
	return out
}

// PlayerIDs returns the ids in slot order
func (l Lineup) PlayerIDs() []string {
	ids := make([]string, len(l.Slots))
	for i, a := range l.Slots {
		ids[i] = a.Player.ID
	}
	return ids
}
