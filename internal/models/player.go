package models

// RawPlayer is one row of a salary export before validation.
// Every field is string-typed as it is on the wire.
type RawPlayer struct {
	Name             string `json:"Name" form:"Name"`
	TeamAbbrev       string `json:"TeamAbbrev" form:"TeamAbbrev"`
	Position         string `json:"Position" form:"Position"`
	ID               string `json:"ID" form:"ID"`
	Salary           string `json:"Salary" form:"Salary"`
	AvgPointsPerGame string `json:"AvgPointsPerGame" form:"AvgPointsPerGame"`
}

// Player is a validated player with resolved eligibility. It is never
// modified after the loader builds it. RawPositions holds the declared tags;
// Eligible is their expansion and always contains UTIL.
type Player struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Team         string      `json:"team"`
	Salary       float64     `json:"salary"`
	Projection   float64     `json:"projection"`
	RawPositions PositionSet `json:"raw_positions"`
	Eligible     PositionSet `json:"eligible_positions"`
}

// CanFill reports whether the player may occupy the slot
func (p Player) CanFill(slot RosterSlot) bool {
	return p.Eligible.Has(Position(slot))
}

// IsSingleRaw reports whether the declared positions are exactly {pos}
func (p Player) IsSingleRaw(pos Position) bool {
	return p.RawPositions == NewPositionSet(pos)
}

// Value returns projected points per $1,000 of salary
func (p Player) Value() float64 {
	if p.Salary <= 0 {
		return 0
	}
	return p.Projection / (p.Salary / 1000)
}
