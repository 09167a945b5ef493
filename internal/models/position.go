package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Position is a DraftKings NBA position tag
type Position string

const (
	PositionPG   Position = "PG"
	PositionSG   Position = "SG"
	PositionSF   Position = "SF"
	PositionPF   Position = "PF"
	PositionC    Position = "C"
	PositionG    Position = "G"
	PositionF    Position = "F"
	PositionUTIL Position = "UTIL"
)

// AllPositions lists every recognised tag in canonical order
var AllPositions = []Position{
	PositionPG, PositionSG, PositionSF, PositionPF, PositionC, PositionG, PositionF, PositionUTIL,
}

func (p Position) bit() PositionSet {
	for i, known := range AllPositions {
		if known == p {
			return 1 << uint(i)
		}
	}
	return 0
}

// ParsePosition normalizes a raw tag ("pg", " C ") into a Position
func ParsePosition(raw string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(raw)))
	if p.bit() == 0 {
		return "", fmt.Errorf("unknown position %q", raw)
	}
	return p, nil
}

// PositionSet is a de-duplicated set of position tags.
// Adding a tag twice is a no-op, so expansion is idempotent.
type PositionSet uint8

// NewPositionSet builds a set from the given tags, ignoring unknown ones
func NewPositionSet(positions ...Position) PositionSet {
	var s PositionSet
	for _, p := range positions {
		s = s.Add(p)
	}
	return s
}

// Add returns the set with p included
func (s PositionSet) Add(p Position) PositionSet {
	return s | p.bit()
}

// Has reports whether p is in the set
func (s PositionSet) Has(p Position) bool {
	b := p.bit()
	return b != 0 && s&b != 0
}

// HasAny reports whether any of the given tags is in the set
func (s PositionSet) HasAny(positions ...Position) bool {
	for _, p := range positions {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Len returns the number of tags in the set
func (s PositionSet) Len() int {
	n := 0
	for _, p := range AllPositions {
		if s.Has(p) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set holds no tags
func (s PositionSet) IsEmpty() bool {
	return s == 0
}

// Positions returns the tags in canonical order
func (s PositionSet) Positions() []Position {
	out := make([]Position, 0, len(AllPositions))
	for _, p := range AllPositions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Expand applies the eligibility rule: PG or SG adds G, SF or PF adds F,
// and UTIL is always added.
func (s PositionSet) Expand() PositionSet {
	if s.HasAny(PositionPG, PositionSG) {
		s = s.Add(PositionG)
	}
	if s.HasAny(PositionSF, PositionPF) {
		s = s.Add(PositionF)
	}
	return s.Add(PositionUTIL)
}

// String joins the tags with "/" the way DraftKings formats them
func (s PositionSet) String() string {
	tags := s.Positions()
	parts := make([]string, len(tags))
	for i, p := range tags {
		parts[i] = string(p)
	}
	return strings.Join(parts, "/")
}

// MarshalJSON encodes the set as a list of tags
func (s PositionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Positions())
}

// UnmarshalJSON decodes a list of tags
func (s *PositionSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	var set PositionSet
	for _, tag := range tags {
		p, err := ParsePosition(tag)
		if err != nil {
			return err
		}
		set = set.Add(p)
	}
	*s = set
	return nil
}
