package loader

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// PositionSeparator splits multi-position strings such as "PG/SF"
const PositionSeparator = "/"

// Wire names of the required record fields
const (
	FieldName       = "Name"
	FieldTeam       = "TeamAbbrev"
	FieldPosition   = "Position"
	FieldID         = "ID"
	FieldSalary     = "Salary"
	FieldProjection = "AvgPointsPerGame"
)

// Load validates raw records and builds a registry. The first bad record
// aborts the load and no registry is returned.
func Load(records []models.RawPlayer) (*Registry, error) {
	players := make([]models.Player, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, raw := range records {
		n := i + 1
		player, err := buildPlayer(n, raw)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[player.ID]; dup {
			return nil, malformed(n, FieldID, player.ID, "duplicate id, first seen in record "+strconv.Itoa(first))
		}
		seen[player.ID] = n
		players = append(players, player)
	}

	return newRegistry(players), nil
}

func buildPlayer(n int, raw models.RawPlayer) (models.Player, error) {
	fields := []struct {
		name  string
		value string
	}{
		{FieldName, raw.Name},
		{FieldTeam, raw.TeamAbbrev},
		{FieldPosition, raw.Position},
		{FieldID, raw.ID},
		{FieldSalary, raw.Salary},
		{FieldProjection, raw.AvgPointsPerGame},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return models.Player{}, malformed(n, f.name, "", "required field is missing")
		}
	}

	salary, err := parseNumber(n, FieldSalary, raw.Salary)
	if err != nil {
		return models.Player{}, err
	}
	if salary < 0 {
		return models.Player{}, malformed(n, FieldSalary, raw.Salary, "salary must not be negative")
	}

	projection, err := parseNumber(n, FieldProjection, raw.AvgPointsPerGame)
	if err != nil {
		return models.Player{}, err
	}

	rawPositions, err := ParsePositions(raw.Position)
	if err != nil {
		return models.Player{}, malformed(n, FieldPosition, raw.Position, err.Error())
	}

	return models.Player{
		ID:           strings.TrimSpace(raw.ID),
		Name:         strings.TrimSpace(raw.Name),
		Team:         strings.ToUpper(strings.TrimSpace(raw.TeamAbbrev)),
		Salary:       salary,
		Projection:   projection,
		RawPositions: rawPositions,
		Eligible:     rawPositions.Expand(),
	}, nil
}

// decimal rejects NaN and Inf, so every parsed value is finite
func parseNumber(n int, field, value string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, malformed(n, field, value, "not a number")
	}
	return d.InexactFloat64(), nil
}

// ParsePositions splits a raw position string on "/" into a de-duplicated
// set. A string without a separator yields a one-element set.
func ParsePositions(raw string) (models.PositionSet, error) {
	var set models.PositionSet
	for _, token := range strings.Split(raw, PositionSeparator) {
		p, err := models.ParsePosition(token)
		if err != nil {
			return 0, err
		}
		set = set.Add(p)
	}
	return set, nil
}

// EligiblePositions returns the expanded eligibility for a raw position string
func EligiblePositions(raw string) (models.PositionSet, error) {
	set, err := ParsePositions(raw)
	if err != nil {
		return 0, err
	}
	return set.Expand(), nil
}
