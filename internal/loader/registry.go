package loader

import (
	"sort"
	"strings"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// Registry is the read-only player pool for one optimizer run
type Registry struct {
	players []models.Player
	byID    map[string]int
}

func newRegistry(players []models.Player) *Registry {
	byID := make(map[string]int, len(players))
	for i, p := range players {
		byID[p.ID] = i
	}
	return &Registry{players: players, byID: byID}
}

// Len returns the number of players
func (r *Registry) Len() int {
	return len(r.players)
}

// Players returns a copy of the pool in load order
func (r *Registry) Players() []models.Player {
	out := make([]models.Player, len(r.players))
	copy(out, r.players)
	return out
}

// Get looks up a player by id
func (r *Registry) Get(id string) (models.Player, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.Player{}, false
	}
	return r.players[i], true
}

// Sort keys accepted by PlayerQuery.SortBy
const (
	SortByName       = "name"
	SortByTeam       = "team"
	SortBySalary     = "salary"
	SortByProjection = "projection"
	SortByValue      = "value"
)

// PlayerQuery filters and orders the pool for listing
type PlayerQuery struct {
	// Position keeps players eligible for the tag; empty keeps everyone
	Position models.Position `json:"position" form:"position"`
	// Search matches a case-insensitive substring of name or team
	Search    string `json:"search" form:"search"`
	SortBy    string `json:"sort_by" form:"sort_by"`
	SortOrder string `json:"sort_order" form:"sort_order"`
	// Count limits the result; 0 returns all matches
	Count int `json:"count" form:"count"`
}

// Query returns the players matching q. Ties keep load order.
func (r *Registry) Query(q PlayerQuery) []models.Player {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		if q.Position != "" && !p.Eligible.Has(q.Position) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Team), search) {
			continue
		}
		out = append(out, p)
	}

	less := lessFunc(q.SortBy)
	desc := strings.EqualFold(q.SortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	if q.Count > 0 && q.Count < len(out) {
		out = out[:q.Count]
	}
	return out
}

func lessFunc(sortBy string) func(a, b models.Player) bool {
	switch strings.ToLower(sortBy) {
	case SortByTeam:
		return func(a, b models.Player) bool { return a.Team < b.Team }
	case SortBySalary:
		return func(a, b models.Player) bool { return a.Salary < b.Salary }
	case SortByProjection:
		return func(a, b models.Player) bool { return a.Projection < b.Projection }
	case SortByValue:
		return func(a, b models.Player) bool { return a.Value() < b.Value() }
	default:
		return func(a, b models.Player) bool { return a.Name < b.Name }
	}
}
