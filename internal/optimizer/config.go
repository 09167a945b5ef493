package optimizer

import (
	"fmt"
	"time"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/pkg/config"
)

// Config holds the lineup rules and the solver budget for one optimizer
type Config struct {
	MinSalary float64 `json:"min_salary"`
	MaxSalary float64 `json:"max_salary"`
	// TeamLimit caps players per team; zero or less disables the cap
	TeamLimit int `json:"team_limit"`

	// TimeLimit bounds the branch-and-bound search; zero means no limit
	TimeLimit time.Duration `json:"time_limit"`
	// Gap is the relative optimality gap at which a node is pruned
	Gap float64 `json:"gap"`
}

// Default lineup rules for DraftKings NBA classic
const (
	DefaultMinSalary = 49000
	DefaultMaxSalary = 50000
	DefaultTeamLimit = 3
	DefaultTimeLimit = 10 * time.Second
)

// DefaultConfig returns the DraftKings NBA classic rules
func DefaultConfig() Config {
	return Config{
		MinSalary: DefaultMinSalary,
		MaxSalary: DefaultMaxSalary,
		TeamLimit: DefaultTeamLimit,
		TimeLimit: DefaultTimeLimit,
	}
}

// ConfigFromSettings maps loaded service settings onto optimizer rules
func ConfigFromSettings(c *config.Config) Config {
	return Config{
		MinSalary: c.MinSalary,
		MaxSalary: c.MaxSalary,
		TeamLimit: c.TeamLimit,
		TimeLimit: c.SolverTimeLimit,
		Gap:       c.SolverGap,
	}
}

func (c Config) validate() error {
	if c.MinSalary < 0 || c.MaxSalary <= 0 || c.MinSalary > c.MaxSalary {
		return fmt.Errorf("%w: salary bounds [%v, %v]", config.ErrInvalidConfig, c.MinSalary, c.MaxSalary)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("%w: negative time limit %s", config.ErrInvalidConfig, c.TimeLimit)
	}
	if c.Gap < 0 || c.Gap >= 1 {
		return fmt.Errorf("%w: gap %v outside [0,1)", config.ErrInvalidConfig, c.Gap)
	}
	return nil
}
