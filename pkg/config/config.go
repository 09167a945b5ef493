package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Lineup rules
	MinSalary  float64 `mapstructure:"MIN_SALARY"`
	MaxSalary  float64 `mapstructure:"MAX_SALARY"`
	TeamLimit  int     `mapstructure:"TEAM_LIMIT"`
	NumLineups int     `mapstructure:"NUM_LINEUPS"`

	// Solver budget
	SolverTimeLimit time.Duration `mapstructure:"SOLVER_TIME_LIMIT"`
	SolverGap       float64       `mapstructure:"SOLVER_GAP"`

	// Batch I/O
	PoolPath   string `mapstructure:"POOL_PATH"`
	OutputPath string `mapstructure:"OUTPUT_PATH"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8082")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")

	// DraftKings NBA classic
	v.SetDefault("MIN_SALARY", 49000)
	v.SetDefault("MAX_SALARY", 50000)
	v.SetDefault("TEAM_LIMIT", 3)
	v.SetDefault("NUM_LINEUPS", 1)

	v.SetDefault("SOLVER_TIME_LIMIT", "10s")
	v.SetDefault("SOLVER_GAP", 0.0)

	v.SetDefault("POOL_PATH", "player_ids.csv")
	v.SetDefault("OUTPUT_PATH", "lineup.csv")
}

// LoadConfig reads defaults, an optional .env file and the environment
func LoadConfig() (*Config, error) {
	return LoadConfigWithFlags(nil)
}

// LoadConfigWithFlags is LoadConfig with command-line flags taking
// precedence. Flag names are the lower-kebab form of the keys
// (e.g. --max-salary binds MAX_SALARY).
func LoadConfigWithFlags(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

var flagKeys = map[string]string{
	"MIN_SALARY":        "min-salary",
	"MAX_SALARY":        "max-salary",
	"TEAM_LIMIT":        "team-limit",
	"NUM_LINEUPS":       "lineups",
	"SOLVER_TIME_LIMIT": "time-limit",
	"SOLVER_GAP":        "gap",
	"POOL_PATH":         "pool",
	"OUTPUT_PATH":       "out",
	"LOG_LEVEL":         "log-level",
	"PORT":              "port",
}

// RegisterFlags declares the flags LoadConfigWithFlags understands. Defaults
// are left zero so unset flags never shadow env or file values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Float64("min-salary", 0, "minimum total salary (default 49000)")
	fs.Float64("max-salary", 0, "salary cap (default 50000)")
	fs.Int("team-limit", 0, "max players per team, <=0 disables (default 3)")
	fs.Int("lineups", 0, "number of lineups, only 1 is supported")
	fs.Duration("time-limit", 0, "solver time limit (default 10s)")
	fs.Float64("gap", 0, "relative optimality gap")
	fs.String("pool", "", "player pool CSV (default player_ids.csv)")
	fs.String("out", "", "lineup CSV output (default lineup.csv)")
	fs.String("log-level", "", "log level")
	fs.String("port", "", "HTTP port (default 8082)")
}

// Validate checks the lineup rules and solver budget
func (c *Config) Validate() error {
	if c.MinSalary < 0 || c.MaxSalary <= 0 {
		return fmt.Errorf("%w: salary bounds must be positive (min=%v max=%v)", ErrInvalidConfig, c.MinSalary, c.MaxSalary)
	}
	if c.MinSalary > c.MaxSalary {
		return fmt.Errorf("%w: min salary %v exceeds max salary %v", ErrInvalidConfig, c.MinSalary, c.MaxSalary)
	}
	if c.NumLineups != 1 {
		return fmt.Errorf("%w: only single-lineup generation is supported, got %d", ErrInvalidConfig, c.NumLineups)
	}
	if c.SolverTimeLimit < 0 {
		return fmt.Errorf("%w: negative solver time limit %s", ErrInvalidConfig, c.SolverTimeLimit)
	}
	if c.SolverGap < 0 || c.SolverGap >= 1 {
		return fmt.Errorf("%w: solver gap must be in [0,1), got %v", ErrInvalidConfig, c.SolverGap)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
