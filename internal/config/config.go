// Package config loads the overseer configuration file and supplies the
// tuning thresholds used by the wait primitives and control loops.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "400ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var ns int64
	if err := value.Decode(&ns); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(ns)
	return nil
}

// MarshalYAML renders durations back in the human form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the root of overseer.yaml. Every threshold the loops consult
// lives here so an operator can retune a sluggish or twitchy engine without
// a rebuild.
type Config struct {
	// GameDir is the directory the publisher writes agent_state.json into
	// and watches for agent_cmd.json.
	GameDir string `yaml:"game_dir" json:"game_dir"`

	// PollInterval is the cadence of the background snapshot poller.
	PollInterval Duration `yaml:"poll_interval" json:"poll_interval"`

	// StalenessWindow bounds how old the snapshot file may be before the
	// publisher is declared down.
	StalenessWindow Duration `yaml:"staleness_window" json:"staleness_window"`

	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`
	Combat     CombatConfig     `yaml:"combat" json:"combat"`
	Journal    JournalConfig    `yaml:"journal" json:"journal"`
	HTTP       HTTPConfig       `yaml:"http" json:"http"`
}

// NavigationConfig tunes the movement loop. Progress checks ride the shared
// poller cadence, so budgets here are counted in polls, not wall time.
type NavigationConfig struct {
	// StuckPolls is how many consecutive no-movement polls count as stuck.
	StuckPolls int `yaml:"stuck_polls" json:"stuck_polls"`

	// BudgetPolls caps one movement attempt regardless of progress.
	BudgetPolls int `yaml:"budget_polls" json:"budget_polls"`

	// ObstacleRadius bounds the scenery scan around the player after a
	// blocked move.
	ObstacleRadius int `yaml:"obstacle_radius" json:"obstacle_radius"`

	// ExitCandidates caps how many exit grids a map transition will try.
	ExitCandidates int `yaml:"exit_candidates" json:"exit_candidates"`
}

// CombatConfig tunes the combat autopilot.
type CombatConfig struct {
	// HealFraction is the HP fraction below which the autopilot heals.
	HealFraction float64 `yaml:"heal_fraction" json:"heal_fraction"`

	// CriticalFraction is the HP fraction below which the autopilot flees.
	CriticalFraction float64 `yaml:"critical_fraction" json:"critical_fraction"`

	// StuckRounds is how many rounds without progress trigger a flee.
	StuckRounds int `yaml:"stuck_rounds" json:"stuck_rounds"`

	// Timeout bounds a whole encounter in wall time.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// RepositionLimit is how many failed repositions end the turn.
	RepositionLimit int `yaml:"reposition_limit" json:"reposition_limit"`

	// RejectLimit is how many consecutive attack rejections end the turn.
	RejectLimit int `yaml:"reject_limit" json:"reject_limit"`

	// HealItems are item PIDs tried in order when healing.
	HealItems []int `yaml:"heal_items" json:"heal_items"`
}

// JournalConfig selects and configures the journal backend.
type JournalConfig struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend" json:"backend"`

	// Dir is the notes directory for the file backend.
	Dir string `yaml:"dir" json:"dir"`

	// RedisAddr is host:port for the redis backend.
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`
}

// HTTPConfig configures the observation server.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default stimpak and healing powder PIDs tried in order when healing.
var defaultHealItems = []int{40, 273}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		GameDir:         ".",
		PollInterval:    Duration(400 * time.Millisecond),
		StalenessWindow: Duration(30 * time.Second),
		Navigation: NavigationConfig{
			StuckPolls:     20,
			BudgetPolls:    120,
			ObstacleRadius: 3,
			ExitCandidates: 3,
		},
		Combat: CombatConfig{
			HealFraction:     0.4,
			CriticalFraction: 0.2,
			StuckRounds:      8,
			Timeout:          Duration(90 * time.Second),
			RepositionLimit:  3,
			RejectLimit:      3,
			HealItems:        append([]int(nil), defaultHealItems...),
		},
		Journal: JournalConfig{
			Backend: "file",
			Dir:     "journal",
		},
		HTTP: HTTPConfig{
			Addr: ":8990",
		},
	}
}

// Load reads a YAML configuration file, layering it over the defaults.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the loops cannot operate with.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.StalenessWindow <= 0 {
		return fmt.Errorf("staleness_window must be positive, got %s", c.StalenessWindow)
	}
	if c.Navigation.StuckPolls <= 0 || c.Navigation.BudgetPolls <= 0 {
		return fmt.Errorf("navigation poll limits must be positive")
	}
	if c.Combat.HealFraction < c.Combat.CriticalFraction {
		return fmt.Errorf("heal_fraction %.2f must not be below critical_fraction %.2f",
			c.Combat.HealFraction, c.Combat.CriticalFraction)
	}
	switch c.Journal.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown journal backend %q", c.Journal.Backend)
	}
	return nil
}
