// Package config loads the YAML configuration document and compiles
// its rule list into the engine's immutable RuleSet. All condition
// syntax errors are load-time errors: a document with a single bad
// rule is rejected wholesale, never partially applied.
package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/viper"

	"seedwarden/internal/rules"
)

// Config holds the runtime configuration.
type Config struct {
	// Server is the qBittorrent WebUI connection.
	Server ServerConfig `mapstructure:"server"`

	// Listen is the bind address for the status/metrics endpoint.
	// Empty disables the listener.
	Listen string `mapstructure:"listen"`

	// LogLevel overrides the default log level when set.
	LogLevel string `mapstructure:"log_level"`

	// Defaults are the limits applied when no rule matches a limited
	// torrent. Omitted fields defer to the client's global limits.
	Defaults *LimitsConfig `mapstructure:"defaults"`

	// Rules is the ordered rule list; declaration order is priority.
	Rules []RuleConfig `mapstructure:"rules"`
}

// ServerConfig describes how to reach the qBittorrent WebUI.
type ServerConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Poll     time.Duration `mapstructure:"poll"`
}

// RuleConfig is one rule as written in the configuration file. Each
// condition field is optional and independent; the rule matches on the
// conjunction of whichever are present.
type RuleConfig struct {
	// Category matches torrents with exactly this category. A pointer
	// so that `category: ""` (uncategorized) is distinct from omitted.
	Category *string `mapstructure:"category"`

	// SeedingTime is an operator-prefixed threshold in minutes,
	// e.g. ">10080".
	SeedingTime string `mapstructure:"seedingTime"`

	// Tags requires the torrent's tag set to equal this set exactly.
	// A pointer so that `tags: []` (zero tags) is distinct from omitted.
	Tags *[]string `mapstructure:"tags"`

	// Where holds additional numeric-field conditions keyed by field
	// name, each an operator-prefixed threshold, e.g. ratio: ">=1.5".
	Where map[string]string `mapstructure:"where"`

	Limits LimitsConfig `mapstructure:"limits"`
}

// LimitsConfig is the limits payload of a rule. At least one field
// must be set; an omitted field means "use the client's global value".
type LimitsConfig struct {
	Ratio   *float64 `mapstructure:"ratio"`
	Minutes *int64   `mapstructure:"minutes"`
}

func (l LimitsConfig) toLimits() rules.Limits {
	return rules.Limits{Ratio: l.Ratio, Minutes: l.Minutes}
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("server.poll", "60s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Server.Address == "" {
		return nil, fmt.Errorf("server.address must be set")
	}
	if cfg.Server.Poll <= 0 {
		return nil, fmt.Errorf("server.poll must be positive")
	}

	return &cfg, nil
}

// Compile turns the raw rule list into an immutable RuleSet. Any
// malformed condition or empty limits payload fails the whole
// document.
func (c *Config) Compile() (*rules.RuleSet, error) {
	rs := &rules.RuleSet{Rules: make([]rules.Rule, 0, len(c.Rules))}

	if c.Defaults != nil {
		rs.Defaults = c.Defaults.toLimits()
	}

	for i, rc := range c.Rules {
		rule, err := rc.compile()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rs.Rules = append(rs.Rules, rule)
	}

	return rs, nil
}

func (rc RuleConfig) compile() (rules.Rule, error) {
	var conds []rules.Condition

	if rc.Category != nil {
		conds = append(conds, rules.CategoryEquals(*rc.Category))
	}

	if rc.SeedingTime != "" {
		cmp, err := rules.ParseComparison(rc.SeedingTime)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("seedingTime: %w", err)
		}
		conds = append(conds, rules.NumericCompare(rules.FieldSeedingTime, cmp))
	}

	if rc.Tags != nil {
		conds = append(conds, rules.TagsEqual(rules.NewTagSet(*rc.Tags...)))
	}

	// Sort field names so that the compiled condition order, and with
	// it rule rendering, is stable across loads.
	fields := make([]string, 0, len(rc.Where))
	for field := range rc.Where {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		cmp, err := rules.ParseComparison(rc.Where[field])
		if err != nil {
			return rules.Rule{}, fmt.Errorf("where.%s: %w", field, err)
		}
		conds = append(conds, rules.NumericCompare(field, cmp))
	}

	if rc.Limits.Ratio == nil && rc.Limits.Minutes == nil {
		return rules.Rule{}, fmt.Errorf("limits must set ratio or minutes")
	}

	return rules.Rule{Conditions: conds, Limits: rc.Limits.toLimits()}, nil
}
