package risk

import (
	"qgate/internal/inventory"
)

// Weights are the normal-mode signal weights.
type Weights struct {
	Coverage float64 `json:"coverage" mapstructure:"coverage"`
	Issues   float64 `json:"issues" mapstructure:"issues"`
	Recency  float64 `json:"recency" mapstructure:"recency"`
	Size     float64 `json:"size" mapstructure:"size"`
}

// BootstrapWeights are the weights used when neither coverage nor issue
// signals exist.
type BootstrapWeights struct {
	Path    float64 `json:"path" mapstructure:"path"`
	Size    float64 `json:"size" mapstructure:"size"`
	Recency float64 `json:"recency" mapstructure:"recency"`
}

// PathBonus adds Bonus to the path heuristic when any path token is one of
// Tokens. Each bonus applies at most once per path.
type PathBonus struct {
	Name   string   `json:"name" mapstructure:"name"`
	Tokens []string `json:"tokens" mapstructure:"tokens"`
	Bonus  float64  `json:"bonus" mapstructure:"bonus"`
}

// Config holds every tunable of the scorer.
type Config struct {
	Weights          Weights          `json:"weights" mapstructure:"weights"`
	BootstrapWeights BootstrapWeights `json:"bootstrapWeights" mapstructure:"bootstrapWeights"`

	// MissingSignalFactor scales the weight of a path-heuristic stand-in for
	// an absent coverage or issue signal.
	MissingSignalFactor float64 `json:"missingSignalFactor" mapstructure:"missingSignalFactor"`

	RecencyWindowDays int   `json:"recencyWindowDays" mapstructure:"recencyWindowDays"`
	SizeCeilingBytes  int64 `json:"sizeCeilingBytes" mapstructure:"sizeCeilingBytes"`
	MaxFiles          int   `json:"maxFiles" mapstructure:"maxFiles"`

	PathBase    float64     `json:"pathBase" mapstructure:"pathBase"`
	PathBonuses []PathBonus `json:"pathBonuses" mapstructure:"pathBonuses"`

	HighThreshold   int `json:"highThreshold" mapstructure:"highThreshold"`
	MediumThreshold int `json:"mediumThreshold" mapstructure:"mediumThreshold"`

	Filter inventory.FilterConfig `json:"filter" mapstructure:"filter"`
}

// DefaultPathBonuses returns the built-in path patterns.
func DefaultPathBonuses() []PathBonus {
	return []PathBonus{
		{Name: "api", Tokens: []string{"api", "apis", "route", "routes", "router", "endpoint", "endpoints", "controller", "controllers"}, Bonus: 0.4},
		{Name: "component", Tokens: []string{"component", "components", "ui", "widget", "widgets"}, Bonus: 0.2},
		{Name: "lib", Tokens: []string{"lib", "libs", "util", "utils", "helper", "helpers", "shared", "common"}, Bonus: 0.25},
		{Name: "service", Tokens: []string{"service", "services"}, Bonus: 0.3},
		{Name: "hook", Tokens: []string{"hook", "hooks"}, Bonus: 0.2},
		{Name: "state", Tokens: []string{"state", "store", "stores", "context", "contexts", "redux", "reducer", "reducers"}, Bonus: 0.35},
		{Name: "auth", Tokens: []string{"auth", "authentication", "authorization", "security", "session", "sessions", "login", "oauth", "permission", "permissions"}, Bonus: 0.4},
		{Name: "payment", Tokens: []string{"payment", "payments", "billing", "checkout", "invoice", "invoices", "subscription", "subscriptions", "stripe"}, Bonus: 0.45},
	}
}

// DefaultConfig returns the scorer defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Coverage: 0.4,
			Issues:   0.3,
			Recency:  0.2,
			Size:     0.1,
		},
		BootstrapWeights: BootstrapWeights{
			Path:    0.45,
			Size:    0.25,
			Recency: 0.30,
		},
		MissingSignalFactor: 0.6,
		RecencyWindowDays:   30,
		SizeCeilingBytes:    40 * 1024,
		MaxFiles:            50,
		PathBase:            0.3,
		PathBonuses:         DefaultPathBonuses(),
		HighThreshold:       70,
		MediumThreshold:     40,
		Filter:              inventory.DefaultFilterConfig(),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = def.Weights
	}
	if c.BootstrapWeights == (BootstrapWeights{}) {
		c.BootstrapWeights = def.BootstrapWeights
	}
	if c.MissingSignalFactor <= 0 {
		c.MissingSignalFactor = def.MissingSignalFactor
	}
	if c.RecencyWindowDays <= 0 {
		c.RecencyWindowDays = def.RecencyWindowDays
	}
	if c.SizeCeilingBytes <= 0 {
		c.SizeCeilingBytes = def.SizeCeilingBytes
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = def.MaxFiles
	}
	if c.PathBase <= 0 {
		c.PathBase = def.PathBase
	}
	if c.PathBonuses == nil {
		c.PathBonuses = def.PathBonuses
	}
	if c.HighThreshold <= 0 {
		c.HighThreshold = def.HighThreshold
	}
	if c.MediumThreshold <= 0 {
		c.MediumThreshold = def.MediumThreshold
	}
	return c
}
