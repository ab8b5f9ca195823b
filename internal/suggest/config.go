package suggest

import "time"

// Gains are the estimated coverage gains per priority.
type Gains struct {
	P0 float64 `json:"p0" mapstructure:"p0"`
	P1 float64 `json:"p1" mapstructure:"p1"`
	P2 float64 `json:"p2" mapstructure:"p2"`
}

// EnhancementConfig configures the optional enhancement step.
type EnhancementConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// MaxBatch bounds how many of the top suggestions the enhancer sees.
	MaxBatch     int           `json:"maxBatch" mapstructure:"maxBatch"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxAttempts  int           `json:"maxAttempts" mapstructure:"maxAttempts"`
	InitialDelay time.Duration `json:"initialDelay" mapstructure:"initialDelay"`
	// Source tags suggestions the enhancer touched.
	Source Source `json:"source" mapstructure:"source"`
}

// ProjectionConfig configures the coverage projection.
type ProjectionConfig struct {
	GainPerSuggestion float64 `json:"gainPerSuggestion" mapstructure:"gainPerSuggestion"`
	MaxGain           float64 `json:"maxGain" mapstructure:"maxGain"`
}

// Config holds the generator's tunables.
type Config struct {
	MaxSuggestions int `json:"maxSuggestions" mapstructure:"maxSuggestions"`
	P0Threshold    int `json:"p0Threshold" mapstructure:"p0Threshold"`
	P1Threshold    int `json:"p1Threshold" mapstructure:"p1Threshold"`

	Gains       Gains             `json:"gains" mapstructure:"gains"`
	Projection  ProjectionConfig  `json:"projection" mapstructure:"projection"`
	Enhancement EnhancementConfig `json:"-" mapstructure:"-"`

	// SourceRoots are stripped from import paths.
	SourceRoots []string `json:"sourceRoots" mapstructure:"sourceRoots"`
	ImportAlias string   `json:"importAlias" mapstructure:"importAlias"`
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		MaxSuggestions: 30,
		P0Threshold:    80,
		P1Threshold:    50,
		Gains:          Gains{P0: 5, P1: 3, P2: 1},
		Projection: ProjectionConfig{
			GainPerSuggestion: 1.5,
			MaxGain:           25,
		},
		Enhancement: EnhancementConfig{
			MaxBatch:     10,
			Timeout:      30 * time.Second,
			MaxAttempts:  2,
			InitialDelay: 500 * time.Millisecond,
			Source:       SourceAIHybrid,
		},
		SourceRoots: []string{"src/"},
		ImportAlias: "@/",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = def.MaxSuggestions
	}
	if c.P0Threshold <= 0 {
		c.P0Threshold = def.P0Threshold
	}
	if c.P1Threshold <= 0 {
		c.P1Threshold = def.P1Threshold
	}
	if c.Gains == (Gains{}) {
		c.Gains = def.Gains
	}
	if c.Projection.GainPerSuggestion <= 0 {
		c.Projection.GainPerSuggestion = def.Projection.GainPerSuggestion
	}
	if c.Projection.MaxGain <= 0 {
		c.Projection.MaxGain = def.Projection.MaxGain
	}
	e := &c.Enhancement
	if e.MaxBatch <= 0 {
		e.MaxBatch = def.Enhancement.MaxBatch
	}
	if e.Timeout <= 0 {
		e.Timeout = def.Enhancement.Timeout
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = def.Enhancement.MaxAttempts
	}
	if e.InitialDelay <= 0 {
		e.InitialDelay = def.Enhancement.InitialDelay
	}
	if e.Source != SourceAIHybrid && e.Source != SourceAIFull {
		e.Source = def.Enhancement.Source
	}
	if c.SourceRoots == nil {
		c.SourceRoots = def.SourceRoots
	}
	if c.ImportAlias == "" {
		c.ImportAlias = def.ImportAlias
	}
	return c
}

// PriorityFor maps an impact score to a priority.
func PriorityFor(score int, cfg Config) Priority {
	switch {
	case score >= cfg.P0Threshold:
		return PriorityP0
	case score >= cfg.P1Threshold:
		return PriorityP1
	default:
		return PriorityP2
	}
}

// GainFor returns the estimated coverage gain for a priority.
func GainFor(p Priority, cfg Config) float64 {
	switch p {
	case PriorityP0:
		return cfg.Gains.P0
	case PriorityP1:
		return cfg.Gains.P1
	default:
		return cfg.Gains.P2
	}
}
