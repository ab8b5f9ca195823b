// Package config loads qgate's layered configuration: built-in defaults,
// then .qgate/config.{json,yaml,toml}, then QGATE_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"qgate/internal/coverage"
	"qgate/internal/inventory"
	"qgate/internal/paths"
	"qgate/internal/policy"
	"qgate/internal/risk"
	"qgate/internal/suggest"
)

// CurrentVersion is the only config schema version understood.
const CurrentVersion = 1

// Config represents the complete qgate configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Inputs      InputsConfig           `json:"inputs" mapstructure:"inputs"`
	Filter      inventory.FilterConfig `json:"filter" mapstructure:"filter"`
	Risk        risk.Config            `json:"risk" mapstructure:"risk"`
	Coverage    coverage.Config        `json:"coverage" mapstructure:"coverage"`
	Suggest     suggest.Config         `json:"suggest" mapstructure:"suggest"`
	Enhancement EnhancementConfig      `json:"enhancement" mapstructure:"enhancement"`

	// Policy is nil unless the config file has a policy section. There are
	// no default thresholds.
	Policy *policy.Thresholds `json:"policy,omitempty" mapstructure:"policy"`

	History HistoryConfig `json:"history" mapstructure:"history"`
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// InputsConfig names the snapshot files read when no flag overrides them.
// Relative paths are resolved against the repository root.
type InputsConfig struct {
	Files    string `json:"files" mapstructure:"files"`
	Coverage string `json:"coverage" mapstructure:"coverage"`
	Issues   string `json:"issues" mapstructure:"issues"`
	Mapping  string `json:"mapping" mapstructure:"mapping"`
	Scan     string `json:"scan" mapstructure:"scan"`
	Policy   string `json:"policy" mapstructure:"policy"`
}

// EnhancementConfig configures the optional suggestion enhancer.
type EnhancementConfig struct {
	suggest.EnhancementConfig `mapstructure:",squash"`

	// Command is the enhancer process argv.
	Command []string `json:"command,omitempty" mapstructure:"command"`
	Dir     string   `json:"dir,omitempty" mapstructure:"dir"`
	Env     []string `json:"env,omitempty" mapstructure:"env"`
}

// HistoryConfig contains run history settings
type HistoryConfig struct {
	Path  string `json:"path" mapstructure:"path"`
	Limit int    `json:"limit" mapstructure:"limit"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Textfile string `json:"textfile" mapstructure:"textfile"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	filter := inventory.DefaultFilterConfig()

	riskCfg := risk.DefaultConfig()
	riskCfg.Filter = filter
	covCfg := coverage.DefaultConfig()
	covCfg.Filter = filter
	sugCfg := suggest.DefaultConfig()

	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Inputs: InputsConfig{
			Files:    ".qgate/files.json",
			Coverage: ".qgate/coverage.json",
			Issues:   ".qgate/issues.json",
			Mapping:  ".qgate/test-mapping.json",
			Scan:     ".qgate/scan.json",
			Policy:   ".qgate/" + paths.PolicyFileName,
		},
		Filter:   filter,
		Risk:     riskCfg,
		Coverage: covCfg,
		Suggest:  sugCfg,
		Enhancement: EnhancementConfig{
			EnhancementConfig: sugCfg.Enhancement,
		},
		History: HistoryConfig{
			Path:  ".qgate/" + paths.HistoryDBName,
			Limit: 20,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// envKeys are the settings that QGATE_* variables may override, e.g.
// QGATE_LOGGING_LEVEL or QGATE_RISK_MAXFILES.
var envKeys = []string{
	"inputs.files", "inputs.coverage", "inputs.issues", "inputs.mapping", "inputs.scan", "inputs.policy",
	"risk.maxFiles",
	"suggest.maxSuggestions",
	"enhancement.enabled", "enhancement.command", "enhancement.timeout", "enhancement.maxAttempts",
	"history.path", "history.limit",
	"metrics.textfile",
	"logging.format", "logging.level", "logging.file",
}

// LoadConfig loads configuration from <repoRoot>/.qgate/config.{json,yaml,toml}.
// A missing file yields the defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := newViper()
	v.SetConfigName(paths.ConfigName)
	v.AddConfigPath(paths.DataDir(repoRoot))
	return load(v, repoRoot)
}

// LoadConfigFile loads configuration from an explicit file.
func LoadConfigFile(path, repoRoot string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return load(v, repoRoot)
}

// requiredPolicyKeys must all be present in a config policy section.
var requiredPolicyKeys = []string{"minHealthForOk", "minHealthForCaution", "maxIssuesForOk", "staleScanHours"}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("QGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key)
	}
	return v
}

func load(v *viper.Viper, repoRoot string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.RepoRoot = repoRoot

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	if v.IsSet("policy") {
		for _, required := range requiredPolicyKeys {
			if !v.IsSet("policy." + required) {
				return nil, &ConfigError{Field: "policy." + required, Message: "required"}
			}
		}
	}
	if cfg.RepoRoot == "" {
		cfg.RepoRoot = repoRoot
	} else if cfg.RepoRoot != repoRoot {
		cfg.RepoRoot = paths.Resolve(repoRoot, cfg.RepoRoot)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to .qgate/config.json
func (c *Config) Save(repoRoot string) error {
	dir, err := paths.EnsureDataDir(repoRoot)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, paths.ConfigName+".json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q (want human or json)", c.Logging.Format)}
	}
	if c.Risk.MaxFiles < 0 {
		return &ConfigError{Field: "risk.maxFiles", Message: "must not be negative"}
	}
	if c.Suggest.MaxSuggestions < 0 {
		return &ConfigError{Field: "suggest.maxSuggestions", Message: "must not be negative"}
	}
	if c.Enhancement.Enabled && len(c.Enhancement.Command) == 0 {
		return &ConfigError{Field: "enhancement.command", Message: "required when enhancement is enabled"}
	}
	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return &ConfigError{Field: "policy", Message: err.Error()}
		}
	}
	return nil
}

// RiskConfig returns the scorer config with the shared file filter applied.
func (c *Config) RiskConfig() risk.Config {
	rc := c.Risk
	rc.Filter = c.Filter
	return rc
}

// CoverageConfig returns the estimator config with the shared file filter
// applied.
func (c *Config) CoverageConfig() coverage.Config {
	cc := c.Coverage
	cc.Filter = c.Filter
	return cc
}

// SuggestConfig returns the generator config including enhancement settings.
func (c *Config) SuggestConfig() suggest.Config {
	sc := c.Suggest
	sc.Enhancement = c.Enhancement.EnhancementConfig
	return sc
}

// LoadPolicyFile reads thresholds from a TOML file. Unknown keys are
// rejected so that typos cannot silently disable a check.
func LoadPolicyFile(path string) (*policy.Thresholds, error) {
	var th policy.Thresholds
	md, err := toml.DecodeFile(path, &th)
	if err != nil {
		return nil, &ConfigError{Field: "policy", Message: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, &ConfigError{Field: "policy", Message: "unknown keys: " + strings.Join(keys, ", ")}
	}
	for _, required := range []string{"min_health_for_ok", "min_health_for_caution", "max_issues_for_ok", "stale_scan_hours"} {
		if !md.IsDefined(required) {
			return nil, &ConfigError{Field: "policy." + required, Message: "required"}
		}
	}
	if err := th.Validate(); err != nil {
		return nil, &ConfigError{Field: "policy", Message: err.Error()}
	}
	return &th, nil
}

// ResolvePolicy picks the thresholds to evaluate with: an explicit file
// wins, then the config's policy section, then the default policy file.
// It returns ErrPolicyNotConfigured when none exists.
func (c *Config) ResolvePolicy(explicitPath string) (*policy.Thresholds, error) {
	if explicitPath != "" {
		return LoadPolicyFile(paths.Resolve(c.RepoRoot, explicitPath))
	}
	if c.Policy != nil {
		return c.Policy, nil
	}
	if p := paths.Resolve(c.RepoRoot, c.Inputs.Policy); paths.Exists(p) {
		return LoadPolicyFile(p)
	}
	return nil, ErrPolicyNotConfigured
}

// ErrPolicyNotConfigured means no thresholds were found anywhere.
var ErrPolicyNotConfigured = errors.New("no policy thresholds configured")

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
