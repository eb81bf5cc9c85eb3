package schemaguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config consolidates engine, limit, logging and snapshot settings
type Config struct {
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Limits     LimitsConfig     `json:"limits" yaml:"limits"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Snapshot   SnapshotConfig   `json:"snapshot" yaml:"snapshot"`
}

// ValidationConfig controls which validators run and how
type ValidationConfig struct {
	Mode DeploymentMode `json:"mode" yaml:"mode"`
	// Exclude holds '-' delimited code patterns; '*' matches any single segment.
	Exclude []string `json:"exclude" yaml:"exclude"`
	// Workers bounds the validator worker pool. 1 runs validators sequentially.
	Workers int `json:"workers" yaml:"workers"`
	// SharedSpaces lists spaces whose views may be used by any data model
	// without matching its space and version.
	SharedSpaces []string `json:"sharedSpaces" yaml:"sharedSpaces"`
}

// LimitsConfig holds the platform resource ceilings
type LimitsConfig struct {
	ViewsPerDataModel      int `json:"viewsPerDataModel" yaml:"viewsPerDataModel"`
	PropertiesPerView      int `json:"propertiesPerView" yaml:"propertiesPerView"`
	ImplementsPerView      int `json:"implementsPerView" yaml:"implementsPerView"`
	ContainersPerView      int `json:"containersPerView" yaml:"containersPerView"`
	PropertiesPerContainer int `json:"propertiesPerContainer" yaml:"propertiesPerContainer"`
	IndexesPerContainer    int `json:"indexesPerContainer" yaml:"indexesPerContainer"`
	EnumValues             int `json:"enumValues" yaml:"enumValues"`

	// List size defaults applied when maxListSize is not set.
	DefaultListSize       int `json:"defaultListSize" yaml:"defaultListSize"`
	DefaultDirectListSize int `json:"defaultDirectListSize" yaml:"defaultDirectListSize"`

	// List size ceilings.
	MaxListSize            int `json:"maxListSize" yaml:"maxListSize"`
	MaxDirectListSize      int `json:"maxDirectListSize" yaml:"maxDirectListSize"`
	MaxDirectBTreeListSize int `json:"maxDirectBTreeListSize" yaml:"maxDirectBTreeListSize"`
	MaxInt32BTreeListSize  int `json:"maxInt32BTreeListSize" yaml:"maxInt32BTreeListSize"`
	MaxInt64BTreeListSize  int `json:"maxInt64BTreeListSize" yaml:"maxInt64BTreeListSize"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// SnapshotConfig contains settings for reading schema documents from S3
type SnapshotConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"`
	UsePathStyle    bool   `json:"usePathStyle" yaml:"usePathStyle"`
}

// DefaultLimits returns the platform ceilings
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		ViewsPerDataModel:      1000,
		PropertiesPerView:      300,
		ImplementsPerView:      10,
		ContainersPerView:      10,
		PropertiesPerContainer: 100,
		IndexesPerContainer:    10,
		EnumValues:             32,
		DefaultListSize:        1000,
		DefaultDirectListSize:  100,
		MaxListSize:            2000,
		MaxDirectListSize:      1000,
		MaxDirectBTreeListSize: 100,
		MaxInt32BTreeListSize:  600,
		MaxInt64BTreeListSize:  300,
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			Mode:         DeploymentModeAdditive,
			Workers:      4,
			SharedSpaces: []string{"cdf_cdm", "cdf_cdm_units", "cdf_idm"},
		},
		Limits: DefaultLimits(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, ok := ParseDeploymentMode(string(c.Validation.Mode)); !ok {
		return &ConfigError{Field: "validation.mode", Message: "must be one of additive, rebuild"}
	}

	if c.Validation.Workers <= 0 {
		return &ConfigError{Field: "validation.workers", Message: "must be greater than 0"}
	}

	for i, p := range c.Validation.Exclude {
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Field: fmt.Sprintf("validation.exclude[%d]", i), Message: "must not be empty"}
		}
	}

	limits := map[string]int{
		"limits.viewsPerDataModel":      c.Limits.ViewsPerDataModel,
		"limits.propertiesPerView":      c.Limits.PropertiesPerView,
		"limits.implementsPerView":      c.Limits.ImplementsPerView,
		"limits.containersPerView":      c.Limits.ContainersPerView,
		"limits.propertiesPerContainer": c.Limits.PropertiesPerContainer,
		"limits.indexesPerContainer":    c.Limits.IndexesPerContainer,
		"limits.enumValues":             c.Limits.EnumValues,
		"limits.defaultListSize":        c.Limits.DefaultListSize,
		"limits.defaultDirectListSize":  c.Limits.DefaultDirectListSize,
		"limits.maxListSize":            c.Limits.MaxListSize,
		"limits.maxDirectListSize":      c.Limits.MaxDirectListSize,
		"limits.maxDirectBTreeListSize": c.Limits.MaxDirectBTreeListSize,
		"limits.maxInt32BTreeListSize":  c.Limits.MaxInt32BTreeListSize,
		"limits.maxInt64BTreeListSize":  c.Limits.MaxInt64BTreeListSize,
	}
	for _, field := range sortedKeys(limits) {
		if limits[field] <= 0 {
			return &ConfigError{Field: field, Message: "must be greater than 0"}
		}
	}

	if c.Snapshot.AccessKeyID != "" && c.Snapshot.SecretAccessKey == "" {
		return &ConfigError{Field: "snapshot.secretAccessKey", Message: "required when accessKeyId is set"}
	}

	return nil
}

// LoadConfigFromFile loads configuration from a YAML or JSON file on top of the defaults.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// ApplyEnv overrides configuration from SCHEMAGUARD_ environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SCHEMAGUARD_MODE"); v != "" {
		c.Validation.Mode = DeploymentMode(v)
	}
	if v := os.Getenv("SCHEMAGUARD_EXCLUDE"); v != "" {
		c.Validation.Exclude = SplitPatterns(v)
	}
	if v := os.Getenv("SCHEMAGUARD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Validation.Workers = n
		}
	}
	if v := os.Getenv("SCHEMAGUARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SCHEMAGUARD_S3_REGION"); v != "" {
		c.Snapshot.Region = v
	}
	if v := os.Getenv("SCHEMAGUARD_S3_ENDPOINT"); v != "" {
		c.Snapshot.Endpoint = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.Snapshot.AccessKeyID = v
		c.Snapshot.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
}

// SplitPatterns splits a comma separated list of exclusion patterns.
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
