// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration. Every numeric value here is a
// calibration parameter: tests assert relative ordering between them, never
// literal values, so tuning the defaults is safe.
type Config struct {
	// Default CLI settings
	Defaults struct {
		Format           string `yaml:"format"`
		ConfidenceLevels string `yaml:"confidence_levels"`
		Verbose          bool   `yaml:"verbose"`
		Debug            bool   `yaml:"debug"`
		NoColor          bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Tag matching parameters
	Matching struct {
		// Confidence assigned to a variant-index hit.
		VariantConfidence float64 `yaml:"variant_confidence"`
		// Confidence assigned to a fuzzy hit.
		FuzzyConfidence float64 `yaml:"fuzzy_confidence"`
		// Minimum similarity ratio for a fuzzy hit to count at all.
		FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	} `yaml:"matching"`

	// Within-page deduplication parameters
	Dedup struct {
		// Maximum center distance, in document units, for two candidates to
		// be treated as one physical label.
		ClusterRadius float64 `yaml:"cluster_radius"`
		// Confidence ceiling applied when 2+ extraction methods agree.
		CrossMethodConfidence float64 `yaml:"cross_method_confidence"`
	} `yaml:"dedup"`

	// Cross-page disambiguation parameters
	Resolution struct {
		// Multiplier applied to candidates on the caller's preferred page.
		PreferredPageBoost float64 `yaml:"preferred_page_boost"`
		// Per-extra-hit reward in the cluster size factor (1 + r*extra).
		// Zero is a valid calibration (no cluster reward), so absence is
		// tracked with a pointer instead of the zero value.
		ClusterHitReward *float64 `yaml:"cluster_hit_reward"`
		// Page-role weight table; roles absent from the table weigh
		// DefaultPageWeight.
		PageWeights       map[string]float64 `yaml:"page_weights"`
		DefaultPageWeight float64            `yaml:"default_page_weight"`
	} `yaml:"resolution"`

	// Worker count for per-page processing; 0 means NumCPU capped at 8.
	Workers int `yaml:"workers"`
}

const defaultClusterHitReward = 0.1

// defaultPageWeights is the recognized page-role weight table.
func defaultPageWeights() map[string]float64 {
	return map[string]float64{
		"SCHEMATIC_DETAIL": 10.0,
		"BLOCK_DIAGRAM":    5.0,
		"CABLE_TABLE":      1.0,
		"DEVICE_LIST":      0.1,
	}
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"

	config.Matching.VariantConfidence = 0.85
	config.Matching.FuzzyConfidence = 0.7
	config.Matching.FuzzyThreshold = 0.85

	config.Dedup.ClusterRadius = 50.0
	config.Dedup.CrossMethodConfidence = 0.95

	config.Resolution.PreferredPageBoost = 10.0
	reward := defaultClusterHitReward
	config.Resolution.ClusterHitReward = &reward
	config.Resolution.PageWeights = defaultPageWeights()
	config.Resolution.DefaultPageWeight = 1.0

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Zero-valued numeric fields mean "not set in the file": restore the
	// defaults so a partial config file cannot silently disable matching.
	applyNumericDefaults(config)

	// Merge user page weights over the recognized table rather than
	// replacing it, so overriding one role keeps the others intact.
	weights := defaultPageWeights()
	for role, w := range config.Resolution.PageWeights {
		weights[role] = w
	}
	config.Resolution.PageWeights = weights

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func applyNumericDefaults(config *Config) {
	if config.Matching.VariantConfidence <= 0 {
		config.Matching.VariantConfidence = 0.85
	}
	if config.Matching.FuzzyConfidence <= 0 {
		config.Matching.FuzzyConfidence = 0.7
	}
	if config.Matching.FuzzyThreshold <= 0 {
		config.Matching.FuzzyThreshold = 0.85
	}
	if config.Dedup.ClusterRadius <= 0 {
		config.Dedup.ClusterRadius = 50.0
	}
	if config.Dedup.CrossMethodConfidence <= 0 {
		config.Dedup.CrossMethodConfidence = 0.95
	}
	if config.Resolution.PreferredPageBoost <= 0 {
		config.Resolution.PreferredPageBoost = 10.0
	}
	// An explicit cluster_hit_reward: 0 is a real setting, not absence.
	if config.Resolution.ClusterHitReward == nil {
		reward := defaultClusterHitReward
		config.Resolution.ClusterHitReward = &reward
	}
	if config.Resolution.DefaultPageWeight <= 0 {
		config.Resolution.DefaultPageWeight = 1.0
	}
	if config.Defaults.Format == "" {
		config.Defaults.Format = "text"
	}
	if config.Defaults.ConfidenceLevels == "" {
		config.Defaults.ConfidenceLevels = "all"
	}
}

// ClusterHitReward returns the per-extra-hit reward in the cluster size
// factor. Zero means cluster size does not influence scoring.
func (c *Config) ClusterHitReward() float64 {
	if c.Resolution.ClusterHitReward == nil {
		return defaultClusterHitReward
	}
	return *c.Resolution.ClusterHitReward
}

// PageWeight returns the disambiguation weight for a page role.
func (c *Config) PageWeight(role string) float64 {
	if w, ok := c.Resolution.PageWeights[role]; ok {
		return w
	}
	return c.Resolution.DefaultPageWeight
}

// ValidateConfig validates relative ordering constraints between parameters.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	m := config.Matching
	if m.VariantConfidence >= 1.0 {
		return fmt.Errorf("variant_confidence must stay below the exact-match ceiling of 1.0, got %v", m.VariantConfidence)
	}
	if m.FuzzyConfidence >= m.VariantConfidence {
		return fmt.Errorf("fuzzy_confidence (%v) must be below variant_confidence (%v)", m.FuzzyConfidence, m.VariantConfidence)
	}
	if config.Dedup.CrossMethodConfidence >= 1.0 {
		return fmt.Errorf("cross_method_confidence must stay below 1.0, got %v", config.Dedup.CrossMethodConfidence)
	}
	if config.Dedup.CrossMethodConfidence <= m.VariantConfidence {
		return fmt.Errorf("cross_method_confidence (%v) must exceed variant_confidence (%v)", config.Dedup.CrossMethodConfidence, m.VariantConfidence)
	}
	if m.FuzzyThreshold <= 0 || m.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be in (0,1], got %v", m.FuzzyThreshold)
	}
	if config.Resolution.ClusterHitReward != nil && *config.Resolution.ClusterHitReward < 0 {
		return fmt.Errorf("cluster_hit_reward cannot be negative, got %v", *config.Resolution.ClusterHitReward)
	}
	if config.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", config.Workers)
	}

	return nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first
	for _, name := range []string{"config.yaml", "tagtrace.yaml", "tagtrace.yml", ".tagtrace.yaml", ".tagtrace.yml"} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// Check XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdgConfig, "tagtrace", name)
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard
// locations when configFile is empty). If loading fails it warns on stderr and
// returns a default configuration. Callers should not crash on a missing or
// bad config file.
func LoadConfigOrDefault(configFile string) *Config {
	return loadConfigOrDefault(configFile, os.Stderr)
}

func loadConfigOrDefault(configFile string, warnings io.Writer) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(warnings, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(warnings, "Using default configuration\n")
		cfg, _ = LoadConfig("")
	}
	return cfg
}
