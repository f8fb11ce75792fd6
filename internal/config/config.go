// Package config provides unified configuration loading for iqrah.
// It supports loading from YAML files and environment variables, and
// rejects invalid configurations at load time naming the offending
// field.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/intro"
)

// Config contains all iqrah configuration settings.
type Config struct {
	// Student contains the scheduling parameters for one learner.
	Student StudentParams `json:"student" yaml:"student"`

	// Server contains settings for the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Trace contains settings for simulation trace output.
	Trace TraceConfig `json:"trace" yaml:"trace"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// StudentParams tune one learner's daily scheduling.
type StudentParams struct {
	// IntroMinPerDay is the introduction floor. 0 disables it.
	IntroMinPerDay int `json:"intro_min_per_day" yaml:"intro_min_per_day"`

	// MaxWorkingSet is the raw hard cap on active items. The
	// effective cap may be lower when the derivations below bind.
	MaxWorkingSet int `json:"max_working_set" yaml:"max_working_set"`

	// WorkingSetRatio derives a cap as ceil(goal_size * ratio).
	// 0 disables the derivation.
	WorkingSetRatio float64 `json:"working_set_ratio" yaml:"working_set_ratio"`

	// TargetReviewsPerActive derives a throughput-matched cap as
	// floor(session_size / target). 0 disables the derivation.
	TargetReviewsPerActive float64 `json:"target_reviews_per_active" yaml:"target_reviews_per_active"`

	// ClusterStabilityThreshold is the gate's center point.
	ClusterStabilityThreshold float64 `json:"cluster_stability_threshold" yaml:"cluster_stability_threshold"`

	// ClusterGateHysteresis is the half-width of the gate's dead
	// band. Must be smaller than the threshold or the gate can
	// never settle.
	ClusterGateHysteresis float64 `json:"cluster_gate_hysteresis" yaml:"cluster_gate_hysteresis"`

	// ClusterExpansionBatchSize is the stage-0 allowance.
	ClusterExpansionBatchSize int `json:"cluster_expansion_batch_size" yaml:"cluster_expansion_batch_size"`

	// MaxP90DueAgeDays disables the introduction floor on days the
	// measured p90 due age exceeds it. 0 disables the breaker.
	MaxP90DueAgeDays float64 `json:"max_p90_due_age_days" yaml:"max_p90_due_age_days"`

	// BootstrapThreshold forces the gate to Expand while the
	// working set is smaller than this.
	BootstrapThreshold int `json:"bootstrap_threshold" yaml:"bootstrap_threshold"`

	// SessionMin and SessionMax bound the per-day session size.
	SessionMin int `json:"session_min" yaml:"session_min"`
	SessionMax int `json:"session_max" yaml:"session_max"`

	// SoftCapacity is the soft review budget capacity_used is
	// measured against. Defaults to SessionMax when 0.
	SoftCapacity int `json:"soft_capacity" yaml:"soft_capacity"`

	// DampingCurve names the stage-1 capacity damping function:
	// "linear", "quadratic", or "exponential".
	DampingCurve string `json:"damping_curve" yaml:"damping_curve"`

	// AlmostDueLookaheadDays widens due-candidate selection to
	// items coming due within the window.
	AlmostDueLookaheadDays int `json:"almost_due_lookahead_days" yaml:"almost_due_lookahead_days"`

	// EnergyDeltas maps each grade to the energy adjustment a
	// review applies before propagation.
	EnergyDeltas EnergyDeltas `json:"energy_deltas" yaml:"energy_deltas"`
}

// EnergyDeltas are the per-grade energy adjustments.
type EnergyDeltas struct {
	Again float64 `json:"again" yaml:"again"`
	Hard  float64 `json:"hard" yaml:"hard"`
	Good  float64 `json:"good" yaml:"good"`
	Easy  float64 `json:"easy" yaml:"easy"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr" yaml:"addr"`

	// GraphPath is the pre-built knowledge graph YAML file.
	GraphPath string `json:"graph_path" yaml:"graph_path"`

	// DBPath is the SQLite memory-store file.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// TraceConfig configures simulation trace output.
type TraceConfig struct {
	// Enabled turns trace file output on. When false no files are
	// written at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory trace files are written into.
	Dir string `json:"dir" yaml:"dir"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "debug", "info" (default),
	// "warn", or "error".
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Student: StudentParams{
			IntroMinPerDay:            0,
			MaxWorkingSet:             100,
			ClusterStabilityThreshold: 0.6,
			ClusterGateHysteresis:     0.05,
			ClusterExpansionBatchSize: 5,
			BootstrapThreshold:        5,
			SessionMin:                10,
			SessionMax:                30,
			DampingCurve:              intro.DampingLinear,
			AlmostDueLookaheadDays:    1,
			EnergyDeltas: EnergyDeltas{
				Again: -0.30,
				Hard:  0.05,
				Good:  0.15,
				Easy:  0.25,
			},
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: "iqrah.db",
		},
		Trace: TraceConfig{
			Enabled: false,
			Dir:     "traces",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from an optional file path and environment
// variables. Order: defaults -> file -> environment. An empty path
// skips the file step.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top
// of the defaults. The result is not yet validated.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is consistent. Errors name
// the offending field.
func (c *Config) Validate() error {
	s := &c.Student

	if s.ClusterStabilityThreshold <= 0 || s.ClusterStabilityThreshold >= 1 {
		return fmt.Errorf("cluster_stability_threshold must be in (0, 1), got %v", s.ClusterStabilityThreshold)
	}
	if s.ClusterGateHysteresis < 0 {
		return fmt.Errorf("cluster_gate_hysteresis must be non-negative, got %v", s.ClusterGateHysteresis)
	}
	if s.ClusterGateHysteresis >= s.ClusterStabilityThreshold {
		// With the band floor at or below zero the gate can never
		// flip back to Consolidate.
		return fmt.Errorf("cluster_gate_hysteresis (%v) must be smaller than cluster_stability_threshold (%v)",
			s.ClusterGateHysteresis, s.ClusterStabilityThreshold)
	}
	if s.MaxWorkingSet < 1 {
		return fmt.Errorf("max_working_set must be at least 1, got %d", s.MaxWorkingSet)
	}
	if s.IntroMinPerDay < 0 {
		return fmt.Errorf("intro_min_per_day must be non-negative, got %d", s.IntroMinPerDay)
	}
	if s.IntroMinPerDay > s.MaxWorkingSet {
		return fmt.Errorf("intro_min_per_day (%d) must not exceed max_working_set (%d)", s.IntroMinPerDay, s.MaxWorkingSet)
	}
	if s.ClusterExpansionBatchSize < 0 {
		return fmt.Errorf("cluster_expansion_batch_size must be non-negative, got %d", s.ClusterExpansionBatchSize)
	}
	if s.WorkingSetRatio < 0 {
		return fmt.Errorf("working_set_ratio must be non-negative, got %v", s.WorkingSetRatio)
	}
	if s.TargetReviewsPerActive < 0 {
		return fmt.Errorf("target_reviews_per_active must be non-negative, got %v", s.TargetReviewsPerActive)
	}
	if s.MaxP90DueAgeDays < 0 {
		return fmt.Errorf("max_p90_due_age_days must be non-negative, got %v", s.MaxP90DueAgeDays)
	}
	if s.BootstrapThreshold < 0 {
		return fmt.Errorf("bootstrap_threshold must be non-negative, got %d", s.BootstrapThreshold)
	}
	if s.SessionMin < 1 {
		return fmt.Errorf("session_min must be at least 1, got %d", s.SessionMin)
	}
	if s.SessionMax < s.SessionMin {
		return fmt.Errorf("session_max (%d) must not be below session_min (%d)", s.SessionMax, s.SessionMin)
	}
	if s.SoftCapacity < 0 {
		return fmt.Errorf("soft_capacity must be non-negative, got %d", s.SoftCapacity)
	}
	if s.AlmostDueLookaheadDays < 0 {
		return fmt.Errorf("almost_due_lookahead_days must be non-negative, got %d", s.AlmostDueLookaheadDays)
	}
	if _, err := intro.DampingByName(s.DampingCurve); err != nil {
		return fmt.Errorf("damping_curve: %w", err)
	}
	if s.EnergyDeltas.Again >= 0 {
		return fmt.Errorf("energy_deltas.again must be negative, got %v", s.EnergyDeltas.Again)
	}
	for name, v := range map[string]float64{
		"energy_deltas.hard": s.EnergyDeltas.Hard,
		"energy_deltas.good": s.EnergyDeltas.Good,
		"energy_deltas.easy": s.EnergyDeltas.Easy,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, or empty for default)", c.Logging.Level)
	}

	return nil
}

// EffectiveSoftCapacity returns the configured soft budget, falling
// back to SessionMax.
func (s *StudentParams) EffectiveSoftCapacity() int {
	if s.SoftCapacity > 0 {
		return s.SoftCapacity
	}
	return s.SessionMax
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("IQRAH_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("IQRAH_GRAPH_PATH"); v != "" {
		config.Server.GraphPath = v
	}
	if v := os.Getenv("IQRAH_DB_PATH"); v != "" {
		config.Server.DBPath = v
	}
	if v := os.Getenv("IQRAH_TRACE_DIR"); v != "" {
		config.Trace.Dir = v
	}
	if v := os.Getenv("IQRAH_TRACE_ENABLED"); v != "" {
		config.Trace.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("IQRAH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("IQRAH_MAX_WORKING_SET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Student.MaxWorkingSet = n
		}
	}
}
