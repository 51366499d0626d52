// Package config holds the tunables for the FT8 receiver core,
// loaded from YAML the same way the teacher application configures
// its decoder and DSP stages (see cwsl/ka9q_ubersdr's config.go).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SyncMode selects the coarse-sync scoring strategy (spec.md §4.B).
type SyncMode int

const (
	// SyncModeNeighborContrast is the default scorer: dB contrast
	// between each expected Costas tone and its bin/time neighbors.
	SyncModeNeighborContrast SyncMode = iota
	// SyncModeInBandSNR sums power at the expected tone against the
	// other seven tones as a noise estimate.
	SyncModeInBandSNR
)

// MarshalYAML implements yaml.Marshaler.
func (m SyncMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *SyncMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := syncModeFromString(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m SyncMode) String() string {
	if m == SyncModeInBandSNR {
		return "in_band_snr"
	}
	return "neighbor_contrast"
}

func syncModeFromString(s string) (SyncMode, error) {
	switch s {
	case "neighbor_contrast", "":
		return SyncModeNeighborContrast, nil
	case "in_band_snr":
		return SyncModeInBandSNR, nil
	default:
		return 0, fmt.Errorf("unknown sync mode: %s", s)
	}
}

// Config bundles every tunable the pipeline's components accept, from
// waterfall oversampling through LDPC iteration limits.
type Config struct {
	// Waterfall (component A)
	FreqOSR int     `yaml:"freq_osr"`
	TimeOSR int     `yaml:"time_osr"`
	FreqMin float64 `yaml:"freq_min_hz"`
	FreqMax float64 `yaml:"freq_max_hz"`

	// Coarse sync (component B)
	SyncMode SyncMode `yaml:"sync_mode"`
	MinScore float64  `yaml:"min_score"`
	MaxCand  int      `yaml:"max_candidates"`

	// Downmix / fine sync (components C, D)
	UseFineSync  bool    `yaml:"use_fine_sync"`
	DownmixRate  float64 `yaml:"downmix_sample_rate_hz"`
	FineFreqSpan float64 `yaml:"fine_freq_span_hz"`
	FineFreqStep float64 `yaml:"fine_freq_step_hz"`

	// LDPC BP (component G)
	MaxIterations     int     `yaml:"max_iterations"`
	MaxNoImprovement  int     `yaml:"max_no_improvement"`
	LLRScale          float64 `yaml:"llr_scale"`
}

// Default returns the reference tuning used throughout spec.md's
// examples: freq_osr=2, time_osr=2, 300-3000 Hz, min_score~2.5,
// max_cand=40, 30 BP iterations with a 15-iteration stall cutoff.
func Default() Config {
	return Config{
		FreqOSR:          2,
		TimeOSR:          2,
		FreqMin:          300,
		FreqMax:          3000,
		SyncMode:         SyncModeNeighborContrast,
		MinScore:         2.5,
		MaxCand:          40,
		UseFineSync:      false,
		DownmixRate:      100,
		FineFreqSpan:     3.2,
		FineFreqStep:     0.2,
		MaxIterations:    30,
		MaxNoImprovement: 15,
		LLRScale:         24,
	}
}

// Load reads and validates a YAML config file, filling in defaults
// for any field the file leaves zero-valued.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations that would violate the core's
// invariants (spec.md §8) rather than failing deep inside a grid
// index calculation.
func (c Config) Validate() error {
	if c.FreqOSR < 1 || c.TimeOSR < 1 {
		return fmt.Errorf("config: freq_osr and time_osr must be >= 1")
	}
	if c.FreqMax <= c.FreqMin {
		return fmt.Errorf("config: freq_max_hz must be greater than freq_min_hz")
	}
	if c.MaxCand <= 0 {
		return fmt.Errorf("config: max_candidates must be positive")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive")
	}
	return nil
}
