package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	bac "bactrack/internal/modules/bac/domain"
	apperrors "bactrack/internal/platform/errors"
)

const (
	SettingsFile = "bactrack.yaml"
	DataDirEnv   = "BACTRACK_DATA"
)

type Config struct {
	DataDir      string `yaml:"-"`
	DBPath       string `yaml:"-"`
	SettingsPath string `yaml:"-"`

	Engine  EngineConfig      `yaml:"engine"`
	Log     LogConfig         `yaml:"log"`
	Remote  RemoteConfig      `yaml:"remote"`
	Presets map[string]Preset `yaml:"presets"`
}

// EngineConfig carries the estimation constants. BAC values are percent
// (grams per 100 mL); rates are percent per hour.
type EngineConfig struct {
	EliminationRate  float64       `yaml:"elimination_rate"`
	CautionThreshold float64       `yaml:"caution_threshold"`
	DangerThreshold  float64       `yaml:"danger_threshold"`
	LegalThreshold   float64       `yaml:"legal_threshold"`
	FoodWindow       time.Duration `yaml:"food_window"`
	DuringTolerance  time.Duration `yaml:"during_tolerance"`
	FoodWeights      FoodWeights   `yaml:"food_weights"`
	GenderFactors    GenderFactors `yaml:"gender_factors"`
	SampleCount      int           `yaml:"sample_count"`
}

type FoodWeights struct {
	Before float64 `yaml:"before"`
	During float64 `yaml:"during"`
	After  float64 `yaml:"after"`
}

type GenderFactors struct {
	Male   float64 `yaml:"male"`
	Female float64 `yaml:"female"`
	Other  float64 `yaml:"other"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RemoteConfig struct {
	URL        string        `yaml:"url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries uint64        `yaml:"max_retries"`
}

type Preset struct {
	VolumeML float64 `yaml:"volume_ml"`
	ABV      float64 `yaml:"abv"`
}

func Default() Config {
	return Config{
		Engine: engineFrom(bac.DefaultParams()),
		Log:    LogConfig{Level: "info", Format: "console"},
		Remote: RemoteConfig{Timeout: 10 * time.Second, MaxRetries: 3},
		Presets: map[string]Preset{
			"beer":     {VolumeML: 330, ABV: 5},
			"pint":     {VolumeML: 568, ABV: 4.5},
			"wine":     {VolumeML: 150, ABV: 12},
			"shot":     {VolumeML: 40, ABV: 40},
			"cocktail": {VolumeML: 200, ABV: 10},
		},
	}
}

// engineFrom mirrors the engine's own defaults so the two cannot drift.
func engineFrom(p bac.Params) EngineConfig {
	return EngineConfig{
		EliminationRate:  p.EliminationRate,
		CautionThreshold: p.CautionThreshold,
		DangerThreshold:  p.DangerThreshold,
		LegalThreshold:   p.LegalThreshold,
		FoodWindow:       p.FoodWindow,
		DuringTolerance:  p.DuringTolerance,
		FoodWeights:      FoodWeights{Before: p.Weights.Before, During: p.Weights.During, After: p.Weights.After},
		GenderFactors:    GenderFactors{Male: p.Factors.Male, Female: p.Factors.Female, Other: p.Factors.Other},
		SampleCount:      p.SampleCount,
	}
}

// DefaultDataDir resolves $BACTRACK_DATA, falling back to ~/.bactrack.
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bactrack"
	}
	return filepath.Join(home, ".bactrack")
}

// New layers the optional settings file found in dataDir over Default.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidConfig)
	}
	cfg := Default()
	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(dataDir, "bactrack.db")
	cfg.SettingsPath = filepath.Join(dataDir, SettingsFile)

	raw, err := os.ReadFile(cfg.SettingsPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: decode %s: %v", apperrors.ErrInvalidConfig, cfg.SettingsPath, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("%w: remote.timeout must be non-negative", apperrors.ErrInvalidConfig)
	}
	for name, p := range c.Presets {
		if p.VolumeML < 0 || p.ABV < 0 || p.ABV > 100 {
			return fmt.Errorf("%w: preset %q out of range", apperrors.ErrInvalidConfig, name)
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json", apperrors.ErrInvalidConfig)
	}
	return nil
}
