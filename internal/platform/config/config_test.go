package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bac "bactrack/internal/modules/bac/domain"
	"bactrack/internal/platform/config"
	apperrors "bactrack/internal/platform/errors"
)

func TestNewWithoutSettingsUsesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "bactrack.db"), cfg.DBPath)
	assert.Equal(t, 0.015, cfg.Engine.EliminationRate)
	assert.Equal(t, 0.68, cfg.Engine.GenderFactors.Male)
	assert.Equal(t, 2*time.Hour, cfg.Engine.FoodWindow)
	assert.Contains(t, cfg.Presets, "beer")
}

func TestNewOverlaysSettingsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	settings := `
engine:
  legal_threshold: 0.05
  food_window: 90m
log:
  level: debug
  format: json
remote:
  url: https://sync.example.test
presets:
  cider:
    volume_ml: 500
    abv: 4.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(settings), 0o644))

	cfg, err := config.New(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Engine.LegalThreshold)
	assert.Equal(t, 90*time.Minute, cfg.Engine.FoodWindow)
	assert.Equal(t, 0.08, cfg.Engine.DangerThreshold, "untouched keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://sync.example.test", cfg.Remote.URL)
	assert.Equal(t, config.Preset{VolumeML: 500, ABV: 4.5}, cfg.Presets["cider"])
	assert.Contains(t, cfg.Presets, "wine", "default presets survive a partial override")
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	t.Parallel()
	_, err := config.New("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("log:\n  format: xml\n"), 0o644))
	_, err = config.New(dir)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("presets:\n  bad:\n    abv: 140\n"), 0o644))
	_, err = config.New(dir)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestDefaultEngineMatchesCalculatorDefaults(t *testing.T) {
	t.Parallel()
	want := bac.DefaultParams()
	got := config.Default().Engine

	assert.Equal(t, want.EliminationRate, got.EliminationRate)
	assert.Equal(t, want.CautionThreshold, got.CautionThreshold)
	assert.Equal(t, want.DangerThreshold, got.DangerThreshold)
	assert.Equal(t, want.LegalThreshold, got.LegalThreshold)
	assert.Equal(t, want.FoodWindow, got.FoodWindow)
	assert.Equal(t, want.DuringTolerance, got.DuringTolerance)
	assert.Equal(t, want.Weights.During, got.FoodWeights.During)
	assert.Equal(t, want.Factors.Other, got.GenderFactors.Other)
	assert.Equal(t, want.SampleCount, got.SampleCount)
}
