package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlagsDefaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureNotifyUnlocked, ""))
	assert.False(t, ff.IsEnabled(FeatureNotifyProgress, ""))
	assert.True(t, ff.IsEnabled(FeatureEngineComparative, ""))
	assert.True(t, ff.IsEnabled(FeatureHTTPProgressAPI, ""))
	assert.False(t, ff.IsEnabled("no.such.feature", ""))
}

func TestFeatureFlagsEnvOverride(t *testing.T) {
	t.Setenv("FEATURE_NOTIFY_UNLOCKED", "false")
	t.Setenv("FEATURE_NOTIFY_PROGRESS", "true")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureNotifyUnlocked, ""))
	assert.True(t, ff.IsEnabled(FeatureNotifyProgress, ""))
}

func TestFeatureFlagsEnvRolloutPercent(t *testing.T) {
	t.Setenv("FEATURE_NOTIFY_PROGRESS", "50")

	ff := LoadFeatureFlags()

	features := ff.GetAllFeatures()
	f, ok := features[FeatureNotifyProgress]
	require.True(t, ok)
	assert.True(t, f.Enabled)
	assert.Equal(t, 50, f.RolloutPercent)

	// Without a user the rollout cannot bucket anyone, so the global
	// toggle wins.
	assert.True(t, ff.IsEnabled(FeatureNotifyProgress, ""))
}

func TestFeatureFlagsEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("FEATURE_NOTIFY_UNLOCKED", "maybe")
	t.Setenv("FEATURE_NOTIFY_PROGRESS", "150")

	ff := LoadFeatureFlags()

	// Unparseable values leave the defaults intact.
	assert.True(t, ff.IsEnabled(FeatureNotifyUnlocked, ""))
	assert.False(t, ff.IsEnabled(FeatureNotifyProgress, ""))
}

func TestFeatureFlagsUserOverride(t *testing.T) {
	ff := LoadFeatureFlags()

	ff.SetUserOverride("user-1", FeatureNotifyProgress, true)
	assert.True(t, ff.IsEnabled(FeatureNotifyProgress, "user-1"))
	assert.False(t, ff.IsEnabled(FeatureNotifyProgress, "user-2"))

	ff.SetUserOverride("user-1", FeatureNotifyUnlocked, false)
	assert.False(t, ff.IsEnabled(FeatureNotifyUnlocked, "user-1"))

	ff.ClearUserOverrides("user-1")
	assert.False(t, ff.IsEnabled(FeatureNotifyProgress, "user-1"))
	assert.True(t, ff.IsEnabled(FeatureNotifyUnlocked, "user-1"))
}

func TestFeatureFlagsRolloutIsStablePerUser(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureNotifyProgress, 50))

	first := ff.IsEnabled(FeatureNotifyProgress, "user-stable")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureNotifyProgress, "user-stable"))
	}
}

func TestFeatureFlagsRolloutBounds(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.Error(t, ff.SetRolloutPercent(FeatureNotifyProgress, -1))
	assert.Error(t, ff.SetRolloutPercent(FeatureNotifyProgress, 101))
	assert.Error(t, ff.SetRolloutPercent("no.such.feature", 10))

	require.NoError(t, ff.SetRolloutPercent(FeatureNotifyProgress, 0))
	assert.False(t, ff.IsEnabled(FeatureNotifyProgress, "anyone"))

	require.NoError(t, ff.SetRolloutPercent(FeatureNotifyProgress, 100))
	assert.True(t, ff.IsEnabled(FeatureNotifyProgress, "anyone"))
}

func TestConfigLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, 5, cfg.Engine.MaxUnlocksPerRun)
	assert.Equal(t, 20, cfg.Engine.RecentEventLimit)
	assert.NotNil(t, cfg.Features)
}

func TestConfigValidateProductionRequiresDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/achievements")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestConfigValidateRejectsBadEngineValues(t *testing.T) {
	t.Setenv("ENGINE_MAX_UNLOCKS_PER_RUN", "0")

	_, err := Load()
	assert.Error(t, err)
}
