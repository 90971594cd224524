package config

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with optional gradual rollout.
// Users are assigned to a rollout bucket by a stable hash of their ID, so a
// user stays in or out of a feature as the percentage grows.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging).
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100).
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// Notification features
	FeatureNotifyUnlocked = "notify.unlocked" // celebrate new unlocks
	FeatureNotifyProgress = "notify.progress" // announce significant progress

	// Engine features
	FeatureEngineComparative = "engine.comparative" // comparative rule family
	FeatureEngineRepeatable  = "engine.repeatable"  // repeatable re-unlocks

	// Interface features
	FeatureHTTPProgressAPI = "http.progress_api" // per-user progress endpoint
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureNotifyUnlocked] = &Feature{
		Name:           FeatureNotifyUnlocked,
		Description:    "Send a notification when an achievement unlocks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyProgress] = &Feature{
		Name:           FeatureNotifyProgress,
		Description:    "Send a notification on significant progress changes",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureEngineComparative] = &Feature{
		Name:           FeatureEngineComparative,
		Description:    "Evaluate comparative achievements (ranks, averages)",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureEngineRepeatable] = &Feature{
		Name:           FeatureEngineRepeatable,
		Description:    "Allow repeatable achievements to unlock again",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureHTTPProgressAPI] = &Feature{
		Name:           FeatureHTTPProgressAPI,
		Description:    "Expose the per-user progress endpoint",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment applies FEATURE_* overrides.
// FEATURE_NOTIFY_UNLOCKED=false disables, FEATURE_NOTIFY_PROGRESS=25 sets a
// rollout percentage.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if pct, err := strconv.Atoi(val); err == nil && pct >= 0 && pct <= 100 {
			feature.Enabled = pct > 0
			feature.RolloutPercent = pct
		}
	}
}

func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is enabled for the given user.
// An empty userID checks only the global toggle.
func (ff *FeatureFlags) IsEnabled(featureName, userID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if userID != "" {
		if overrides, ok := ff.userOverrides[userID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}

	if feature.RolloutPercent >= 100 || userID == "" {
		return true
	}

	return isInRollout(userID, featureName, feature.RolloutPercent)
}

// isInRollout hashes (userID, featureName) into a stable 0-99 bucket.
func isInRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID + ":" + featureName))
	return int(h.Sum32()%100) < percent
}

// SetUserOverride forces a feature on or off for one user.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.userOverrides[userID] == nil {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	delete(ff.userOverrides, userID)
}

// SetRolloutPercent adjusts the rollout percentage for a feature.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("feature %s: rollout percent must be 0-100", featureName)
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return fmt.Errorf("feature %s: not registered", featureName)
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0
	return nil
}

// GetAllFeatures returns a copy of all registered features.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]Feature, len(ff.features))
	for name, f := range ff.features {
		out[name] = *f
	}
	return out
}
