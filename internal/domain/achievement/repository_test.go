package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantDef(t *testing.T) Definition {
	t.Helper()
	def, err := NewDefinition("streak_correct_5", TypeInstant, CategoryStreak,
		RuleConfig{Target: 5}, Metadata{Title: "Warming Up"})
	require.NoError(t, err)
	return def
}

func dailyRepeatableDef(t *testing.T) Definition {
	t.Helper()
	def, err := NewDefinition("milestone_daily_questions_20", TypeDaily, CategoryMilestone,
		RuleConfig{Target: 20}, Metadata{Title: "Daily Twenty", Repeatable: true})
	require.NoError(t, err)
	return def
}

func TestApplyResultFirstUnlock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := Progress{UserID: "u", AchievementID: "streak_correct_5"}

	next := p.ApplyResult(Result{Achieved: true, Progress: 100}, instantDef(t), now)

	assert.True(t, next.Achieved)
	require.NotNil(t, next.AchievedAt)
	assert.True(t, next.AchievedAt.Equal(now))
	assert.True(t, next.UpdatedAt.Equal(now))
}

func TestApplyResultNotAchievedKeepsUnlockState(t *testing.T) {
	unlocked := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := unlocked.Add(48 * time.Hour)
	p := Progress{Achieved: true, AchievedAt: &unlocked, Progress: 100}

	next := p.ApplyResult(Result{Achieved: false, Progress: 40}, instantDef(t), now)

	assert.True(t, next.Achieved)
	require.NotNil(t, next.AchievedAt)
	assert.True(t, next.AchievedAt.Equal(unlocked))
	assert.Equal(t, 40.0, next.Progress)
}

func TestApplyResultNonRepeatableKeepsFirstUnlockTime(t *testing.T) {
	unlocked := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := unlocked.AddDate(0, 0, 7)
	p := Progress{Achieved: true, AchievedAt: &unlocked, Progress: 100}

	next := p.ApplyResult(Result{Achieved: true, Progress: 100}, instantDef(t), now)

	require.NotNil(t, next.AchievedAt)
	assert.True(t, next.AchievedAt.Equal(unlocked))
}

func TestApplyResultRepeatableRefreshesInNewWindow(t *testing.T) {
	unlocked := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	p := Progress{Achieved: true, AchievedAt: &unlocked, Progress: 100}
	def := dailyRepeatableDef(t)

	// Same UTC day: no refresh.
	sameDay := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	next := p.ApplyResult(Result{Achieved: true, Progress: 100}, def, sameDay)
	require.NotNil(t, next.AchievedAt)
	assert.True(t, next.AchievedAt.Equal(unlocked))

	// Next UTC day: the re-unlock gets a fresh timestamp.
	nextDay := time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)
	next = p.ApplyResult(Result{Achieved: true, Progress: 100}, def, nextDay)
	require.NotNil(t, next.AchievedAt)
	assert.True(t, next.AchievedAt.Equal(nextDay))
}
