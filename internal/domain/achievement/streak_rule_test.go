package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreakRule_CorrectAnswers(t *testing.T) {
	rule := NewStreakRule("streak_correct_10", 10, StreakCorrectAnswers)

	ctx := Context{Stats: UserStatistics{CurrentStreak: 5}}
	assert.InDelta(t, 50, rule.CalculateProgress(ctx), 0.001)

	result, err := rule.Evaluate(ctx, 40)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 50, result.Progress, 0.001)
	assert.Equal(t, 5, result.Metadata["current_streak"])
	assert.Equal(t, "correct_answers", result.Metadata["streak_kind"])
}

func TestStreakRule_AchievesAtTarget(t *testing.T) {
	rule := NewStreakRule("streak_correct_10", 10, StreakCorrectAnswers)

	result, err := rule.Evaluate(Context{Stats: UserStatistics{CurrentStreak: 10}}, 90)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 100, result.Progress, 0.001)
}

func TestStreakRule_ClampsBeyondTarget(t *testing.T) {
	rule := NewStreakRule("streak_correct_10", 10, StreakCorrectAnswers)

	ctx := Context{Stats: UserStatistics{CurrentStreak: 37}}
	assert.InDelta(t, 100, rule.CalculateProgress(ctx), 0.001)
}

func TestStreakRule_StudyDaysReadsConsecutiveDays(t *testing.T) {
	rule := NewStreakRule("consistency_days_7", 7, StreakStudyDays)

	// The answer streak must be ignored for study-day tracking.
	ctx := Context{Stats: UserStatistics{CurrentStreak: 50, ConsecutiveStudyDays: 7}}
	result, err := rule.Evaluate(ctx, 85)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.Equal(t, 7, result.Metadata["current_streak"])
}

func TestStreakRule_DefaultsKindToCorrectAnswers(t *testing.T) {
	rule := NewStreakRule("streak_correct_5", 5, "")

	ctx := Context{Stats: UserStatistics{CurrentStreak: 5, ConsecutiveStudyDays: 0}}
	assert.InDelta(t, 100, rule.CalculateProgress(ctx), 0.001)
}

func TestStreakRule_NonPositiveTargetYieldsZero(t *testing.T) {
	rule := NewStreakRule("streak_correct_5", 0, StreakCorrectAnswers)
	assert.Zero(t, rule.CalculateProgress(Context{Stats: UserStatistics{CurrentStreak: 12}}))
}

func TestStreakRule_EventApplicability(t *testing.T) {
	answers := NewStreakRule("streak_correct_5", 5, StreakCorrectAnswers)
	assert.True(t, answers.AppliesToEvent(EventAnswerSubmitted))
	assert.True(t, answers.AppliesToEvent(EventQuizCompleted))
	assert.False(t, answers.AppliesToEvent(EventDailyActivity))
	assert.False(t, answers.AppliesToEvent(EventQuizSessionCompleted))

	days := NewStreakRule("consistency_days_7", 7, StreakStudyDays)
	assert.True(t, days.AppliesToEvent(EventQuizCompleted))
	assert.True(t, days.AppliesToEvent(EventDailyActivity))
	assert.False(t, days.AppliesToEvent(EventAnswerSubmitted))
}
