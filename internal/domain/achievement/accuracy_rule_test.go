package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dailyStatsCtx(avgToday float64, questionsToday int) Context {
	return Context{
		Stats: UserStatistics{
			AverageScoreToday: avgToday,
			Daily:             map[string]float64{"questions_answered": float64(questionsToday)},
		},
	}
}

func TestAccuracyRule_BelowGateRampsToHalf(t *testing.T) {
	rule := NewAccuracyRule("accuracy_daily_sharpshooter", 90, TimeframeDaily, 5)

	// Perfect accuracy on 3 of 5 required questions: the gate caps progress
	// at (3/5)*50 = 30 no matter how good the accuracy is.
	result, err := rule.Evaluate(dailyStatsCtx(100, 3), 0)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 30, result.Progress, 0.001)
}

func TestAccuracyRule_AboveGateAccuracyDrives(t *testing.T) {
	rule := NewAccuracyRule("accuracy_daily_sharpshooter", 90, TimeframeDaily, 5)

	// 10 questions at 95% against a 90% target: past the gate, over target,
	// clamped to 100 and achieved.
	result, err := rule.Evaluate(dailyStatsCtx(95, 10), 30)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 100, result.Progress, 0.001)
	assert.Equal(t, 10, result.Metadata["question_count"])
}

func TestAccuracyRule_AboveGateBelowTarget(t *testing.T) {
	rule := NewAccuracyRule("accuracy_daily_sharpshooter", 90, TimeframeDaily, 5)

	result, err := rule.Evaluate(dailyStatsCtx(45, 8), 0)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 50, result.Progress, 0.001)
}

func TestAccuracyRule_SessionTimeframeWithoutSession(t *testing.T) {
	rule := NewAccuracyRule("accuracy_session_perfect", 100, TimeframeSession, 5)

	// No active session: zero questions, so progress sits at the bottom of
	// the ramp rather than erroring.
	result, err := rule.Evaluate(Context{Stats: UserStatistics{AverageScore: 99}}, 20)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.Zero(t, result.Progress)
}

func TestAccuracyRule_SessionTimeframeReadsSession(t *testing.T) {
	rule := NewAccuracyRule("accuracy_session_perfect", 100, TimeframeSession, 5)

	session := &SessionStatistics{QuestionsAnswered: 6, CorrectAnswers: 6, Accuracy: 100}
	result, err := rule.Evaluate(Context{Session: session}, 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 100, result.Progress, 0.001)
}

func TestAccuracyRule_Defaults(t *testing.T) {
	rule := NewAccuracyRule("accuracy_overall_85", 85, "", 0)
	assert.Equal(t, TimeframeAllTime, rule.timeframe)
	assert.Equal(t, defaultMinimumQuestions, rule.minimumQuestions)
}

func TestAccuracyRule_WeeklyFallsBackToAllTime(t *testing.T) {
	rule := NewAccuracyRule("accuracy_weekly_90", 90, TimeframeWeekly, 5)

	ctx := Context{Stats: UserStatistics{AverageScore: 90, TotalAnswers: 40}}
	assert.InDelta(t, 100, rule.CalculateProgress(ctx), 0.001)
}

func TestAccuracyRule_EventApplicability(t *testing.T) {
	rule := NewAccuracyRule("accuracy_daily_sharpshooter", 90, TimeframeDaily, 5)
	assert.True(t, rule.AppliesToEvent(EventQuizCompleted))
	assert.True(t, rule.AppliesToEvent(EventAnswerSubmitted))
	assert.False(t, rule.AppliesToEvent(EventDailyActivity))
}
