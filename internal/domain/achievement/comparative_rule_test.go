package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func comparativeCtx(score interface{}, metrics map[string]interface{}) Context {
	data := map[string]interface{}{}
	if score != nil {
		data["score"] = score
	}
	if metrics != nil {
		data["comparativeMetrics"] = metrics
	}
	return Context{Event: EventData{EventType: EventQuizCompleted, Data: data}}
}

func TestComparativeRule_DailyPodium(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_podium", ComparativeDailyRankTop3, 0)

	result, err := rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"dailyRank": 2}), 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 75, result.Progress, 0.001)
}

func TestComparativeRule_RankProgressLadder(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_podium", ComparativeDailyRankTop3, 0)

	cases := []struct {
		rank     interface{}
		progress float64
		achieved bool
	}{
		{1, 100, true},
		{2, 75, true},
		{3, 50, true},
		{4, 25, false},
		{5, 0, false},
		{999, 0, false},
	}

	for _, tc := range cases {
		result, err := rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"dailyRank": tc.rank}), 0)
		assert.NoError(t, err)
		assert.InDelta(t, tc.progress, result.Progress, 0.001, "rank %v", tc.rank)
		assert.Equal(t, tc.achieved, result.Achieved, "rank %v", tc.rank)
	}
}

func TestComparativeRule_MissingRankDefaultsDeep(t *testing.T) {
	rule := NewComparativeRule("comparative_weekly_podium", ComparativeWeeklyRankTop3, 0)

	// No metrics attached at all: the missing rank default keeps the rule
	// far from firing.
	result, err := rule.Evaluate(comparativeCtx(nil, nil), 10)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.Zero(t, result.Progress)
}

func TestComparativeRule_AboveDailyAverageIsStrict(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_above_average", ComparativeAboveDailyAverage, 0)

	result, err := rule.Evaluate(comparativeCtx(80.0, map[string]interface{}{"dailyAverage": 75.0}), 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 100, result.Progress, 0.001)

	// A tie is not above.
	result, err = rule.Evaluate(comparativeCtx(75.0, map[string]interface{}{"dailyAverage": 75.0}), 0)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.Zero(t, result.Progress)
}

func TestComparativeRule_NoSessionScoreLeavesProgressUnchanged(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_above_average", ComparativeAboveDailyAverage, 0)

	ctx := Context{Event: EventData{EventType: EventQuizCompleted}}
	result, err := rule.Evaluate(ctx, 40)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 40, result.Progress, 0.001)
	assert.Empty(t, result.Metadata)
}

func TestComparativeRule_SessionScorePriority(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_above_average", ComparativeAboveDailyAverage, 0)

	// Explicit score wins over everything else.
	ctx := Context{
		Event: EventData{Data: map[string]interface{}{
			"score":    90.0,
			"accuracy": 10.0,
		}},
		Session: &SessionStatistics{Accuracy: 10},
	}
	score, ok := rule.sessionScore(ctx)
	assert.True(t, ok)
	assert.InDelta(t, 90, score, 0.001)

	// Then event accuracy.
	ctx = Context{
		Event:   EventData{Data: map[string]interface{}{"accuracy": 70.0}},
		Session: &SessionStatistics{Accuracy: 10},
	}
	score, ok = rule.sessionScore(ctx)
	assert.True(t, ok)
	assert.InDelta(t, 70, score, 0.001)

	// Then the live session.
	ctx = Context{Session: &SessionStatistics{Accuracy: 55}}
	score, ok = rule.sessionScore(ctx)
	assert.True(t, ok)
	assert.InDelta(t, 55, score, 0.001)

	// Finally the computed ratio from event answer counts.
	ctx = Context{Event: EventData{Data: map[string]interface{}{
		"correctAnswers": 3,
		"totalAnswers":   4,
	}}}
	score, ok = rule.sessionScore(ctx)
	assert.True(t, ok)
	assert.InDelta(t, 75, score, 0.001)
}

func TestComparativeRule_BestOfToday(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_best", ComparativeBestOfToday, 0)

	result, err := rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"isBestOfToday": true}), 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)

	result, err = rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"isBestOfToday": false}), 0)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
}

func TestComparativeRule_TopPercentile(t *testing.T) {
	rule := NewComparativeRule("comparative_top_percentile", ComparativeTopPercentile, 90)

	result, err := rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"userPercentile": 92.0}), 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 92, result.Progress, 0.001)

	result, err = rule.Evaluate(comparativeCtx(nil, map[string]interface{}{"userPercentile": 60.0}), 0)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 60, result.Progress, 0.001)
}

func TestComparativeRule_IgnoresOwnStatistics(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_above_average", ComparativeAboveDailyAverage, 0)

	// Averages live in the event metrics only; user statistics must not leak
	// into the comparison baseline. With no metrics the average is 0 and any
	// positive score wins.
	ctx := comparativeCtx(50.0, nil)
	ctx.Stats = UserStatistics{AverageScore: 99, AverageScoreToday: 99}
	result, err := rule.Evaluate(ctx, 0)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
}

func TestComparativeRule_EventApplicability(t *testing.T) {
	rule := NewComparativeRule("comparative_daily_podium", ComparativeDailyRankTop3, 0)
	assert.True(t, rule.AppliesToEvent(EventQuizCompleted))
	assert.True(t, rule.AppliesToEvent(EventQuizSessionCompleted))
	assert.False(t, rule.AppliesToEvent(EventAnswerSubmitted))
	assert.False(t, rule.AppliesToEvent(EventDailyActivity))
}
