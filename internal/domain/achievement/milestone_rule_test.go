package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneRule_QuestionsTarget(t *testing.T) {
	rule := NewMilestoneRule("milestone_questions_100", 100, MilestoneQuestions)

	ctx := Context{Stats: UserStatistics{TotalAnswers: 40}}
	result, err := rule.Evaluate(ctx, 35)
	assert.NoError(t, err)
	assert.False(t, result.Achieved)
	assert.InDelta(t, 40, result.Progress, 0.001)

	ctx = Context{Stats: UserStatistics{TotalAnswers: 100}}
	result, err = rule.Evaluate(ctx, 99)
	assert.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.InDelta(t, 100, result.Progress, 0.001)
	assert.Equal(t, 100, result.Metadata["current_count"])
}

func TestMilestoneRule_QuantitySelectsCounter(t *testing.T) {
	stats := UserStatistics{TotalQuizzes: 5, TotalAnswers: 60, CorrectAnswers: 45}
	ctx := Context{Stats: stats}

	quizzes := NewMilestoneRule("milestone_quizzes_10", 10, MilestoneQuizzes)
	assert.InDelta(t, 50, quizzes.CalculateProgress(ctx), 0.001)

	questions := NewMilestoneRule("milestone_questions_100", 100, MilestoneQuestions)
	assert.InDelta(t, 60, questions.CalculateProgress(ctx), 0.001)

	correct := NewMilestoneRule("milestone_correct_250", 250, MilestoneCorrectAnswers)
	assert.InDelta(t, 18, correct.CalculateProgress(ctx), 0.001)
}

func TestMilestoneRule_ClampsBeyondTarget(t *testing.T) {
	rule := NewMilestoneRule("milestone_quizzes_10", 10, MilestoneQuizzes)
	ctx := Context{Stats: UserStatistics{TotalQuizzes: 200}}
	assert.InDelta(t, 100, rule.CalculateProgress(ctx), 0.001)
}

func TestMilestoneRule_UnknownQuantityDegradesToZero(t *testing.T) {
	rule := NewMilestoneRule("milestone_mystery_5", 5, MilestoneQuantity("mystery"))
	ctx := Context{Stats: UserStatistics{TotalQuizzes: 99, TotalAnswers: 99, CorrectAnswers: 99}}
	assert.Zero(t, rule.CalculateProgress(ctx))
}

func TestMilestoneRule_EventApplicability(t *testing.T) {
	rule := NewMilestoneRule("milestone_quizzes_10", 10, MilestoneQuizzes)
	assert.True(t, rule.AppliesToEvent(EventQuizCompleted))
	assert.True(t, rule.AppliesToEvent(EventAnswerSubmitted))
	assert.False(t, rule.AppliesToEvent(EventQuizSessionCompleted))
}
