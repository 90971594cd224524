package achievement

// MilestoneRule evaluates cumulative-count achievements against an aggregate
// counter: total quizzes, total answered questions, or total correct answers.
type MilestoneRule struct {
	id       string
	target   int
	quantity MilestoneQuantity
}

// NewMilestoneRule creates a milestone rule.
func NewMilestoneRule(id string, target int, quantity MilestoneQuantity) *MilestoneRule {
	return &MilestoneRule{id: id, target: target, quantity: quantity}
}

// AchievementID implements Rule.
func (r *MilestoneRule) AchievementID() string {
	return r.id
}

// currentCount reads the counter matching the quantity. An unrecognized
// quantity yields 0 so that progress degrades instead of failing.
func (r *MilestoneRule) currentCount(ctx Context) int {
	switch r.quantity {
	case MilestoneQuizzes:
		return ctx.Stats.TotalQuizzes
	case MilestoneQuestions:
		return ctx.Stats.TotalAnswers
	case MilestoneCorrectAnswers:
		return ctx.Stats.CorrectAnswers
	default:
		return 0
	}
}

// CalculateProgress implements Rule.
func (r *MilestoneRule) CalculateProgress(ctx Context) float64 {
	if r.target <= 0 {
		return 0
	}
	return clampProgress(float64(r.currentCount(ctx)) / float64(r.target) * 100)
}

// Evaluate implements Rule.
func (r *MilestoneRule) Evaluate(ctx Context, previousProgress float64) (Result, error) {
	progress := r.CalculateProgress(ctx)

	return NewResult(r.id, progress >= 100, progress, previousProgress, map[string]interface{}{
		"current_count": r.currentCount(ctx),
		"target":        r.target,
		"quantity":      string(r.quantity),
	})
}

// AppliesToEvent implements Rule.
func (r *MilestoneRule) AppliesToEvent(eventType string) bool {
	return eventType == EventQuizCompleted || eventType == EventAnswerSubmitted
}
