package achievement

// StreakRule evaluates streak and consistency achievements. The streak kind
// decides which counter it reads: correct_answers follows the in-play answer
// streak, study_days follows consecutive days with activity.
type StreakRule struct {
	id     string
	target int
	kind   StreakKind
}

// NewStreakRule creates a streak rule. An unset kind defaults to
// correct_answers.
func NewStreakRule(id string, target int, kind StreakKind) *StreakRule {
	if kind == "" {
		kind = StreakCorrectAnswers
	}
	return &StreakRule{id: id, target: target, kind: kind}
}

// AchievementID implements Rule.
func (r *StreakRule) AchievementID() string {
	return r.id
}

// currentStreak reads the counter matching the streak kind.
func (r *StreakRule) currentStreak(ctx Context) int {
	if r.kind == StreakStudyDays {
		return ctx.Stats.ConsecutiveStudyDays
	}
	return ctx.Stats.CurrentStreak
}

// CalculateProgress scales the current streak against the target and clamps
// at 100. Progress is a percentage, never the raw count: a streak beyond the
// target still reports 100.
func (r *StreakRule) CalculateProgress(ctx Context) float64 {
	if r.target <= 0 {
		return 0
	}
	return clampProgress(float64(r.currentStreak(ctx)) / float64(r.target) * 100)
}

// Evaluate implements Rule.
func (r *StreakRule) Evaluate(ctx Context, previousProgress float64) (Result, error) {
	progress := r.CalculateProgress(ctx)

	return NewResult(r.id, progress >= 100, progress, previousProgress, map[string]interface{}{
		"current_streak": r.currentStreak(ctx),
		"target":         r.target,
		"streak_kind":    string(r.kind),
	})
}

// AppliesToEvent implements Rule. Answer streaks move on answers and quiz
// completions; study-day streaks move on quiz completions and daily activity.
func (r *StreakRule) AppliesToEvent(eventType string) bool {
	if r.kind == StreakStudyDays {
		return eventType == EventQuizCompleted || eventType == EventDailyActivity
	}
	return eventType == EventAnswerSubmitted || eventType == EventQuizCompleted
}
