package achievement

// defaultMinimumQuestions is the accuracy gate when the catalog leaves it unset.
const defaultMinimumQuestions = 5

// AccuracyRule evaluates accuracy achievements over a statistics timeframe.
//
// Progress has a two-phase shape: below the minimum-question gate it ramps to
// at most 50% as questions accumulate, and only once the gate is cleared does
// accuracy itself drive progress. This keeps a single lucky early answer from
// reporting near-complete progress.
type AccuracyRule struct {
	id               string
	target           float64
	timeframe        Timeframe
	minimumQuestions int
}

// NewAccuracyRule creates an accuracy rule. An unset timeframe defaults to
// all_time; a non-positive minimum question count defaults to 5.
func NewAccuracyRule(id string, target float64, timeframe Timeframe, minimumQuestions int) *AccuracyRule {
	if timeframe == "" {
		timeframe = TimeframeAllTime
	}
	if minimumQuestions <= 0 {
		minimumQuestions = defaultMinimumQuestions
	}
	return &AccuracyRule{
		id:               id,
		target:           target,
		timeframe:        timeframe,
		minimumQuestions: minimumQuestions,
	}
}

// AchievementID implements Rule.
func (r *AccuracyRule) AchievementID() string {
	return r.id
}

// accuracy reads the accuracy percentage for the configured timeframe.
// Weekly tracking does not exist upstream; it falls back to all-time stats.
func (r *AccuracyRule) accuracy(ctx Context) float64 {
	switch r.timeframe {
	case TimeframeSession:
		if ctx.Session == nil {
			return 0
		}
		return ctx.Session.Accuracy
	case TimeframeDaily:
		return ctx.Stats.AverageScoreToday
	case TimeframeWeekly:
		// TODO: use real weekly aggregation once the statistics collaborator
		// tracks it; until then all-time is the agreed fallback.
		return ctx.Stats.AverageScore
	default:
		return ctx.Stats.AverageScore
	}
}

// questionCount mirrors the timeframe switch for the question counter.
func (r *AccuracyRule) questionCount(ctx Context) int {
	switch r.timeframe {
	case TimeframeSession:
		if ctx.Session == nil {
			return 0
		}
		return ctx.Session.QuestionsAnswered
	case TimeframeDaily:
		return ctx.Stats.QuestionsAnsweredToday()
	case TimeframeWeekly:
		return ctx.Stats.TotalAnswers
	default:
		return ctx.Stats.TotalAnswers
	}
}

// CalculateProgress implements the gate-then-ramp shape: (count/minimum)*50
// below the gate, min((accuracy/target)*100, 100) above it.
func (r *AccuracyRule) CalculateProgress(ctx Context) float64 {
	count := r.questionCount(ctx)
	if count < r.minimumQuestions {
		return clampProgress(float64(count) / float64(r.minimumQuestions) * 50)
	}

	if r.target <= 0 {
		return 0
	}
	return clampProgress(r.accuracy(ctx) / r.target * 100)
}

// Evaluate implements Rule.
func (r *AccuracyRule) Evaluate(ctx Context, previousProgress float64) (Result, error) {
	progress := r.CalculateProgress(ctx)

	return NewResult(r.id, progress >= 100, progress, previousProgress, map[string]interface{}{
		"accuracy":          r.accuracy(ctx),
		"question_count":    r.questionCount(ctx),
		"minimum_questions": r.minimumQuestions,
		"target":            r.target,
		"timeframe":         string(r.timeframe),
	})
}

// AppliesToEvent implements Rule.
func (r *AccuracyRule) AppliesToEvent(eventType string) bool {
	return eventType == EventQuizCompleted || eventType == EventAnswerSubmitted
}
