package achievement

// missingRank is the safe default when a rank field is absent from the
// comparative metrics: far enough down that no rank-based kind can fire.
const missingRank = 999

// ComparativeRule evaluates achievements that depend on the user's standing
// relative to other users. Unlike the other rule families it never reads
// user or session statistics for its comparison baseline: the event producer
// must have pre-computed the averages, ranks and percentiles and attached
// them as a comparativeMetrics sub-object in the event data. The rule does
// no aggregation of its own; missing fields degrade to safe defaults.
type ComparativeRule struct {
	id     string
	kind   ComparativeKind
	target float64
}

// NewComparativeRule creates a comparative rule. The target is only used by
// percentile-style kinds.
func NewComparativeRule(id string, kind ComparativeKind, target float64) *ComparativeRule {
	return &ComparativeRule{id: id, kind: kind, target: target}
}

// AchievementID implements Rule.
func (r *ComparativeRule) AchievementID() string {
	return r.id
}

// comparativeMetrics reads the pre-computed metrics sub-object from the
// event data. A nil return means the producer attached nothing.
func comparativeMetrics(ctx Context) map[string]interface{} {
	if ctx.Event.Data == nil {
		return nil
	}
	if m, ok := ctx.Event.Data["comparativeMetrics"].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func metricNumber(m map[string]interface{}, key string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	if n, ok := toNumber(m[key]); ok {
		return n
	}
	return fallback
}

func metricBool(m map[string]interface{}, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

// sessionScore extracts the user's session score, trying in priority order:
// explicit event score, event accuracy, live session accuracy, then a
// computed ratio from event answer counts. Returns false when none apply.
func (r *ComparativeRule) sessionScore(ctx Context) (float64, bool) {
	if score, ok := ctx.Event.Number("score"); ok {
		return score, true
	}
	if accuracy, ok := ctx.Event.Number("accuracy"); ok {
		return accuracy, true
	}
	if ctx.Session != nil {
		return ctx.Session.Accuracy, true
	}
	correct, okCorrect := ctx.Event.Number("correctAnswers")
	total, okTotal := ctx.Event.Number("totalAnswers")
	if okCorrect && okTotal && total > 0 {
		return correct / total * 100, true
	}
	return 0, false
}

// rankProgress maps a leaderboard rank to progress: rank 1 is 100%, each
// further place loses 25 points, floored at zero. Rank 0 (absent) yields 0.
func rankProgress(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	progress := 100 - float64(rank-1)*25
	if progress < 0 {
		return 0
	}
	return progress
}

// CalculateProgress implements Rule.
func (r *ComparativeRule) CalculateProgress(ctx Context) float64 {
	progress, _ := r.outcome(ctx)
	return progress
}

// outcome computes both progress and achievement for the configured kind.
func (r *ComparativeRule) outcome(ctx Context) (progress float64, achieved bool) {
	metrics := comparativeMetrics(ctx)

	switch r.kind {
	case ComparativeAboveGlobalAverage, ComparativeAboveDailyAverage, ComparativeAboveWeeklyAverage:
		score, ok := r.sessionScore(ctx)
		if !ok {
			return 0, false
		}
		average := metricNumber(metrics, r.averageKey(), 0)
		// Strictly greater: ties do not count.
		if score > average {
			return 100, true
		}
		return 0, false

	case ComparativeBestOfToday:
		if metricBool(metrics, "isBestOfToday") {
			return 100, true
		}
		return 0, false

	case ComparativeBestOfWeek:
		if metricBool(metrics, "isBestOfWeek") {
			return 100, true
		}
		return 0, false

	case ComparativeTopPercentile:
		percentile := metricNumber(metrics, "userPercentile", 0)
		return clampProgress(percentile), percentile >= r.target

	case ComparativeDailyRankTop3:
		rank := int(metricNumber(metrics, "dailyRank", missingRank))
		return rankProgress(rank), rank > 0 && rank <= 3

	case ComparativeWeeklyRankTop3:
		rank := int(metricNumber(metrics, "weeklyRank", missingRank))
		return rankProgress(rank), rank > 0 && rank <= 3

	default:
		return 0, false
	}
}

func (r *ComparativeRule) averageKey() string {
	switch r.kind {
	case ComparativeAboveDailyAverage:
		return "dailyAverage"
	case ComparativeAboveWeeklyAverage:
		return "weeklyAverage"
	default:
		return "globalAverage"
	}
}

// Evaluate implements Rule. When no session score can be extracted for an
// average-comparison kind, the result is unachieved with unchanged progress
// and empty metadata rather than an error.
func (r *ComparativeRule) Evaluate(ctx Context, previousProgress float64) (Result, error) {
	if r.requiresSessionScore() {
		if _, ok := r.sessionScore(ctx); !ok {
			return NewResult(r.id, false, previousProgress, previousProgress, map[string]interface{}{})
		}
	}

	progress, achieved := r.outcome(ctx)
	metrics := comparativeMetrics(ctx)

	metadata := map[string]interface{}{
		"comparative_kind": string(r.kind),
	}
	if score, ok := r.sessionScore(ctx); ok {
		metadata["session_score"] = score
	}
	if metrics != nil {
		metadata["metrics"] = metrics
	}

	return NewResult(r.id, achieved, progress, previousProgress, metadata)
}

func (r *ComparativeRule) requiresSessionScore() bool {
	switch r.kind {
	case ComparativeAboveGlobalAverage, ComparativeAboveDailyAverage, ComparativeAboveWeeklyAverage:
		return true
	default:
		return false
	}
}

// AppliesToEvent implements Rule.
func (r *ComparativeRule) AppliesToEvent(eventType string) bool {
	return eventType == EventQuizCompleted || eventType == EventQuizSessionCompleted
}
