package achievement

// Rule is the polymorphic evaluation unit: one implementation per category.
// Rules are stateless - the same inputs always produce the same Result - so
// a single instance is safe to share across concurrent evaluations.
type Rule interface {
	// AchievementID returns the id of the achievement this rule evaluates.
	AchievementID() string

	// Evaluate computes the new progress for the given context and the
	// previously stored progress. It never fails on malformed runtime data;
	// missing fields degrade to a not-achieved, low-progress result. The
	// only error path is the Result range guard, which is unreachable as
	// long as the rule clamps correctly.
	Evaluate(ctx Context, previousProgress float64) (Result, error)

	// CalculateProgress computes the raw 0-100 progress for the context.
	CalculateProgress(ctx Context) float64

	// AppliesToEvent reports whether the rule reacts to the event type.
	AppliesToEvent(eventType string) bool
}

// clampProgress bounds a raw progress value to [0, 100].
func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
