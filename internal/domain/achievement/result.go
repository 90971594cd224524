package achievement

import (
	"fmt"

	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

// significantProgressDelta is the minimum progress change worth surfacing to
// the notification layer.
const significantProgressDelta = 5.0

// Result is the immutable outcome of one rule invocation.
type Result struct {
	// AchievementID identifies the evaluated achievement.
	AchievementID string

	// Achieved reports whether this evaluation crossed the 100% threshold.
	Achieved bool

	// Progress is the new completion percentage, 0-100 inclusive.
	Progress float64

	// PreviousProgress is the completion percentage before this evaluation.
	PreviousProgress float64

	// Metadata carries free-form rule-specific diagnostics.
	Metadata map[string]interface{}
}

// NewResult constructs a Result, rejecting progress values outside [0, 100].
// Every rule clamps before constructing, so a failure here signals a rule
// bug rather than bad runtime input.
func NewResult(achievementID string, achieved bool, progress, previousProgress float64, metadata map[string]interface{}) (Result, error) {
	if progress < 0 || progress > 100 {
		return Result{}, fmt.Errorf("%w: progress %g for %s", shared.ErrInvalidProgress, progress, achievementID)
	}
	if previousProgress < 0 || previousProgress > 100 {
		return Result{}, fmt.Errorf("%w: previous progress %g for %s", shared.ErrInvalidProgress, previousProgress, achievementID)
	}

	return Result{
		AchievementID:    achievementID,
		Achieved:         achieved,
		Progress:         progress,
		PreviousProgress: previousProgress,
		Metadata:         metadata,
	}, nil
}

// HasProgressChanged reports whether this evaluation moved the progress.
func (r Result) HasProgressChanged() bool {
	return r.Progress != r.PreviousProgress
}

// HasSignificantProgress reports whether progress moved by at least 5 points.
func (r Result) HasSignificantProgress() bool {
	delta := r.Progress - r.PreviousProgress
	if delta < 0 {
		delta = -delta
	}
	return delta >= significantProgressDelta
}

// IsProgressComplete reports whether progress reached 100.
func (r Result) IsProgressComplete() bool {
	return r.Progress >= 100
}

// IsNewlyAchieved composes the evaluation outcome with the externally tracked
// earned flag. This is what prevents a non-repeatable achievement from firing
// twice: achieved AND not previously earned.
func (r Result) IsNewlyAchieved(wasEarnedBefore bool) bool {
	return r.Achieved && !wasEarnedBefore
}
