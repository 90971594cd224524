package achievement

import (
	"context"
	"time"

	"github.com/cidumitru/quiz-achievements/pkg/timeutil"
)

// Progress is the persisted per-user state of a single achievement.
type Progress struct {
	UserID        string
	AchievementID string
	Progress      float64
	Achieved      bool
	AchievedAt    *time.Time
	Metadata      map[string]interface{}
	UpdatedAt     time.Time
}

// Earned reports whether the achievement has already been unlocked.
func (p Progress) Earned() bool {
	return p.Achieved
}

// ApplyResult folds an evaluation result into the stored record. Achieved is
// sticky for non-repeatable achievements. AchievedAt is set on the first
// unlock and refreshed when a repeatable achievement unlocks again in a
// later day or week window.
func (p Progress) ApplyResult(r Result, def Definition, now time.Time) Progress {
	next := p
	next.Progress = r.Progress
	next.Metadata = r.Metadata
	next.UpdatedAt = now

	if !r.Achieved {
		return next
	}

	if !p.Achieved || p.AchievedAt == nil {
		next.Achieved = true
		at := now
		next.AchievedAt = &at
		return next
	}

	if def.Meta.Repeatable && !sameUnlockWindow(def.Type, *p.AchievedAt, now) {
		at := now
		next.AchievedAt = &at
	}
	return next
}

// sameUnlockWindow reports whether two instants fall inside the same reset
// window for the achievement type. Instant and accumulative achievements
// never reset, so every unlock stays in one window.
func sameUnlockWindow(t Type, prev, now time.Time) bool {
	switch t {
	case TypeDaily:
		return timeutil.IsSameDay(prev, now)
	case TypeWeekly:
		return timeutil.IsSameWeek(prev, now)
	default:
		return true
	}
}

// ProgressRepository is the persistence port for achievement progress.
type ProgressRepository interface {
	// Get returns the stored record, or shared.ErrProgressNotFound.
	Get(ctx context.Context, userID, achievementID string) (Progress, error)

	// GetAllForUser returns every stored record for the user, in no
	// particular order.
	GetAllForUser(ctx context.Context, userID string) ([]Progress, error)

	// Upsert writes the record, replacing any previous state for the
	// (user, achievement) pair.
	Upsert(ctx context.Context, p Progress) error
}

// StatisticsProvider supplies the aggregate numbers an evaluation context
// needs. The engine never computes statistics from raw quiz data itself; it
// consumes whatever the provider returns.
type StatisticsProvider interface {
	UserStatistics(ctx context.Context, userID string) (UserStatistics, error)
	SessionStatistics(ctx context.Context, sessionID string) (*SessionStatistics, error)
	RecentEvents(ctx context.Context, userID string, limit int) ([]EventData, error)
}
