package achievement

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

// UserStatistics is a long-lived aggregate snapshot for one user, produced by
// the statistics-aggregation collaborator after each quiz submission. The
// engine only reads it.
type UserStatistics struct {
	// TotalQuizzes - quizzes completed, all time.
	TotalQuizzes int

	// TotalAnswers - questions answered, all time.
	TotalAnswers int

	// CorrectAnswers - correct answers, all time.
	CorrectAnswers int

	// AverageScore - average quiz score percentage, all time.
	AverageScore float64

	// AverageScoreToday - average quiz score percentage for the current day.
	AverageScoreToday float64

	// CurrentStreak - consecutive correct answers right now.
	CurrentStreak int

	// LongestStreak - best correct-answer streak ever.
	LongestStreak int

	// ConsecutiveStudyDays - consecutive days with at least one activity.
	ConsecutiveStudyDays int

	// LastActivityAt - when the user was last active.
	LastActivityAt time.Time

	// Daily holds arbitrary per-day counters keyed by stat name
	// (e.g. "questions_answered"). Accessors below read well-known keys.
	Daily map[string]float64
}

// DailyStat returns the named daily counter, or 0 when absent.
func (s UserStatistics) DailyStat(name string) float64 {
	if s.Daily == nil {
		return 0
	}
	return s.Daily[name]
}

// QuestionsAnsweredToday reads the daily questions-answered counter.
func (s UserStatistics) QuestionsAnsweredToday() int {
	return int(s.DailyStat("questions_answered"))
}

// OverallAccuracy computes the all-time answer accuracy percentage.
func (s UserStatistics) OverallAccuracy() float64 {
	if s.TotalAnswers == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalAnswers) * 100
}

// SessionStatistics is a short-lived per-quiz-session snapshot, present only
// while a session is active.
type SessionStatistics struct {
	// QuestionsAnswered - questions answered in this session.
	QuestionsAnswered int

	// CorrectAnswers - correct answers in this session.
	CorrectAnswers int

	// Accuracy - session accuracy percentage.
	Accuracy float64

	// CompletionTime - time spent on the session so far.
	CompletionTime time.Duration

	// CurrentStreak - in-session correct-answer streak.
	CurrentStreak int
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT DATA
// ══════════════════════════════════════════════════════════════════════════════

// Recognized activity event types. Producers may emit any string; these are
// the only values any rule's applicability set matches.
const (
	EventQuizCompleted        = "quiz_completed"
	EventAnswerSubmitted      = "answer_submitted"
	EventDailyActivity        = "daily_activity"
	EventQuizSessionCompleted = "quiz_session_completed"
)

// EventData describes the user activity event that triggered an evaluation.
// EventType is a free string matched against each rule's applicability set;
// quiz_completed, answer_submitted, daily_activity and quiz_session_completed
// are the only values any rule recognizes.
type EventData struct {
	ID         string
	UserID     string
	EventType  string
	Data       map[string]interface{}
	OccurredAt time.Time
	SessionID  string
}

// Number reads a numeric field from the free-form event data, accepting the
// numeric types a JSON decoder or an in-process producer may have used.
func (e EventData) Number(key string) (float64, bool) {
	if e.Data == nil {
		return 0, false
	}
	return toNumber(e.Data[key])
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATION CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

// Context is the immutable input bundle for one evaluation call: the
// triggering event, the user's aggregate statistics, optional in-progress
// session statistics, bounded recent event history, and the evaluation
// timestamp. All derived values are computed accessors over the stored
// fields; nothing is cached or mutated after construction.
type Context struct {
	UserID      string
	Event       EventData
	Stats       UserStatistics
	Session     *SessionStatistics
	Recent      []EventData
	EvaluatedAt time.Time
}

// NewContext builds an evaluation context. The evaluation timestamp defaults
// to now when zero.
func NewContext(event EventData, stats UserStatistics, session *SessionStatistics, recent []EventData, at time.Time) Context {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Context{
		UserID:      event.UserID,
		Event:       event,
		Stats:       stats,
		Session:     session,
		Recent:      recent,
		EvaluatedAt: at,
	}
}

// RecentByType filters the recent event history by event type.
func (c Context) RecentByType(eventType string) []EventData {
	var out []EventData
	for _, e := range c.Recent {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// HasActiveSession reports whether session statistics are present.
func (c Context) HasActiveSession() bool {
	return c.Session != nil
}
