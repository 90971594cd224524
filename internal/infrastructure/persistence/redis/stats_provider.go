package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
)

// Statistics keys maintained by the quiz platform. The engine only reads
// them; aggregation happens upstream.
const (
	PrefixUserStats    = "achievements:stats:user:"
	PrefixSessionStats = "achievements:stats:session:"
	PrefixRecentEvents = "achievements:stats:events:"
)

// StatsProvider implements achievement.StatisticsProvider on top of the
// statistics snapshots the quiz platform keeps in Redis: one JSON document
// per user, one per active session, and a capped list of recent activity
// events per user.
type StatsProvider struct {
	cache *Cache
}

// NewStatsProvider creates a StatsProvider over the shared cache.
func NewStatsProvider(cache *Cache) *StatsProvider {
	return &StatsProvider{cache: cache}
}

// userStatsDoc is the wire shape of the per-user snapshot.
type userStatsDoc struct {
	TotalQuizzes         int                `json:"total_quizzes"`
	TotalAnswers         int                `json:"total_answers"`
	CorrectAnswers       int                `json:"correct_answers"`
	AverageScore         float64            `json:"average_score"`
	AverageScoreToday    float64            `json:"average_score_today"`
	CurrentStreak        int                `json:"current_streak"`
	LongestStreak        int                `json:"longest_streak"`
	ConsecutiveStudyDays int                `json:"consecutive_study_days"`
	LastActivityAt       time.Time          `json:"last_activity_at"`
	Daily                map[string]float64 `json:"daily"`
}

// sessionStatsDoc is the wire shape of the per-session snapshot.
type sessionStatsDoc struct {
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`
	Accuracy          float64 `json:"accuracy"`
	CompletionMs      int64   `json:"completion_ms"`
	CurrentStreak     int     `json:"current_streak"`
}

// eventDoc is the wire shape of one recent-events list entry.
type eventDoc struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	EventType  string                 `json:"event_type"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	SessionID  string                 `json:"session_id,omitempty"`
}

// UserStatistics returns the user's aggregate snapshot. A user with no
// snapshot yet gets zero statistics, not an error.
func (p *StatsProvider) UserStatistics(ctx context.Context, userID string) (achievement.UserStatistics, error) {
	var doc userStatsDoc
	err := p.cache.Get(ctx, PrefixUserStats+userID, &doc)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return achievement.UserStatistics{}, nil
		}
		return achievement.UserStatistics{}, fmt.Errorf("load user statistics: %w", err)
	}

	return achievement.UserStatistics{
		TotalQuizzes:         doc.TotalQuizzes,
		TotalAnswers:         doc.TotalAnswers,
		CorrectAnswers:       doc.CorrectAnswers,
		AverageScore:         doc.AverageScore,
		AverageScoreToday:    doc.AverageScoreToday,
		CurrentStreak:        doc.CurrentStreak,
		LongestStreak:        doc.LongestStreak,
		ConsecutiveStudyDays: doc.ConsecutiveStudyDays,
		LastActivityAt:       doc.LastActivityAt,
		Daily:                doc.Daily,
	}, nil
}

// SessionStatistics returns the snapshot for one quiz session, or nil when
// the session is unknown or already expired.
func (p *StatsProvider) SessionStatistics(ctx context.Context, sessionID string) (*achievement.SessionStatistics, error) {
	if sessionID == "" {
		return nil, nil
	}

	var doc sessionStatsDoc
	err := p.cache.Get(ctx, PrefixSessionStats+sessionID, &doc)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session statistics: %w", err)
	}

	return &achievement.SessionStatistics{
		QuestionsAnswered: doc.QuestionsAnswered,
		CorrectAnswers:    doc.CorrectAnswers,
		Accuracy:          doc.Accuracy,
		CompletionTime:    time.Duration(doc.CompletionMs) * time.Millisecond,
		CurrentStreak:     doc.CurrentStreak,
	}, nil
}

// RecentEvents returns up to limit recent activity events, newest first.
func (p *StatsProvider) RecentEvents(ctx context.Context, userID string, limit int) ([]achievement.EventData, error) {
	if limit <= 0 {
		return nil, nil
	}

	entries, err := p.cache.Client().LRange(ctx, PrefixRecentEvents+userID, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	events := make([]achievement.EventData, 0, len(entries))
	for _, entry := range entries {
		var doc eventDoc
		if err := json.Unmarshal([]byte(entry), &doc); err != nil {
			// Skip unreadable entries rather than failing the run.
			continue
		}
		events = append(events, achievement.EventData{
			ID:         doc.ID,
			UserID:     doc.UserID,
			EventType:  doc.EventType,
			Data:       doc.Data,
			OccurredAt: doc.OccurredAt,
			SessionID:  doc.SessionID,
		})
	}

	return events, nil
}
