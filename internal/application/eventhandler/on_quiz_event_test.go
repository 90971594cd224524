package eventhandler

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidumitru/quiz-achievements/internal/application/saga"
	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
	"github.com/cidumitru/quiz-achievements/pkg/logger"
)

type fakeProgressRepo struct {
	mu      sync.Mutex
	records map[string]achievement.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]achievement.Progress)}
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, achievementID string) (achievement.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID+"/"+achievementID]
	if !ok {
		return achievement.Progress{}, shared.ErrProgressNotFound
	}
	return rec, nil
}

func (r *fakeProgressRepo) GetAllForUser(_ context.Context, userID string) ([]achievement.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []achievement.Progress
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Upsert(_ context.Context, p achievement.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.UserID+"/"+p.AchievementID] = p
	return nil
}

func (r *fakeProgressRepo) get(userID, achievementID string) (achievement.Progress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID+"/"+achievementID]
	return rec, ok
}

func (r *fakeProgressRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeStatsProvider struct {
	stats achievement.UserStatistics
}

func (p *fakeStatsProvider) UserStatistics(context.Context, string) (achievement.UserStatistics, error) {
	return p.stats, nil
}

func (p *fakeStatsProvider) SessionStatistics(context.Context, string) (*achievement.SessionStatistics, error) {
	return nil, shared.ErrNotFound
}

func (p *fakeStatsProvider) RecentEvents(context.Context, string, int) ([]achievement.EventData, error) {
	return nil, nil
}

// envelopeEvent mimics an event that crossed the pub/sub wire: payload only,
// no concrete activity type.
type envelopeEvent struct {
	eventType   shared.EventType
	aggregateID string
	payload     map[string]interface{}
}

func (e envelopeEvent) EventType() shared.EventType     { return e.eventType }
func (e envelopeEvent) OccurredAt() time.Time           { return time.Now().UTC() }
func (e envelopeEvent) AggregateID() string             { return e.aggregateID }
func (e envelopeEvent) Payload() map[string]interface{} { return e.payload }

func newTestHandler(t *testing.T, repo *fakeProgressRepo, stats achievement.UserStatistics) *OnQuizEventHandler {
	t.Helper()
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)

	flow, err := saga.NewAwardFlowSagaBuilder().
		WithRegistry(registry).
		WithProgressRepo(repo).
		WithStatisticsProvider(&fakeStatsProvider{stats: stats}).
		Build()
	require.NoError(t, err)

	quiet := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	return NewOnQuizEventHandler(flow, quiet, DefaultQuizEventConfig())
}

func TestHandleTypedActivityEvent(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newTestHandler(t, repo, achievement.UserStatistics{CurrentStreak: 5})

	event := shared.NewQuizActivityEvent(shared.EventQuizCompleted, "user-1", "s-1", nil)
	require.NoError(t, h.Handle(event))

	rec, ok := repo.get("user-1", "streak_correct_5")
	require.True(t, ok)
	assert.True(t, rec.Achieved)
}

func TestHandleEnvelopeDeliveredActivityEvent(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newTestHandler(t, repo, achievement.UserStatistics{CurrentStreak: 5})

	event := envelopeEvent{
		eventType:   shared.EventQuizCompleted,
		aggregateID: "user-1",
		payload: map[string]interface{}{
			"user_id":    "user-1",
			"session_id": "s-1",
			"data":       map[string]interface{}{"score": 80.0},
		},
	}

	require.NoError(t, h.Handle(event))

	rec, ok := repo.get("user-1", "streak_correct_5")
	require.True(t, ok, "envelope-delivered event must drive evaluation")
	assert.True(t, rec.Achieved)
}

func TestHandleDropsNonActivityEvent(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newTestHandler(t, repo, achievement.UserStatistics{CurrentStreak: 5})

	event := envelopeEvent{
		eventType:   shared.EventAchievementUnlocked,
		aggregateID: "user-1",
		payload:     map[string]interface{}{"user_id": "user-1"},
	}

	require.NoError(t, h.Handle(event))
	assert.Zero(t, repo.count())
}

func TestHandleDropsActivityEventWithoutUser(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newTestHandler(t, repo, achievement.UserStatistics{CurrentStreak: 5})

	event := envelopeEvent{
		eventType: shared.EventQuizCompleted,
		payload:   map[string]interface{}{},
	}

	require.NoError(t, h.Handle(event))
	assert.Zero(t, repo.count())
}
