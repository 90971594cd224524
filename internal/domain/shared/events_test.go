package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payloadEvent mimics an event rebuilt from a transport envelope: only the
// Event interface, no concrete activity type underneath.
type payloadEvent struct {
	eventType   EventType
	aggregateID string
	occurredAt  time.Time
	payload     map[string]interface{}
}

func (e payloadEvent) EventType() EventType            { return e.eventType }
func (e payloadEvent) OccurredAt() time.Time           { return e.occurredAt }
func (e payloadEvent) AggregateID() string             { return e.aggregateID }
func (e payloadEvent) Payload() map[string]interface{} { return e.payload }

func TestAsQuizActivityPassesThroughConcreteEvent(t *testing.T) {
	event := NewQuizActivityEvent(EventQuizCompleted, "user-1", "s-1",
		map[string]interface{}{"score": 90.0})

	activity, ok := AsQuizActivity(event)
	require.True(t, ok)
	assert.Equal(t, "user-1", activity.UserID)
	assert.Equal(t, "s-1", activity.SessionID)
	assert.Equal(t, 90.0, activity.Data["score"])
}

func TestAsQuizActivityMaterializesFromPayload(t *testing.T) {
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	event := payloadEvent{
		eventType:   EventQuizCompleted,
		aggregateID: "user-1",
		occurredAt:  at,
		payload: map[string]interface{}{
			"user_id":    "user-1",
			"session_id": "s-9",
			"data":       map[string]interface{}{"score": 75.0},
		},
	}

	activity, ok := AsQuizActivity(event)
	require.True(t, ok)
	assert.Equal(t, EventQuizCompleted, activity.EventType())
	assert.Equal(t, "user-1", activity.UserID)
	assert.Equal(t, "s-9", activity.SessionID)
	assert.Equal(t, 75.0, activity.Data["score"])
	assert.True(t, activity.OccurredAt().Equal(at))
}

func TestAsQuizActivityFallsBackToAggregateID(t *testing.T) {
	event := payloadEvent{
		eventType:   EventDailyActivity,
		aggregateID: "user-7",
		payload:     map[string]interface{}{},
	}

	activity, ok := AsQuizActivity(event)
	require.True(t, ok)
	assert.Equal(t, "user-7", activity.UserID)
}

func TestAsQuizActivityRejectsNonActivityTypes(t *testing.T) {
	event := payloadEvent{
		eventType:   EventAchievementUnlocked,
		aggregateID: "user-1",
		payload:     map[string]interface{}{"user_id": "user-1"},
	}

	_, ok := AsQuizActivity(event)
	assert.False(t, ok)
}

func TestIsActivityEventType(t *testing.T) {
	assert.True(t, IsActivityEventType(EventQuizCompleted))
	assert.True(t, IsActivityEventType(EventAnswerSubmitted))
	assert.True(t, IsActivityEventType(EventDailyActivity))
	assert.True(t, IsActivityEventType(EventQuizSessionCompleted))
	assert.False(t, IsActivityEventType(EventAchievementUnlocked))
	assert.False(t, IsActivityEventType(EventProgressUpdated))
}
