package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Quiz activity events (consumed by the achievement engine)
	EventQuizCompleted        EventType = "quiz_completed"
	EventAnswerSubmitted      EventType = "answer_submitted"
	EventDailyActivity        EventType = "daily_activity"
	EventQuizSessionCompleted EventType = "quiz_session_completed"

	// Achievement events (produced by the award flow)
	EventAchievementUnlocked EventType = "achievement.unlocked"
	EventProgressUpdated     EventType = "achievement.progress_updated"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quiz Activity Events
// ═══════════════════════════════════════════════════════════════════════════

// QuizActivityEvent is the generic event emitted by the quiz delivery layer.
// All four recognized activity event types share this shape: the interesting
// variation lives in Data, which the comparative rules read directly.
type QuizActivityEvent struct {
	BaseEvent
	UserID    string                 `json:"user_id"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Payload implements Event interface.
func (e QuizActivityEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"session_id": e.SessionID,
		"data":       e.Data,
	}
}

// NewQuizActivityEvent creates a new quiz activity event.
func NewQuizActivityEvent(eventType EventType, userID, sessionID string, data map[string]interface{}) QuizActivityEvent {
	return QuizActivityEvent{
		BaseEvent: NewBaseEvent(eventType, userID),
		UserID:    userID,
		SessionID: sessionID,
		Data:      data,
	}
}

// IsActivityEventType reports whether the type is one of the quiz activity
// events the achievement engine evaluates.
func IsActivityEventType(t EventType) bool {
	switch t {
	case EventQuizCompleted, EventAnswerSubmitted, EventDailyActivity, EventQuizSessionCompleted:
		return true
	default:
		return false
	}
}

// AsQuizActivity extracts the activity shape from an event. It accepts the
// concrete QuizActivityEvent directly; for any other Event of an activity
// type, such as one rebuilt from a transport envelope, it re-materializes
// the activity from the wire payload (user_id, session_id, data).
func AsQuizActivity(event Event) (QuizActivityEvent, bool) {
	if a, ok := event.(QuizActivityEvent); ok {
		return a, true
	}
	if !IsActivityEventType(event.EventType()) {
		return QuizActivityEvent{}, false
	}

	a := QuizActivityEvent{
		BaseEvent: BaseEvent{
			Type:        event.EventType(),
			Timestamp:   event.OccurredAt(),
			AggregateId: event.AggregateID(),
			Version:     1,
		},
	}

	p := event.Payload()
	if v, ok := p["user_id"].(string); ok {
		a.UserID = v
	}
	if a.UserID == "" {
		// Activity events aggregate by user, so the envelope's aggregate
		// id identifies the user when the payload omits it.
		a.UserID = event.AggregateID()
	}
	if v, ok := p["session_id"].(string); ok {
		a.SessionID = v
	}
	if v, ok := p["data"].(map[string]interface{}); ok {
		a.Data = v
	}
	return a, true
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted when a user crosses an achievement
// threshold for the first time.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
	Points        int    `json:"points"`
	ConfettiTier  string `json:"confetti_tier"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"achievement_id": e.AchievementID,
		"title":          e.Title,
		"points":         e.Points,
		"confetti_tier":  e.ConfettiTier,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID, achievementID, title string, points int, confettiTier string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		UserID:        userID,
		AchievementID: achievementID,
		Title:         title,
		Points:        points,
		ConfettiTier:  confettiTier,
	}
}

// ProgressUpdatedEvent is emitted when an evaluation moves an achievement's
// progress without crossing the threshold.
type ProgressUpdatedEvent struct {
	BaseEvent
	UserID           string  `json:"user_id"`
	AchievementID    string  `json:"achievement_id"`
	Progress         float64 `json:"progress"`
	PreviousProgress float64 `json:"previous_progress"`
}

// Payload implements Event interface.
func (e ProgressUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":           e.UserID,
		"achievement_id":    e.AchievementID,
		"progress":          e.Progress,
		"previous_progress": e.PreviousProgress,
	}
}

// NewProgressUpdatedEvent creates a new ProgressUpdatedEvent.
func NewProgressUpdatedEvent(userID, achievementID string, progress, previousProgress float64) ProgressUpdatedEvent {
	return ProgressUpdatedEvent{
		BaseEvent:        NewBaseEvent(EventProgressUpdated, userID),
		UserID:           userID,
		AchievementID:    achievementID,
		Progress:         progress,
		PreviousProgress: previousProgress,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
