// Package eventhandler contains subscribers that react to domain events.
package eventhandler

import (
	"context"
	"time"

	"github.com/cidumitru/quiz-achievements/internal/application/saga"
	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
	"github.com/cidumitru/quiz-achievements/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON QUIZ EVENT HANDLER
// Bridges the event bus to the award flow: every quiz activity event that
// arrives on the bus becomes one evaluation run.
//
// The handler is deliberately thin. All decisions (which rules apply, what
// unlocks, what gets persisted) live in the saga and the domain layer.
// ═══════════════════════════════════════════════════════════════════════════

// QuizEventConfig contains configuration for the quiz event handler.
type QuizEventConfig struct {
	// EvaluationTimeout bounds one evaluation run.
	EvaluationTimeout time.Duration
}

// DefaultQuizEventConfig returns default configuration.
func DefaultQuizEventConfig() QuizEventConfig {
	return QuizEventConfig{
		EvaluationTimeout: 10 * time.Second,
	}
}

// OnQuizEventHandler feeds quiz activity events into the award flow.
type OnQuizEventHandler struct {
	awardFlow *saga.AwardFlowSaga
	log       *logger.Logger
	config    QuizEventConfig
}

// NewOnQuizEventHandler creates the handler.
func NewOnQuizEventHandler(awardFlow *saga.AwardFlowSaga, log *logger.Logger, config QuizEventConfig) *OnQuizEventHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnQuizEventHandler{
		awardFlow: awardFlow,
		log:       log.With(logger.String("handler", "on_quiz_event")),
		config:    config,
	}
}

// EventTypes returns the event types this handler consumes.
func (h *OnQuizEventHandler) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventQuizCompleted,
		shared.EventAnswerSubmitted,
		shared.EventDailyActivity,
		shared.EventQuizSessionCompleted,
	}
}

// Register subscribes the handler for all quiz activity event types.
func (h *OnQuizEventHandler) Register(bus shared.EventSubscriber) error {
	for _, eventType := range h.EventTypes() {
		if err := bus.Subscribe(eventType, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle processes one quiz activity event. Implements shared.EventHandler.
func (h *OnQuizEventHandler) Handle(event shared.Event) error {
	activity, ok := shared.AsQuizActivity(event)
	if !ok {
		h.log.Warn("received non-activity event",
			logger.EventType(string(event.EventType())),
		)
		return nil
	}

	if activity.UserID == "" {
		h.log.Warn("activity event without user id, dropping",
			logger.EventType(string(event.EventType())),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.EvaluationTimeout)
	defer cancel()

	input := saga.AwardFlowInput{
		UserID: activity.UserID,
		Event: achievement.EventData{
			ID:         activity.ID,
			UserID:     activity.UserID,
			EventType:  string(activity.EventType()),
			SessionID:  activity.SessionID,
			Data:       activity.Data,
			OccurredAt: activity.OccurredAt(),
		},
	}

	result, err := h.awardFlow.Execute(ctx, input)
	if err != nil {
		h.log.Error("evaluation failed",
			logger.UserID(activity.UserID),
			logger.EventType(string(event.EventType())),
			logger.Err(err),
		)
		return err
	}

	h.log.Debug("evaluation complete",
		logger.UserID(activity.UserID),
		logger.EventType(string(event.EventType())),
		logger.Int("evaluated", result.EvaluatedRules),
		logger.Int("unlocked", len(result.Unlocked)),
	)

	return nil
}
