// Package service provides infrastructure adapters for the application
// layer's outbound ports.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
	"github.com/cidumitru/quiz-achievements/pkg/circuitbreaker"
	"github.com/cidumitru/quiz-achievements/pkg/logger"
	"github.com/cidumitru/quiz-achievements/pkg/retry"
)

// IDGeneratorImpl generates UUIDs for events and notifications.
type IDGeneratorImpl struct{}

// NewIDGenerator creates a new IDGeneratorImpl.
func NewIDGenerator() *IDGeneratorImpl {
	return &IDGeneratorImpl{}
}

// GenerateID returns a new UUID string.
func (g *IDGeneratorImpl) GenerateID() string {
	return uuid.New().String()
}

// NotificationSender is the transport behind the notifier: whatever channel
// actually reaches the user (push gateway, websocket fanout, ...).
type NotificationSender interface {
	Send(ctx context.Context, userID, title, body string) error
}

// LoggingSender is a NotificationSender that only logs deliveries. Used in
// development and as the default until a real channel is wired.
type LoggingSender struct {
	log *logger.Logger
}

// NewLoggingSender creates a new LoggingSender.
func NewLoggingSender(log *logger.Logger) *LoggingSender {
	return &LoggingSender{log: log}
}

// Send logs the notification instead of delivering it.
func (s *LoggingSender) Send(ctx context.Context, userID, title, body string) error {
	s.log.Info("notification delivered",
		logger.UserID(userID),
		logger.String("title", title),
		logger.String("body", body),
	)
	return nil
}

// AchievementNotifier delivers achievement celebrations through a
// NotificationSender, shielded by a circuit breaker and a retry policy so a
// flaky channel cannot stall evaluation runs.
type AchievementNotifier struct {
	sender  NotificationSender
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewAchievementNotifier creates a notifier around the given sender.
func NewAchievementNotifier(sender NotificationSender, log *logger.Logger) *AchievementNotifier {
	n := &AchievementNotifier{
		sender:  sender,
		retrier: retry.NotificationRetrier(),
		log:     log,
	}

	n.breaker = circuitbreaker.NotifierBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("notifier circuit state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return n
}

// NotifyUnlocked announces a newly unlocked achievement.
func (n *AchievementNotifier) NotifyUnlocked(ctx context.Context, userID string, def achievement.Definition) error {
	title := fmt.Sprintf("%s %s", def.Meta.Badge, def.Meta.Title)
	body := fmt.Sprintf("%s (+%d points)", def.Meta.Description, def.Meta.Points)

	return n.deliver(ctx, userID, title, body)
}

// NotifyProgress announces a significant progress change.
func (n *AchievementNotifier) NotifyProgress(ctx context.Context, userID string, def achievement.Definition, result achievement.Result) error {
	title := fmt.Sprintf("Progress: %s", def.Meta.Title)
	body := fmt.Sprintf("%.0f%% towards %s", result.Progress, def.Meta.Title)

	return n.deliver(ctx, userID, title, body)
}

func (n *AchievementNotifier) deliver(ctx context.Context, userID, title, body string) error {
	err := n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.retrier.Do(ctx, func(ctx context.Context) error {
			if err := n.sender.Send(ctx, userID, title, body); err != nil {
				return retry.Retryable(err)
			}
			return nil
		})
	})
	if err != nil {
		return shared.WrapError("notification", "Send", shared.ErrNotificationFailed, "delivery failed", err)
	}

	return nil
}
