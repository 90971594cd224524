// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
package saga

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
	"github.com/cidumitru/quiz-achievements/pkg/logger"
	"github.com/cidumitru/quiz-achievements/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD FLOW SAGA
// Business process: evaluate one activity event against the full catalog.
// Flow: Load Statistics → Load Stored Progress → Evaluate Applicable Rules →
//
//	Persist Progress → Send Notifications → Publish Events
//
// Evaluations for the same user are serialized with a per-user lock so that
// two concurrent events cannot race on the stored progress records and
// double-award an achievement.
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator generates unique identifiers for events and notifications.
type IDGenerator interface {
	GenerateID() string
}

// Notifier delivers achievement celebrations to the user-facing channel.
type Notifier interface {
	// NotifyUnlocked announces a newly unlocked achievement.
	NotifyUnlocked(ctx context.Context, userID string, def achievement.Definition) error

	// NotifyProgress announces a significant progress change.
	NotifyProgress(ctx context.Context, userID string, def achievement.Definition, result achievement.Result) error
}

// AwardFlowInput is the trigger for one evaluation run.
type AwardFlowInput struct {
	// UserID - the user whose achievements are evaluated.
	UserID string

	// Event - the activity event that triggered the run.
	Event achievement.EventData
}

// Validate checks if the input is usable.
func (i AwardFlowInput) Validate() error {
	if i.UserID == "" {
		return errors.New("award_flow: user ID is required")
	}
	if i.Event.EventType == "" {
		return errors.New("award_flow: event type is required")
	}
	return nil
}

// UnlockedAchievement pairs a definition with the result that unlocked it.
type UnlockedAchievement struct {
	Definition achievement.Definition
	Result     achievement.Result
}

// AwardFlowResult summarizes one evaluation run.
type AwardFlowResult struct {
	// UserID - the evaluated user.
	UserID string

	// Unlocked - achievements newly unlocked by this run.
	Unlocked []UnlockedAchievement

	// EvaluatedRules - how many rules matched the event and were evaluated.
	EvaluatedRules int

	// ProgressUpdates - how many stored records were written.
	ProgressUpdates int

	// NotificationsSent - how many notifications went out.
	NotificationsSent int

	// ProcessedAt - when the run completed.
	ProcessedAt time.Time
}

// HasUnlocks returns true if any achievement was unlocked.
func (r *AwardFlowResult) HasUnlocks() bool {
	return len(r.Unlocked) > 0
}

// AwardFlowStep identifies a step in the award flow.
type AwardFlowStep string

const (
	StepLoadStatistics  AwardFlowStep = "load_statistics"
	StepLoadProgress    AwardFlowStep = "load_progress"
	StepEvaluateRules   AwardFlowStep = "evaluate_rules"
	StepPersistProgress AwardFlowStep = "persist_progress"
	StepNotify          AwardFlowStep = "notify"
	StepPublishEvents   AwardFlowStep = "publish_events"
	StepComplete        AwardFlowStep = "complete"
)

// awardFlowState tracks the saga state across steps.
type awardFlowState struct {
	CurrentStep AwardFlowStep
	Input       AwardFlowInput

	EvalContext achievement.Context
	Existing    map[string]achievement.Progress

	Results  []evaluation
	Unlocked []UnlockedAchievement

	ProgressUpdates   int
	NotificationsSent int

	StartedAt   time.Time
	CompletedAt *time.Time
	FailedStep  AwardFlowStep
	Error       error
}

// evaluation pairs one rule outcome with its definition and prior state.
type evaluation struct {
	Definition achievement.Definition
	Result     achievement.Result
	WasEarned  bool
	Updated    achievement.Progress
	Changed    bool
}

// AwardFlowConfig contains configuration for the award flow saga.
type AwardFlowConfig struct {
	// EnableNotifications toggles the notification step.
	EnableNotifications bool

	// NotifyOnSignificantProgress also notifies on (>= 5 point) progress
	// moves, not just unlocks.
	NotifyOnSignificantProgress bool

	// MaxUnlocksPerRun caps unlocks from one event if something goes wrong.
	MaxUnlocksPerRun int

	// RecentEventLimit bounds the recent-history window loaded per run.
	RecentEventLimit int
}

// DefaultAwardFlowConfig returns default configuration.
func DefaultAwardFlowConfig() AwardFlowConfig {
	return AwardFlowConfig{
		EnableNotifications:         true,
		NotifyOnSignificantProgress: false,
		MaxUnlocksPerRun:            5,
		RecentEventLimit:            20,
	}
}

// AwardFlowSaga orchestrates the complete evaluate-persist-celebrate process
// for one activity event. Safe for concurrent use: runs for different users
// proceed in parallel, runs for the same user are serialized.
type AwardFlowSaga struct {
	registry      *achievement.Registry
	progressRepo  achievement.ProgressRepository
	statsProvider achievement.StatisticsProvider
	notifier      Notifier
	eventBus      shared.EventPublisher
	idGenerator   IDGenerator
	log           *logger.Logger

	dbRetrier *retry.Retrier
	userLocks *keyedMutex

	config AwardFlowConfig
}

// NewAwardFlowSaga creates a new award flow saga with all dependencies.
func NewAwardFlowSaga(
	registry *achievement.Registry,
	progressRepo achievement.ProgressRepository,
	statsProvider achievement.StatisticsProvider,
	notifier Notifier,
	eventBus shared.EventPublisher,
	idGenerator IDGenerator,
	log *logger.Logger,
	config AwardFlowConfig,
) *AwardFlowSaga {
	if log == nil {
		log = logger.Default()
	}

	return &AwardFlowSaga{
		registry:      registry,
		progressRepo:  progressRepo,
		statsProvider: statsProvider,
		notifier:      notifier,
		eventBus:      eventBus,
		idGenerator:   idGenerator,
		log:           log.With(logger.String("saga", "award_flow")),
		dbRetrier:     retry.DatabaseRetrier(),
		userLocks:     newKeyedMutex(),
		config:        config,
	}
}

// Execute runs the complete evaluation process for one event.
func (s *AwardFlowSaga) Execute(ctx context.Context, input AwardFlowInput) (*AwardFlowResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	unlock := s.userLocks.Lock(input.UserID)
	defer unlock()

	state := &awardFlowState{
		CurrentStep: StepLoadStatistics,
		Input:       input,
		StartedAt:   time.Now().UTC(),
	}

	// Step 1: load statistics and build the evaluation context.
	if err := s.stepLoadStatistics(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 2: load stored progress for the user.
	state.CurrentStep = StepLoadProgress
	if err := s.stepLoadProgress(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 3: evaluate every rule that applies to the event.
	state.CurrentStep = StepEvaluateRules
	if err := s.stepEvaluateRules(state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 4: persist changed records.
	state.CurrentStep = StepPersistProgress
	if err := s.stepPersistProgress(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 5: notifications. Non-critical: a lost celebration is better
	// than a failed evaluation.
	state.CurrentStep = StepNotify
	if err := s.stepNotify(ctx, state); err != nil {
		s.log.Warn("notification step failed",
			logger.UserID(input.UserID),
			logger.Err(err),
		)
	}

	// Step 6: domain events. Non-critical: subscribers can catch up.
	state.CurrentStep = StepPublishEvents
	if err := s.stepPublishEvents(state); err != nil {
		s.log.Warn("event publish step failed",
			logger.UserID(input.UserID),
			logger.Err(err),
		)
	}

	state.CurrentStep = StepComplete
	now := time.Now().UTC()
	state.CompletedAt = &now

	if len(state.Unlocked) > 0 {
		s.log.Info("achievements unlocked",
			logger.UserID(input.UserID),
			logger.EventType(input.Event.EventType),
			logger.Int("unlocked", len(state.Unlocked)),
		)
	}

	return &AwardFlowResult{
		UserID:            input.UserID,
		Unlocked:          state.Unlocked,
		EvaluatedRules:    len(state.Results),
		ProgressUpdates:   state.ProgressUpdates,
		NotificationsSent: state.NotificationsSent,
		ProcessedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SAGA STEPS
// ══════════════════════════════════════════════════════════════════════════════

// stepLoadStatistics fetches statistics snapshots and builds the immutable
// evaluation context.
func (s *AwardFlowSaga) stepLoadStatistics(ctx context.Context, state *awardFlowState) error {
	stats, err := s.statsProvider.UserStatistics(ctx, state.Input.UserID)
	if err != nil {
		state.FailedStep = StepLoadStatistics
		state.Error = fmt.Errorf("load user statistics: %w", err)
		return state.Error
	}

	var session *achievement.SessionStatistics
	if state.Input.Event.SessionID != "" {
		session, err = s.statsProvider.SessionStatistics(ctx, state.Input.Event.SessionID)
		if err != nil {
			// A missing session snapshot is not fatal: session-scoped rules
			// degrade to zero progress.
			s.log.Debug("session statistics unavailable",
				logger.SessionID(state.Input.Event.SessionID),
				logger.Err(err),
			)
			session = nil
		}
	}

	recent, err := s.statsProvider.RecentEvents(ctx, state.Input.UserID, s.config.RecentEventLimit)
	if err != nil {
		recent = nil
	}

	state.EvalContext = achievement.NewContext(state.Input.Event, stats, session, recent, time.Time{})
	return nil
}

// stepLoadProgress loads every stored progress record for the user into a
// lookup map.
func (s *AwardFlowSaga) stepLoadProgress(ctx context.Context, state *awardFlowState) error {
	records, err := s.progressRepo.GetAllForUser(ctx, state.Input.UserID)
	if err != nil && !shared.IsNotFound(err) {
		state.FailedStep = StepLoadProgress
		state.Error = fmt.Errorf("load stored progress: %w", err)
		return state.Error
	}

	state.Existing = make(map[string]achievement.Progress, len(records))
	for _, rec := range records {
		state.Existing[rec.AchievementID] = rec
	}
	return nil
}

// stepEvaluateRules runs every applicable rule against the context. One
// broken rule does not poison the run: its error is logged and skipped.
func (s *AwardFlowSaga) stepEvaluateRules(state *awardFlowState) error {
	now := time.Now().UTC()

	for _, def := range s.registry.ForEvent(state.Input.Event.EventType) {
		rule, ok := s.registry.RuleByID(def.ID)
		if !ok {
			continue
		}

		prev := state.Existing[def.ID]
		wasEarned := prev.Earned()

		result, err := rule.Evaluate(state.EvalContext, prev.Progress)
		if err != nil {
			s.log.Error("rule evaluation failed",
				logger.AchievementID(def.ID),
				logger.UserID(state.Input.UserID),
				logger.Err(err),
			)
			continue
		}

		updated := prev
		if prev.UserID == "" {
			updated = achievement.Progress{
				UserID:        state.Input.UserID,
				AchievementID: def.ID,
			}
		}
		updated = updated.ApplyResult(result, def, now)

		// A repeatable achievement counts as newly unlocked only when
		// ApplyResult stamps this run's timestamp, which happens on the
		// first unlock of each day or week window. Same-window repeats
		// update progress without re-firing notifications or events.
		newlyUnlocked := result.Achieved &&
			updated.AchievedAt != nil && updated.AchievedAt.Equal(now)

		changed := result.HasProgressChanged() || newlyUnlocked

		state.Results = append(state.Results, evaluation{
			Definition: def,
			Result:     result,
			WasEarned:  wasEarned,
			Updated:    updated,
			Changed:    changed,
		})

		if newlyUnlocked && len(state.Unlocked) < s.config.MaxUnlocksPerRun {
			state.Unlocked = append(state.Unlocked, UnlockedAchievement{
				Definition: def,
				Result:     result,
			})
		}
	}

	return nil
}

// stepPersistProgress writes every changed record, retrying transient
// storage failures.
func (s *AwardFlowSaga) stepPersistProgress(ctx context.Context, state *awardFlowState) error {
	for _, ev := range state.Results {
		if !ev.Changed {
			continue
		}

		rec := ev.Updated
		err := s.dbRetrier.Do(ctx, func(ctx context.Context) error {
			if err := s.progressRepo.Upsert(ctx, rec); err != nil {
				if shared.IsRetryable(err) {
					return retry.Retryable(err)
				}
				return retry.Permanent(err)
			}
			return nil
		})
		if err != nil {
			state.FailedStep = StepPersistProgress
			state.Error = fmt.Errorf("persist progress for %s: %w", rec.AchievementID, err)
			return state.Error
		}

		state.ProgressUpdates++
	}

	return nil
}

// stepNotify sends unlock celebrations and, optionally, significant progress
// updates. Individual failures are logged and skipped.
func (s *AwardFlowSaga) stepNotify(ctx context.Context, state *awardFlowState) error {
	if !s.config.EnableNotifications || s.notifier == nil {
		return nil
	}

	for _, unlocked := range state.Unlocked {
		if err := s.notifier.NotifyUnlocked(ctx, state.Input.UserID, unlocked.Definition); err != nil {
			s.log.Warn("unlock notification failed",
				logger.AchievementID(unlocked.Definition.ID),
				logger.Err(err),
			)
			continue
		}
		state.NotificationsSent++
	}

	if !s.config.NotifyOnSignificantProgress {
		return nil
	}

	for _, ev := range state.Results {
		if ev.Result.Achieved || !ev.Result.HasSignificantProgress() {
			continue
		}
		if err := s.notifier.NotifyProgress(ctx, state.Input.UserID, ev.Definition, ev.Result); err != nil {
			continue
		}
		state.NotificationsSent++
	}

	return nil
}

// stepPublishEvents emits achievement.unlocked and progress_updated events.
func (s *AwardFlowSaga) stepPublishEvents(state *awardFlowState) error {
	if s.eventBus == nil {
		return nil
	}

	for _, unlocked := range state.Unlocked {
		event := shared.NewAchievementUnlockedEvent(
			state.Input.UserID,
			unlocked.Definition.ID,
			unlocked.Definition.Meta.Title,
			unlocked.Definition.Meta.Points,
			string(unlocked.Definition.Meta.Confetti),
		)
		if s.idGenerator != nil {
			event.ID = s.idGenerator.GenerateID()
		}
		if err := s.eventBus.Publish(event); err != nil {
			s.log.Warn("failed to publish unlock event",
				logger.AchievementID(unlocked.Definition.ID),
				logger.Err(err),
			)
		}
	}

	for _, ev := range state.Results {
		if ev.Result.Achieved || !ev.Changed {
			continue
		}
		event := shared.NewProgressUpdatedEvent(
			state.Input.UserID,
			ev.Definition.ID,
			ev.Result.Progress,
			ev.Result.PreviousProgress,
		)
		if s.idGenerator != nil {
			event.ID = s.idGenerator.GenerateID()
		}
		if err := s.eventBus.Publish(event); err != nil {
			s.log.Debug("failed to publish progress event",
				logger.AchievementID(ev.Definition.ID),
				logger.Err(err),
			)
		}
	}

	return nil
}

// wrapError wraps an error with saga context.
func (s *AwardFlowSaga) wrapError(state *awardFlowState, err error) error {
	return &AwardFlowError{
		Step:    state.FailedStep,
		UserID:  state.Input.UserID,
		Cause:   err,
		Message: fmt.Sprintf("award flow failed at step '%s': %v", state.FailedStep, err),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CONVENIENCE METHODS FOR COMMON TRIGGERS
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateQuizCompleted runs the flow for a quiz completion.
func (s *AwardFlowSaga) EvaluateQuizCompleted(ctx context.Context, userID, sessionID string, data map[string]interface{}) (*AwardFlowResult, error) {
	return s.Execute(ctx, AwardFlowInput{
		UserID: userID,
		Event: achievement.EventData{
			UserID:     userID,
			EventType:  achievement.EventQuizCompleted,
			SessionID:  sessionID,
			Data:       data,
			OccurredAt: time.Now().UTC(),
		},
	})
}

// EvaluateAnswerSubmitted runs the flow for a single answer submission.
func (s *AwardFlowSaga) EvaluateAnswerSubmitted(ctx context.Context, userID, sessionID string, data map[string]interface{}) (*AwardFlowResult, error) {
	return s.Execute(ctx, AwardFlowInput{
		UserID: userID,
		Event: achievement.EventData{
			UserID:     userID,
			EventType:  achievement.EventAnswerSubmitted,
			SessionID:  sessionID,
			Data:       data,
			OccurredAt: time.Now().UTC(),
		},
	})
}

// EvaluateDailyActivity runs the flow for a daily activity tick.
func (s *AwardFlowSaga) EvaluateDailyActivity(ctx context.Context, userID string) (*AwardFlowResult, error) {
	return s.Execute(ctx, AwardFlowInput{
		UserID: userID,
		Event: achievement.EventData{
			UserID:     userID,
			EventType:  achievement.EventDailyActivity,
			OccurredAt: time.Now().UTC(),
		},
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// AwardFlowError represents an error during the award flow.
type AwardFlowError struct {
	Step    AwardFlowStep
	UserID  string
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *AwardFlowError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AwardFlowError) Unwrap() error {
	return e.Cause
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-USER SERIALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// keyedMutex serializes work per key with refcounted entries so the map does
// not grow with the total user population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*userLock)}
}

// Lock acquires the lock for a key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &userLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// AWARD FLOW SAGA BUILDER (Fluent API)
// ══════════════════════════════════════════════════════════════════════════════

// AwardFlowSagaBuilder provides a fluent API for building AwardFlowSaga.
type AwardFlowSagaBuilder struct {
	registry      *achievement.Registry
	progressRepo  achievement.ProgressRepository
	statsProvider achievement.StatisticsProvider
	notifier      Notifier
	eventBus      shared.EventPublisher
	idGenerator   IDGenerator
	log           *logger.Logger
	config        AwardFlowConfig
}

// NewAwardFlowSagaBuilder creates a new builder with default config.
func NewAwardFlowSagaBuilder() *AwardFlowSagaBuilder {
	return &AwardFlowSagaBuilder{config: DefaultAwardFlowConfig()}
}

// WithRegistry sets the achievement registry.
func (b *AwardFlowSagaBuilder) WithRegistry(r *achievement.Registry) *AwardFlowSagaBuilder {
	b.registry = r
	return b
}

// WithProgressRepo sets the progress repository.
func (b *AwardFlowSagaBuilder) WithProgressRepo(repo achievement.ProgressRepository) *AwardFlowSagaBuilder {
	b.progressRepo = repo
	return b
}

// WithStatisticsProvider sets the statistics provider.
func (b *AwardFlowSagaBuilder) WithStatisticsProvider(p achievement.StatisticsProvider) *AwardFlowSagaBuilder {
	b.statsProvider = p
	return b
}

// WithNotifier sets the notifier.
func (b *AwardFlowSagaBuilder) WithNotifier(n Notifier) *AwardFlowSagaBuilder {
	b.notifier = n
	return b
}

// WithEventBus sets the event publisher.
func (b *AwardFlowSagaBuilder) WithEventBus(bus shared.EventPublisher) *AwardFlowSagaBuilder {
	b.eventBus = bus
	return b
}

// WithIDGenerator sets the ID generator.
func (b *AwardFlowSagaBuilder) WithIDGenerator(gen IDGenerator) *AwardFlowSagaBuilder {
	b.idGenerator = gen
	return b
}

// WithLogger sets the logger.
func (b *AwardFlowSagaBuilder) WithLogger(l *logger.Logger) *AwardFlowSagaBuilder {
	b.log = l
	return b
}

// WithConfig sets the configuration.
func (b *AwardFlowSagaBuilder) WithConfig(c AwardFlowConfig) *AwardFlowSagaBuilder {
	b.config = c
	return b
}

// Build constructs the saga, failing when a required dependency is missing.
func (b *AwardFlowSagaBuilder) Build() (*AwardFlowSaga, error) {
	if b.registry == nil {
		return nil, errors.New("award_flow: registry is required")
	}
	if b.progressRepo == nil {
		return nil, errors.New("award_flow: progress repository is required")
	}
	if b.statsProvider == nil {
		return nil, errors.New("award_flow: statistics provider is required")
	}

	return NewAwardFlowSaga(
		b.registry,
		b.progressRepo,
		b.statsProvider,
		b.notifier,
		b.eventBus,
		b.idGenerator,
		b.log,
		b.config,
	), nil
}
