package query

import (
	"context"
	"fmt"
	"time"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER PROGRESS QUERY
// Merges the static catalog with the user's stored progress records into
// one view: every achievement with its current progress, earned flag and
// earned-at timestamp.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserProgressQuery contains the user progress query parameters.
type GetUserProgressQuery struct {
	// UserID - the user to report on.
	UserID string

	// Category filters to one rule family (empty = all).
	Category achievement.Category

	// EarnedOnly drops achievements with no unlock yet.
	EarnedOnly bool
}

// Validate checks the query parameters.
func (q *GetUserProgressQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("get_user_progress: user ID is required: %w", shared.ErrEmptyValue)
	}
	if q.Category != "" && !q.Category.IsValid() {
		return fmt.Errorf("get_user_progress: unknown category: %w", shared.ErrValidation)
	}
	return nil
}

// UserAchievementDTO is one achievement with the user's state folded in.
type UserAchievementDTO struct {
	AchievementDTO
	Progress   float64    `json:"progress"`
	Achieved   bool       `json:"achieved"`
	AchievedAt *time.Time `json:"achieved_at,omitempty"`
}

// UserProgressDTO is the full per-user progress response.
type UserProgressDTO struct {
	UserID       string               `json:"user_id"`
	Achievements []UserAchievementDTO `json:"achievements"`
	EarnedCount  int                  `json:"earned_count"`
	TotalCount   int                  `json:"total_count"`
	TotalPoints  int                  `json:"total_points"`
}

// GetUserProgressHandler serves user progress queries.
type GetUserProgressHandler struct {
	registry     *achievement.Registry
	progressRepo achievement.ProgressRepository
}

// NewGetUserProgressHandler creates the handler.
func NewGetUserProgressHandler(registry *achievement.Registry, progressRepo achievement.ProgressRepository) *GetUserProgressHandler {
	return &GetUserProgressHandler{registry: registry, progressRepo: progressRepo}
}

// Execute merges catalog and stored progress. A user with no stored records
// gets the full catalog at zero progress, not an error.
func (h *GetUserProgressHandler) Execute(ctx context.Context, q GetUserProgressQuery) (*UserProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	records, err := h.progressRepo.GetAllForUser(ctx, q.UserID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	byID := make(map[string]achievement.Progress, len(records))
	for _, rec := range records {
		byID[rec.AchievementID] = rec
	}

	dto := &UserProgressDTO{UserID: q.UserID}
	for _, def := range h.registry.All() {
		if q.Category != "" && def.Category != q.Category {
			continue
		}

		rec := byID[def.ID]
		if q.EarnedOnly && !rec.Achieved {
			continue
		}

		dto.Achievements = append(dto.Achievements, UserAchievementDTO{
			AchievementDTO: toAchievementDTO(def),
			Progress:       rec.Progress,
			Achieved:       rec.Achieved,
			AchievedAt:     rec.AchievedAt,
		})

		dto.TotalCount++
		if rec.Achieved {
			dto.EarnedCount++
			dto.TotalPoints += def.Meta.Points
		}
	}

	return dto, nil
}
