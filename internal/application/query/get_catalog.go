// Package query contains read operations (CQRS - Queries).
package query

import (
	"fmt"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CATALOG QUERY
// Returns the achievement catalog for display: badge walls, progress screens
// and the "what can I earn" view. Pure read over the in-memory registry.
// ══════════════════════════════════════════════════════════════════════════════

// GetCatalogQuery contains the catalog query parameters.
type GetCatalogQuery struct {
	// Category filters to one rule family (empty = all).
	Category achievement.Category

	// EventType filters to achievements reacting to one event type
	// (empty = all).
	EventType string
}

// Validate checks the query parameters.
func (q *GetCatalogQuery) Validate() error {
	if q.Category != "" && !q.Category.IsValid() {
		return fmt.Errorf("get_catalog: unknown category: %w", shared.ErrValidation)
	}
	return nil
}

// AchievementDTO is the display shape of one catalog entry.
type AchievementDTO struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Badge       string  `json:"badge"`
	Confetti    string  `json:"confetti"`
	Points      int     `json:"points"`
	Repeatable  bool    `json:"repeatable"`
	Target      float64 `json:"target,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

// CatalogDTO is the full catalog response.
type CatalogDTO struct {
	Achievements []AchievementDTO `json:"achievements"`
	Total        int              `json:"total"`
}

// GetCatalogHandler serves catalog queries from the registry.
type GetCatalogHandler struct {
	registry *achievement.Registry
}

// NewGetCatalogHandler creates the handler.
func NewGetCatalogHandler(registry *achievement.Registry) *GetCatalogHandler {
	return &GetCatalogHandler{registry: registry}
}

// Execute returns the catalog in display order.
func (h *GetCatalogHandler) Execute(q GetCatalogQuery) (*CatalogDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var definitions []achievement.Definition
	switch {
	case q.EventType != "":
		definitions = h.registry.ForEvent(q.EventType)
	case q.Category != "":
		definitions = h.registry.ByCategory(q.Category)
	default:
		definitions = h.registry.All()
	}

	dto := &CatalogDTO{
		Achievements: make([]AchievementDTO, 0, len(definitions)),
	}
	for _, def := range definitions {
		if q.Category != "" && def.Category != q.Category {
			continue
		}
		dto.Achievements = append(dto.Achievements, toAchievementDTO(def))
	}
	dto.Total = len(dto.Achievements)

	return dto, nil
}

func toAchievementDTO(def achievement.Definition) AchievementDTO {
	return AchievementDTO{
		ID:          def.ID,
		Type:        string(def.Type),
		Category:    string(def.Category),
		Title:       def.Meta.Title,
		Description: def.Meta.Description,
		Badge:       def.Meta.Badge,
		Confetti:    string(def.Meta.Confetti),
		Points:      def.Meta.Points,
		Repeatable:  def.Meta.Repeatable,
		Target:      def.Config.Target,
		SortOrder:   def.Meta.SortOrder,
	}
}
