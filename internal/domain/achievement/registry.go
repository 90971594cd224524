package achievement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnknownCategory - the catalog contains a category with no rule family.
	ErrUnknownCategory = shared.NewDomainError("achievement", "BuildRegistry", shared.ErrInvalidInput,
		"no rule family for category")

	// ErrMissingComparativeKind - a comparative achievement omitted its kind.
	ErrMissingComparativeKind = shared.NewDomainError("achievement", "BuildRegistry", shared.ErrEmptyValue,
		"comparative achievement requires a comparative kind")

	// ErrDuplicateAchievementID - two catalog entries share an id.
	ErrDuplicateAchievementID = shared.NewDomainError("achievement", "BuildRegistry", shared.ErrAlreadyExists,
		"duplicate achievement id in catalog")
)

// Registry is the composition root of the engine: it owns the fixed catalog
// of definitions and one rule instance per definition, keyed by achievement
// id. A registry is built once at process start and is read-only afterwards,
// so it is safe to share across concurrent evaluations without locking.
type Registry struct {
	definitions map[string]Definition
	rules       map[string]Rule
	ordered     []Definition
}

// NewRegistry builds the registry from the built-in catalog. Any malformed
// entry - bad id, unknown category, missing comparative kind - fails the
// build; the caller is expected to treat that as fatal at startup.
func NewRegistry() (*Registry, error) {
	return NewRegistryWithCatalog(defaultCatalog())
}

// NewRegistryWithCatalog builds a registry from an explicit definition list.
func NewRegistryWithCatalog(definitions []Definition) (*Registry, error) {
	r := &Registry{
		definitions: make(map[string]Definition, len(definitions)),
		rules:       make(map[string]Rule, len(definitions)),
		ordered:     make([]Definition, 0, len(definitions)),
	}

	for _, def := range definitions {
		if !idPattern.MatchString(def.ID) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAchievementID, def.ID)
		}
		if _, exists := r.definitions[def.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAchievementID, def.ID)
		}

		rule, err := buildRule(def)
		if err != nil {
			return nil, err
		}

		r.definitions[def.ID] = def
		r.rules[def.ID] = rule
		r.ordered = append(r.ordered, def)
	}

	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Meta.SortOrder < r.ordered[j].Meta.SortOrder
	})

	return r, nil
}

// buildRule derives the rule for one definition from its category and rule
// config. The category-to-rule mapping is total over the closed category set;
// anything else is a catalog bug surfaced at construction.
func buildRule(def Definition) (Rule, error) {
	switch def.Category {
	case CategoryStreak:
		return NewStreakRule(def.ID, int(def.Config.Target), StreakCorrectAnswers), nil

	case CategoryConsistency:
		// Consistency achievements always track study days, whatever the
		// catalog's StreakKind says.
		return NewStreakRule(def.ID, int(def.Config.Target), StreakStudyDays), nil

	case CategoryAccuracy:
		return NewAccuracyRule(def.ID, def.Config.Target, def.Config.Timeframe, def.Config.MinimumQuestions), nil

	case CategoryMilestone:
		return NewMilestoneRule(def.ID, int(def.Config.Target), milestoneQuantityFromID(def.ID)), nil

	case CategoryComparative:
		if def.Config.ComparativeKind == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingComparativeKind, def.ID)
		}
		return NewComparativeRule(def.ID, def.Config.ComparativeKind, def.Config.Target), nil

	default:
		return nil, fmt.Errorf("%w: %q (achievement %q)", ErrUnknownCategory, def.Category, def.ID)
	}
}

// milestoneQuantityFromID infers the counted quantity from the achievement
// id by substring: "quizzes" and "questions" select their counters, anything
// else counts correct answers. The catalog naming convention must respect
// this; see DESIGN.md for why it stays stringly-typed.
func milestoneQuantityFromID(id string) MilestoneQuantity {
	switch {
	case strings.Contains(id, "quizzes"):
		return MilestoneQuizzes
	case strings.Contains(id, "questions"):
		return MilestoneQuestions
	default:
		return MilestoneCorrectAnswers
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOOKUPS
// ══════════════════════════════════════════════════════════════════════════════

// AchievementByID returns the definition for an id.
func (r *Registry) AchievementByID(id string) (Definition, bool) {
	def, ok := r.definitions[id]
	return def, ok
}

// RuleByID returns the rule for an id.
func (r *Registry) RuleByID(id string) (Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// All returns every definition sorted ascending by sort order. The slice is
// a copy; callers may not mutate the catalog through it.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByCategory returns the definitions of one category in display order.
func (r *Registry) ByCategory(category Category) []Definition {
	var out []Definition
	for _, def := range r.ordered {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// ForEvent returns the definitions whose rule declares applicability to the
// event type. This is the dispatch table that lets a caller skip rules that
// cannot react to an event.
func (r *Registry) ForEvent(eventType string) []Definition {
	var out []Definition
	for _, def := range r.ordered {
		if r.rules[def.ID].AppliesToEvent(eventType) {
			out = append(out, def)
		}
	}
	return out
}

// Size returns the number of registered achievements.
func (r *Registry) Size() int {
	return len(r.ordered)
}
