// Package achievement contains the achievement rule-evaluation engine: the
// static catalog of achievement definitions, one rule implementation per
// category, and the registry that wires them together. The package is pure
// computation - no I/O, no shared mutable state - so a single registry can be
// shared across any number of concurrent evaluations.
package achievement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS & ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Type governs the external cadence at which an achievement's progress resets.
// The rules themselves never evaluate it.
type Type string

const (
	TypeInstant      Type = "instant"
	TypeAccumulative Type = "accumulative"
	TypeDaily        Type = "daily"
	TypeWeekly       Type = "weekly"
)

// IsValid checks that the type belongs to the closed set.
func (t Type) IsValid() bool {
	switch t {
	case TypeInstant, TypeAccumulative, TypeDaily, TypeWeekly:
		return true
	default:
		return false
	}
}

// Category selects which rule family evaluates the achievement.
type Category string

const (
	CategoryStreak      Category = "streak"
	CategoryAccuracy    Category = "accuracy"
	CategoryConsistency Category = "consistency"
	CategoryMilestone   Category = "milestone"
	CategoryComparative Category = "comparative"
)

// IsValid checks that the category belongs to the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryStreak, CategoryAccuracy, CategoryConsistency, CategoryMilestone, CategoryComparative:
		return true
	default:
		return false
	}
}

// ConfettiTier is a presentation-layer intensity level carried as metadata.
type ConfettiTier string

const (
	ConfettiBasic     ConfettiTier = "basic"
	ConfettiExcellent ConfettiTier = "excellent"
	ConfettiPerfect   ConfettiTier = "perfect"
)

// StreakKind selects which counter a streak rule reads.
type StreakKind string

const (
	StreakCorrectAnswers StreakKind = "correct_answers"
	StreakStudyDays      StreakKind = "study_days"
)

// Timeframe selects the statistics window an accuracy rule reads.
type Timeframe string

const (
	TimeframeSession Timeframe = "session"
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeAllTime Timeframe = "all_time"
)

// ComparativeKind selects the comparison a comparative rule performs.
type ComparativeKind string

const (
	ComparativeAboveGlobalAverage ComparativeKind = "above_global_average"
	ComparativeAboveDailyAverage  ComparativeKind = "above_daily_average"
	ComparativeAboveWeeklyAverage ComparativeKind = "above_weekly_average"
	ComparativeBestOfToday        ComparativeKind = "best_of_today"
	ComparativeBestOfWeek         ComparativeKind = "best_of_week"
	ComparativeTopPercentile      ComparativeKind = "top_percentile"
	ComparativeDailyRankTop3      ComparativeKind = "daily_rank_top_3"
	ComparativeWeeklyRankTop3     ComparativeKind = "weekly_rank_top_3"
)

// MilestoneQuantity selects which aggregate counter a milestone rule reads.
type MilestoneQuantity string

const (
	MilestoneQuizzes        MilestoneQuantity = "quizzes"
	MilestoneQuestions      MilestoneQuantity = "questions"
	MilestoneCorrectAnswers MilestoneQuantity = "correct_answers"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULE CONFIG & METADATA
// ══════════════════════════════════════════════════════════════════════════════

// RuleConfig holds the target value plus category-specific parameters.
// Fields irrelevant to a category are left zero.
type RuleConfig struct {
	// Target is the threshold the rule compares against: a streak length,
	// an accuracy percentage, a milestone count, or a percentile.
	Target float64

	// Timeframe is the statistics window for accuracy rules (default all_time).
	Timeframe Timeframe

	// MinimumQuestions is the accuracy gate threshold (default 5).
	MinimumQuestions int

	// StreakKind is the streak counter for streak rules. Consistency
	// achievements always use study_days regardless of this field.
	StreakKind StreakKind

	// ComparativeKind is required for comparative achievements; the registry
	// refuses to build without it.
	ComparativeKind ComparativeKind
}

// Metadata holds the display attributes of an achievement. It is never read
// by the rules - it travels with the definition for listing collaborators and
// for the notification layer.
type Metadata struct {
	Title       string
	Description string
	Badge       string
	Confetti    ConfettiTier
	Points      int
	Repeatable  bool

	// SortOrder gives the stable display order; ascending = higher priority.
	SortOrder int
}

// ══════════════════════════════════════════════════════════════════════════════
// DEFINITION
// ══════════════════════════════════════════════════════════════════════════════

// idPattern is the required achievement id format. The first underscore
// segment is the category tag and the second is a type tag, both derivable
// from the id rather than independently stored.
var idPattern = regexp.MustCompile(`^[a-z]+(_[a-z0-9]+)*$`)

var (
	// ErrInvalidAchievementID - id does not match the required format.
	ErrInvalidAchievementID = shared.NewDomainError("achievement", "Validate", shared.ErrInvalidFormat,
		"achievement id must be lowercase snake_case")

	// ErrInvalidAchievementType - type is outside the closed set.
	ErrInvalidAchievementType = shared.NewDomainError("achievement", "Validate", shared.ErrInvalidInput,
		"invalid achievement type")

	// ErrInvalidAchievementCategory - category is outside the closed set.
	ErrInvalidAchievementCategory = shared.NewDomainError("achievement", "Validate", shared.ErrInvalidInput,
		"invalid achievement category")
)

// Definition is the static, immutable metadata describing one achievement.
// Definitions are created once at process start and never mutated.
type Definition struct {
	ID       string
	Type     Type
	Category Category
	Config   RuleConfig
	Meta     Metadata
}

// NewDefinition creates a Definition, validating the id format and the
// type/category enums. A failed validation here indicates a catalog bug.
func NewDefinition(id string, typ Type, category Category, config RuleConfig, meta Metadata) (Definition, error) {
	if !idPattern.MatchString(id) {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidAchievementID, id)
	}
	if !typ.IsValid() {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidAchievementType, typ)
	}
	if !category.IsValid() {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidAchievementCategory, category)
	}

	return Definition{
		ID:       id,
		Type:     typ,
		Category: category,
		Config:   config,
		Meta:     meta,
	}, nil
}

// CategoryTag returns the first underscore-delimited segment of the id.
func (d Definition) CategoryTag() string {
	return strings.SplitN(d.ID, "_", 2)[0]
}

// TypeTag returns the second underscore-delimited segment of the id, or ""
// when the id has a single segment.
func (d Definition) TypeTag() string {
	parts := strings.SplitN(d.ID, "_", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// String returns a compact representation for logging.
func (d Definition) String() string {
	return fmt.Sprintf("Definition{ID: %s, Category: %s, Target: %g}", d.ID, d.Category, d.Config.Target)
}
