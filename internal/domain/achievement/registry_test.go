package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuildsDefaultCatalog(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, len(defaultCatalog()), registry.Size())

	// Every definition must have a matching rule that answers to its id.
	for _, def := range registry.All() {
		rule, ok := registry.RuleByID(def.ID)
		require.True(t, ok, "no rule for %s", def.ID)
		assert.Equal(t, def.ID, rule.AchievementID())
	}
}

func TestNewRegistry_AllSortedBySortOrder(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	all := registry.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Meta.SortOrder, all[i].Meta.SortOrder)
	}
}

func TestNewRegistryWithCatalog_RejectsMalformedID(t *testing.T) {
	_, err := NewRegistryWithCatalog([]Definition{
		{ID: "Bad_ID", Type: TypeInstant, Category: CategoryStreak, Config: RuleConfig{Target: 5}},
	})
	assert.ErrorIs(t, err, ErrInvalidAchievementID)
}

func TestNewRegistryWithCatalog_RejectsDuplicateID(t *testing.T) {
	def := Definition{ID: "streak_correct_5", Type: TypeInstant, Category: CategoryStreak, Config: RuleConfig{Target: 5}}
	_, err := NewRegistryWithCatalog([]Definition{def, def})
	assert.ErrorIs(t, err, ErrDuplicateAchievementID)
}

func TestNewRegistryWithCatalog_RejectsUnknownCategory(t *testing.T) {
	_, err := NewRegistryWithCatalog([]Definition{
		{ID: "luck_daily_coin", Type: TypeDaily, Category: Category("luck")},
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewRegistryWithCatalog_ComparativeRequiresKind(t *testing.T) {
	_, err := NewRegistryWithCatalog([]Definition{
		{ID: "comparative_daily_podium", Type: TypeDaily, Category: CategoryComparative},
	})
	assert.ErrorIs(t, err, ErrMissingComparativeKind)
}

func TestMilestoneQuantityFromID(t *testing.T) {
	assert.Equal(t, MilestoneQuizzes, milestoneQuantityFromID("milestone_quizzes_10"))
	assert.Equal(t, MilestoneQuestions, milestoneQuantityFromID("milestone_questions_100"))
	assert.Equal(t, MilestoneCorrectAnswers, milestoneQuantityFromID("milestone_correct_250"))
}

func TestRegistry_ConsistencyAlwaysTracksStudyDays(t *testing.T) {
	registry, err := NewRegistryWithCatalog([]Definition{
		{
			ID:       "consistency_days_3",
			Type:     TypeAccumulative,
			Category: CategoryConsistency,
			// A contradictory kind in the config must not win.
			Config: RuleConfig{Target: 3, StreakKind: StreakCorrectAnswers},
		},
	})
	require.NoError(t, err)

	rule, ok := registry.RuleByID("consistency_days_3")
	require.True(t, ok)

	ctx := Context{Stats: UserStatistics{CurrentStreak: 50, ConsecutiveStudyDays: 3}}
	result, err := rule.Evaluate(ctx, 0)
	require.NoError(t, err)
	assert.True(t, result.Achieved)
	assert.Equal(t, "study_days", result.Metadata["streak_kind"])
}

func TestRegistry_ForEventDispatch(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	// daily_activity only concerns study-day streaks.
	for _, def := range registry.ForEvent(EventDailyActivity) {
		assert.Equal(t, CategoryConsistency, def.Category)
	}

	// quiz_session_completed only concerns comparative achievements.
	for _, def := range registry.ForEvent(EventQuizSessionCompleted) {
		assert.Equal(t, CategoryComparative, def.Category)
	}

	// quiz_completed reaches every category.
	categories := map[Category]bool{}
	for _, def := range registry.ForEvent(EventQuizCompleted) {
		categories[def.Category] = true
	}
	assert.Len(t, categories, 5)

	assert.Empty(t, registry.ForEvent("profile_updated"))
}

func TestRegistry_ByCategory(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	streaks := registry.ByCategory(CategoryStreak)
	assert.NotEmpty(t, streaks)
	for _, def := range streaks {
		assert.Equal(t, CategoryStreak, def.Category)
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	all := registry.All()
	original := all[0].ID
	all[0].ID = "tampered"

	fresh := registry.All()
	assert.Equal(t, original, fresh[0].ID)
}
