package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
)

type fixedProgressRepo struct {
	records []achievement.Progress
}

func (r *fixedProgressRepo) Get(_ context.Context, userID, achievementID string) (achievement.Progress, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.AchievementID == achievementID {
			return rec, nil
		}
	}
	return achievement.Progress{}, shared.ErrProgressNotFound
}

func (r *fixedProgressRepo) GetAllForUser(_ context.Context, userID string) ([]achievement.Progress, error) {
	var out []achievement.Progress
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fixedProgressRepo) Upsert(_ context.Context, p achievement.Progress) error {
	r.records = append(r.records, p)
	return nil
}

func TestGetCatalog_ReturnsFullCatalogInOrder(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)
	handler := NewGetCatalogHandler(registry)

	dto, err := handler.Execute(GetCatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, registry.Size(), dto.Total)

	for i := 1; i < len(dto.Achievements); i++ {
		assert.LessOrEqual(t, dto.Achievements[i-1].SortOrder, dto.Achievements[i].SortOrder)
	}
}

func TestGetCatalog_FiltersByCategory(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)
	handler := NewGetCatalogHandler(registry)

	dto, err := handler.Execute(GetCatalogQuery{Category: achievement.CategoryMilestone})
	require.NoError(t, err)
	assert.NotEmpty(t, dto.Achievements)
	for _, a := range dto.Achievements {
		assert.Equal(t, "milestone", a.Category)
	}
}

func TestGetCatalog_RejectsUnknownCategory(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)
	handler := NewGetCatalogHandler(registry)

	_, err = handler.Execute(GetCatalogQuery{Category: achievement.Category("luck")})
	assert.Error(t, err)
}

func TestGetUserProgress_MergesCatalogAndRecords(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)

	earnedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fixedProgressRepo{records: []achievement.Progress{
		{UserID: "user-1", AchievementID: "streak_correct_5", Progress: 100, Achieved: true, AchievedAt: &earnedAt},
		{UserID: "user-1", AchievementID: "milestone_questions_100", Progress: 40},
		{UserID: "other", AchievementID: "streak_correct_10", Progress: 100, Achieved: true},
	}}

	handler := NewGetUserProgressHandler(registry, repo)
	dto, err := handler.Execute(context.Background(), GetUserProgressQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, registry.Size(), dto.TotalCount)
	assert.Equal(t, 1, dto.EarnedCount)

	byID := make(map[string]UserAchievementDTO)
	for _, a := range dto.Achievements {
		byID[a.ID] = a
	}

	assert.True(t, byID["streak_correct_5"].Achieved)
	require.NotNil(t, byID["streak_correct_5"].AchievedAt)
	assert.InDelta(t, 40, byID["milestone_questions_100"].Progress, 0.001)
	assert.False(t, byID["streak_correct_10"].Achieved, "other users' records must not leak")

	def, ok := registry.AchievementByID("streak_correct_5")
	require.True(t, ok)
	assert.Equal(t, def.Meta.Points, dto.TotalPoints)
}

func TestGetUserProgress_EarnedOnly(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)

	repo := &fixedProgressRepo{records: []achievement.Progress{
		{UserID: "user-1", AchievementID: "streak_correct_5", Progress: 100, Achieved: true},
		{UserID: "user-1", AchievementID: "milestone_questions_100", Progress: 40},
	}}

	handler := NewGetUserProgressHandler(registry, repo)
	dto, err := handler.Execute(context.Background(), GetUserProgressQuery{UserID: "user-1", EarnedOnly: true})
	require.NoError(t, err)

	require.Len(t, dto.Achievements, 1)
	assert.Equal(t, "streak_correct_5", dto.Achievements[0].ID)
}

func TestGetUserProgress_NoRecordsMeansZeroProgressCatalog(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)

	handler := NewGetUserProgressHandler(registry, &fixedProgressRepo{})
	dto, err := handler.Execute(context.Background(), GetUserProgressQuery{UserID: "new-user"})
	require.NoError(t, err)

	assert.Equal(t, registry.Size(), dto.TotalCount)
	assert.Zero(t, dto.EarnedCount)
	for _, a := range dto.Achievements {
		assert.Zero(t, a.Progress)
	}
}

func TestGetUserProgress_RequiresUserID(t *testing.T) {
	registry, err := achievement.NewRegistry()
	require.NoError(t, err)

	handler := NewGetUserProgressHandler(registry, &fixedProgressRepo{})
	_, err = handler.Execute(context.Background(), GetUserProgressQuery{})
	assert.Error(t, err)
}
