package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefinition_Valid(t *testing.T) {
	def, err := NewDefinition(
		"streak_correct_5",
		TypeInstant,
		CategoryStreak,
		RuleConfig{Target: 5},
		Metadata{Title: "Warming Up", Points: 25},
	)

	assert.NoError(t, err)
	assert.Equal(t, "streak_correct_5", def.ID)
	assert.Equal(t, CategoryStreak, def.Category)
	assert.Equal(t, "streak", def.CategoryTag())
	assert.Equal(t, "correct", def.TypeTag())
}

func TestNewDefinition_RejectsMalformedIDs(t *testing.T) {
	bad := []string{
		"",
		"Streak_Correct_5",
		"_streak_correct",
		"streak__correct",
		"streak-correct-5",
		"5_streak",
		"streak_correct_",
	}

	for _, id := range bad {
		_, err := NewDefinition(id, TypeInstant, CategoryStreak, RuleConfig{Target: 5}, Metadata{})
		assert.ErrorIs(t, err, ErrInvalidAchievementID, "id %q should be rejected", id)
	}
}

func TestNewDefinition_AcceptsDigitsInLaterSegments(t *testing.T) {
	_, err := NewDefinition("milestone_questions_100", TypeAccumulative, CategoryMilestone,
		RuleConfig{Target: 100}, Metadata{})
	assert.NoError(t, err)
}

func TestNewDefinition_RejectsUnknownType(t *testing.T) {
	_, err := NewDefinition("streak_correct_5", Type("eternal"), CategoryStreak,
		RuleConfig{Target: 5}, Metadata{})
	assert.ErrorIs(t, err, ErrInvalidAchievementType)
}

func TestNewDefinition_RejectsUnknownCategory(t *testing.T) {
	_, err := NewDefinition("streak_correct_5", TypeInstant, Category("luck"),
		RuleConfig{Target: 5}, Metadata{})
	assert.ErrorIs(t, err, ErrInvalidAchievementCategory)
}
