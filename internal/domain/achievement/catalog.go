package achievement

// defaultCatalog enumerates the fixed achievement set. The catalog is not
// configurable at runtime: it is compiled in, validated when the registry is
// built, and shared read-only for the process lifetime.
//
// Naming convention: ids are <category>_<tag>_<name>. Milestone ids must
// contain "quizzes" or "questions" when they count those quantities, because
// the registry infers the counted quantity from the id.
func defaultCatalog() []Definition {
	return []Definition{
		// ── Correct-answer streaks ──────────────────────────────────────
		{
			ID:       "streak_correct_5",
			Type:     TypeInstant,
			Category: CategoryStreak,
			Config:   RuleConfig{Target: 5},
			Meta: Metadata{
				Title:       "Warming Up",
				Description: "Answer 5 questions correctly in a row",
				Badge:       "🔥",
				Confetti:    ConfettiBasic,
				Points:      25,
				SortOrder:   10,
			},
		},
		{
			ID:       "streak_correct_10",
			Type:     TypeInstant,
			Category: CategoryStreak,
			Config:   RuleConfig{Target: 10},
			Meta: Metadata{
				Title:       "On Fire",
				Description: "Answer 10 questions correctly in a row",
				Badge:       "🔥",
				Confetti:    ConfettiExcellent,
				Points:      75,
				SortOrder:   20,
			},
		},
		{
			ID:       "streak_correct_25",
			Type:     TypeInstant,
			Category: CategoryStreak,
			Config:   RuleConfig{Target: 25},
			Meta: Metadata{
				Title:       "Unstoppable",
				Description: "Answer 25 questions correctly in a row",
				Badge:       "⚡",
				Confetti:    ConfettiPerfect,
				Points:      250,
				SortOrder:   30,
			},
		},

		// ── Study-day consistency ───────────────────────────────────────
		{
			ID:       "consistency_days_3",
			Type:     TypeAccumulative,
			Category: CategoryConsistency,
			Config:   RuleConfig{Target: 3},
			Meta: Metadata{
				Title:       "Getting Started",
				Description: "Study 3 days in a row",
				Badge:       "📅",
				Confetti:    ConfettiBasic,
				Points:      30,
				SortOrder:   40,
			},
		},
		{
			ID:       "consistency_days_7",
			Type:     TypeAccumulative,
			Category: CategoryConsistency,
			Config:   RuleConfig{Target: 7},
			Meta: Metadata{
				Title:       "Week Warrior",
				Description: "Study 7 days in a row",
				Badge:       "🗓️",
				Confetti:    ConfettiExcellent,
				Points:      100,
				SortOrder:   50,
			},
		},
		{
			ID:       "consistency_days_30",
			Type:     TypeAccumulative,
			Category: CategoryConsistency,
			Config:   RuleConfig{Target: 30},
			Meta: Metadata{
				Title:       "Iron Will",
				Description: "Study 30 days in a row",
				Badge:       "💪",
				Confetti:    ConfettiPerfect,
				Points:      500,
				SortOrder:   60,
			},
		},

		// ── Accuracy ────────────────────────────────────────────────────
		{
			ID:       "accuracy_daily_sharpshooter",
			Type:     TypeDaily,
			Category: CategoryAccuracy,
			Config:   RuleConfig{Target: 90, Timeframe: TimeframeDaily, MinimumQuestions: 5},
			Meta: Metadata{
				Title:       "Sharpshooter",
				Description: "Score a 90% daily average over at least 5 questions",
				Badge:       "🎯",
				Confetti:    ConfettiExcellent,
				Points:      80,
				Repeatable:  true,
				SortOrder:   70,
			},
		},
		{
			ID:       "accuracy_session_perfect",
			Type:     TypeInstant,
			Category: CategoryAccuracy,
			Config:   RuleConfig{Target: 100, Timeframe: TimeframeSession, MinimumQuestions: 5},
			Meta: Metadata{
				Title:       "Flawless",
				Description: "Finish a session of 5+ questions without a single mistake",
				Badge:       "💯",
				Confetti:    ConfettiPerfect,
				Points:      120,
				Repeatable:  true,
				SortOrder:   80,
			},
		},
		{
			ID:       "accuracy_overall_85",
			Type:     TypeAccumulative,
			Category: CategoryAccuracy,
			Config:   RuleConfig{Target: 85, Timeframe: TimeframeAllTime, MinimumQuestions: 20},
			Meta: Metadata{
				Title:       "Precision Scholar",
				Description: "Keep an 85% lifetime average over at least 20 questions",
				Badge:       "🎓",
				Confetti:    ConfettiExcellent,
				Points:      150,
				SortOrder:   90,
			},
		},

		// ── Milestones ──────────────────────────────────────────────────
		{
			ID:       "milestone_quizzes_10",
			Type:     TypeAccumulative,
			Category: CategoryMilestone,
			Config:   RuleConfig{Target: 10},
			Meta: Metadata{
				Title:       "Quiz Regular",
				Description: "Complete 10 quizzes",
				Badge:       "📝",
				Confetti:    ConfettiBasic,
				Points:      40,
				SortOrder:   100,
			},
		},
		{
			ID:       "milestone_quizzes_50",
			Type:     TypeAccumulative,
			Category: CategoryMilestone,
			Config:   RuleConfig{Target: 50},
			Meta: Metadata{
				Title:       "Quiz Devotee",
				Description: "Complete 50 quizzes",
				Badge:       "📚",
				Confetti:    ConfettiExcellent,
				Points:      150,
				SortOrder:   110,
			},
		},
		{
			ID:       "milestone_questions_100",
			Type:     TypeAccumulative,
			Category: CategoryMilestone,
			Config:   RuleConfig{Target: 100},
			Meta: Metadata{
				Title:       "Century",
				Description: "Answer 100 questions",
				Badge:       "💬",
				Confetti:    ConfettiBasic,
				Points:      50,
				SortOrder:   120,
			},
		},
		{
			ID:       "milestone_questions_1000",
			Type:     TypeAccumulative,
			Category: CategoryMilestone,
			Config:   RuleConfig{Target: 1000},
			Meta: Metadata{
				Title:       "Question Machine",
				Description: "Answer 1000 questions",
				Badge:       "🤖",
				Confetti:    ConfettiPerfect,
				Points:      300,
				SortOrder:   130,
			},
		},
		{
			ID:       "milestone_correct_250",
			Type:     TypeAccumulative,
			Category: CategoryMilestone,
			Config:   RuleConfig{Target: 250},
			Meta: Metadata{
				Title:       "Right Answer Machine",
				Description: "Get 250 answers right",
				Badge:       "✅",
				Confetti:    ConfettiExcellent,
				Points:      120,
				SortOrder:   140,
			},
		},

		// ── Comparative ─────────────────────────────────────────────────
		{
			ID:       "comparative_daily_above_average",
			Type:     TypeDaily,
			Category: CategoryComparative,
			Config:   RuleConfig{ComparativeKind: ComparativeAboveDailyAverage},
			Meta: Metadata{
				Title:       "Better Than Most",
				Description: "Beat today's average score",
				Badge:       "📈",
				Confetti:    ConfettiBasic,
				Points:      30,
				Repeatable:  true,
				SortOrder:   150,
			},
		},
		{
			ID:       "comparative_daily_best",
			Type:     TypeDaily,
			Category: CategoryComparative,
			Config:   RuleConfig{ComparativeKind: ComparativeBestOfToday},
			Meta: Metadata{
				Title:       "Top of the Day",
				Description: "Post today's best score",
				Badge:       "🥇",
				Confetti:    ConfettiPerfect,
				Points:      200,
				Repeatable:  true,
				SortOrder:   160,
			},
		},
		{
			ID:       "comparative_daily_podium",
			Type:     TypeDaily,
			Category: CategoryComparative,
			Config:   RuleConfig{ComparativeKind: ComparativeDailyRankTop3},
			Meta: Metadata{
				Title:       "Daily Podium",
				Description: "Finish the day in the top 3",
				Badge:       "🏆",
				Confetti:    ConfettiExcellent,
				Points:      100,
				Repeatable:  true,
				SortOrder:   170,
			},
		},
		{
			ID:       "comparative_weekly_podium",
			Type:     TypeWeekly,
			Category: CategoryComparative,
			Config:   RuleConfig{ComparativeKind: ComparativeWeeklyRankTop3},
			Meta: Metadata{
				Title:       "Weekly Podium",
				Description: "Finish the week in the top 3",
				Badge:       "🏅",
				Confetti:    ConfettiExcellent,
				Points:      180,
				Repeatable:  true,
				SortOrder:   180,
			},
		},
		{
			ID:       "comparative_top_percentile",
			Type:     TypeInstant,
			Category: CategoryComparative,
			Config:   RuleConfig{Target: 90, ComparativeKind: ComparativeTopPercentile},
			Meta: Metadata{
				Title:       "Elite",
				Description: "Reach the 90th percentile of all players",
				Badge:       "👑",
				Confetti:    ConfettiPerfect,
				Points:      250,
				SortOrder:   190,
			},
		},
	}
}
