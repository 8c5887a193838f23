package leveling

import (
	"testing"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPForNextLevel(t *testing.T) {
	assert.Equal(t, 100, XPForNextLevel(1))
	assert.Equal(t, 150, XPForNextLevel(2))
	assert.Equal(t, 225, XPForNextLevel(3))
	assert.Equal(t, 338, XPForNextLevel(4))
	assert.Equal(t, 100, XPForNextLevel(0))
}

func TestAwardXPMultiLevel(t *testing.T) {
	p := models.NewLearnerProgress(1, 15, time.Now())

	gained := AwardXP(&p, 260)
	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 10, p.CurrentXP)
	assert.Equal(t, 260, p.TotalXPEarned)

	assert.Equal(t, 0, AwardXP(&p, 0))
	assert.Equal(t, 0, AwardXP(&p, -5))
	assert.Equal(t, 260, p.TotalXPEarned)
}

func TestAwardXPExactThreshold(t *testing.T) {
	p := models.NewLearnerProgress(1, 15, time.Now())
	AwardXP(&p, 99)
	assert.Equal(t, 1, p.Level)
	AwardXP(&p, 1)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0, p.CurrentXP)
}

func TestLevelInfoOf(t *testing.T) {
	info := LevelInfoOf(models.LearnerProgress{Level: 2, CurrentXP: 75, TotalXPEarned: 175})
	assert.Equal(t, 150, info.XPForNext)
	assert.Equal(t, 75, info.XPToNext)
	assert.InDelta(t, 50.0, info.Percent, 1e-9)
}

func TestConditions(t *testing.T) {
	agg := models.Aggregates{WordsLearned: 12, MasteredWords: 2, TotalSessions: 1, BestQuizScore: 90, StudyMinutes: 61, CurrentStreak: 3}

	assert.True(t, WordsLearned{10}.Met(agg))
	assert.False(t, WordsLearned{50}.Met(agg))
	assert.True(t, StreakDays{3}.Met(agg))
	assert.False(t, StreakDays{7}.Met(agg))
	assert.True(t, QuizScore{MinSessions: 1}.Met(agg))
	assert.False(t, QuizScore{MinBestScore: 100}.Met(agg))
	assert.False(t, QuizScore{}.Met(agg))
	assert.True(t, StudyTime{60}.Met(agg))
	assert.False(t, MasteredWords{150}.Met(agg))
}

func TestEvaluateSkipsUnlocked(t *testing.T) {
	engine := NewEngine(nil)
	require.Len(t, engine.Catalog(), 13)

	agg := models.Aggregates{WordsLearned: 1, TotalSessions: 1}
	newly := engine.Evaluate(nil, agg)
	var ids []string
	for _, d := range newly {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"first_word", "quiz_first"}, ids)

	unlocked := map[string]time.Time{"first_word": time.Now()}
	newly = engine.Evaluate(unlocked, agg)
	require.Len(t, newly, 1)
	assert.Equal(t, "quiz_first", newly[0].ID)
}

func TestView(t *testing.T) {
	engine := NewEngine([]Definition{
		{ID: "a", Name: "A", Category: models.CategoryWords, Condition: WordsLearned{1}},
		{ID: "b", Name: "B", Category: models.CategoryStreak, Condition: StreakDays{3}},
	})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	view := engine.View(map[string]time.Time{"b": at})
	require.Len(t, view, 2)
	assert.False(t, view[0].Unlocked())
	require.True(t, view[1].Unlocked())
	assert.True(t, view[1].UnlockedAt.Equal(at))
}
