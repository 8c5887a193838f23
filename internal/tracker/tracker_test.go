package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/example/wordtrack/internal/database"
	"github.com/example/wordtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTracker(t *testing.T, words int) (*Tracker, *database.SQLStore, *clock, []int64) {
	t.Helper()
	store, err := database.Connect(database.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ids := make([]int64, 0, words)
	for i := 0; i < words; i++ {
		w := &models.Word{Text: fmt.Sprintf("word%d", i), Translation: "t"}
		_, err := store.UpsertWord(context.Background(), w)
		require.NoError(t, err)
		ids = append(ids, w.ID)
	}

	c := &clock{now: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
	return New(store, WithClock(c.Now)), store, c, ids
}

func TestSessionProtocol(t *testing.T) {
	ctx := context.Background()
	tr, _, _, ids := newTestTracker(t, 1)

	_, err := tr.RecordReview(ctx, 1, ids[0], 5)
	assert.True(t, errors.Is(err, ErrNoOpenSession))
	_, err = tr.CloseSession(ctx, 1, 100)
	assert.True(t, errors.Is(err, ErrNoOpenSession))

	first, err := tr.StartSession(ctx, 1, "lesson 1")
	require.NoError(t, err)
	_, err = tr.StartSession(ctx, 1, "lesson 2")
	assert.True(t, errors.Is(err, ErrSessionAlreadyOpen))

	open, err := tr.OpenSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, open.ID)
	assert.Equal(t, "lesson 1", open.LessonReference)

	// another learner is independent
	_, err = tr.StartSession(ctx, 2, "")
	require.NoError(t, err)

	_, err = tr.CloseSession(ctx, 1, 50)
	require.NoError(t, err)
	_, err = tr.CloseSession(ctx, 1, 50)
	assert.True(t, errors.Is(err, ErrNoOpenSession))
}

func TestRecordReviewUnknownItem(t *testing.T) {
	ctx := context.Background()
	tr, store, _, ids := newTestTracker(t, 1)

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	_, err = tr.RecordReview(ctx, 1, ids[0]+99, 5)
	assert.True(t, errors.Is(err, ErrUnknownItem))

	open, err := store.GetOpenSession(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, open.WordsCovered)
	assert.Equal(t, 0, open.XPEarned)
}

func TestRecordReviewUpdatesMasteryAndSession(t *testing.T) {
	ctx := context.Background()
	tr, store, c, ids := newTestTracker(t, 2)

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)

	res, err := tr.RecordReview(ctx, 1, ids[0], 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.IntervalDays)
	assert.Equal(t, XPWordLearned, res.XPEarned)
	assert.Equal(t, models.MasteryLearning, res.Record.MasteryLevel)
	assert.Equal(t, models.AddDays(c.Now(), 1), res.Record.NextReviewDate)

	res, err = tr.RecordReview(ctx, 1, ids[0], 4)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Record.IntervalDays)
	assert.Equal(t, XPQuizCorrect, res.XPEarned)

	res, err = tr.RecordReview(ctx, 1, ids[1], 9)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.TimesCorrect)

	open, err := store.GetOpenSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[1]}, open.WordsCovered)
	assert.Equal(t, XPWordLearned+XPQuizCorrect+XPWordLearned, open.XPEarned)

	events, err := store.RecentReviews(ctx, 1, ids[1], 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].Quality)
}

func TestCloseSessionAwardsXPAcrossLevels(t *testing.T) {
	ctx := context.Background()
	tr, _, _, ids := newTestTracker(t, 26)

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	for _, id := range ids {
		_, err := tr.RecordReview(ctx, 1, id, 4)
		require.NoError(t, err)
	}

	res, err := tr.CloseSession(ctx, 1, 80)
	require.NoError(t, err)

	// 26 new words, then first_word, words_10 and quiz_first
	assert.Equal(t, 260, res.Session.XPEarned)
	var unlocked []string
	for _, a := range res.Unlocked {
		unlocked = append(unlocked, a.ID)
	}
	assert.ElementsMatch(t, []string{"first_word", "words_10", "quiz_first"}, unlocked)
	assert.Equal(t, 260+3*XPAchievement, res.XPAwarded)
	assert.Equal(t, 3, res.Progress.Level)
	assert.Equal(t, 410-100-150, res.Progress.CurrentXP)
	assert.Equal(t, 2, res.LevelsGained)
	assert.Equal(t, 1, res.Progress.CurrentStreak)
}

func TestCloseSessionBonuses(t *testing.T) {
	ctx := context.Background()
	tr, _, c, _ := newTestTracker(t, 0)

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	c.Advance(16 * time.Minute)
	res, err := tr.CloseSession(ctx, 1, 150)
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.Session.QuizScore)
	assert.True(t, res.DailyGoalMet)
	assert.Equal(t, XPQuizPerfect+XPDailyGoalMet, res.Session.XPEarned)

	// goal already met today, a second session earns no goal bonus
	_, err = tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	c.Advance(20 * time.Minute)
	res, err = tr.CloseSession(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, res.DailyGoalMet)
	assert.Equal(t, 0, res.Session.XPEarned)
}

func TestStreakAcrossSessions(t *testing.T) {
	ctx := context.Background()
	tr, _, c, _ := newTestTracker(t, 0)

	studyOn := func() int {
		_, err := tr.StartSession(ctx, 1, "")
		require.NoError(t, err)
		res, err := tr.CloseSession(ctx, 1, 0)
		require.NoError(t, err)
		return res.Progress.CurrentStreak
	}

	assert.Equal(t, 1, studyOn())
	assert.Equal(t, 1, studyOn())
	c.Advance(24 * time.Hour)
	assert.Equal(t, 2, studyOn())
	c.Advance(3 * 24 * time.Hour)
	assert.Equal(t, 1, studyOn())

	stats, err := tr.Progress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Progress.LongestStreak)
	assert.Equal(t, 4, stats.Aggregates.TotalSessions)
}

func TestSeventhDayStreakBonus(t *testing.T) {
	ctx := context.Background()
	tr, _, c, _ := newTestTracker(t, 0)

	var res *CloseResult
	for i := 0; i < 7; i++ {
		_, err := tr.StartSession(ctx, 1, "")
		require.NoError(t, err)
		res, err = tr.CloseSession(ctx, 1, 0)
		require.NoError(t, err)
		c.Advance(24 * time.Hour)
	}
	assert.Equal(t, 7, res.Progress.CurrentStreak)
	assert.Equal(t, XPStreakBonus7, res.Session.XPEarned)
}

// failingStore fails one write method inside transactions
type failingStore struct {
	*database.SQLStore
	failOn string
	err    error
}

type failingRepo struct {
	database.Repository
	failOn string
	err    error
}

func (r failingRepo) AppendReview(ctx context.Context, e *models.ReviewEvent) error {
	if r.failOn == "AppendReview" {
		return r.err
	}
	return r.Repository.AppendReview(ctx, e)
}

func (r failingRepo) UnlockAchievement(ctx context.Context, learnerID int64, id string, at time.Time) (bool, error) {
	if r.failOn == "UnlockAchievement" {
		return false, r.err
	}
	return r.Repository.UnlockAchievement(ctx, learnerID, id, at)
}

func (s *failingStore) InTx(ctx context.Context, fn func(database.Repository) error) error {
	return s.SQLStore.InTx(ctx, func(repo database.Repository) error {
		return fn(failingRepo{Repository: repo, failOn: s.failOn, err: s.err})
	})
}

func TestRecordReviewIsAtomic(t *testing.T) {
	ctx := context.Background()
	_, store, c, ids := newTestTracker(t, 1)
	boom := errors.New("disk full")
	tr := New(&failingStore{SQLStore: store, failOn: "AppendReview", err: boom}, WithClock(c.Now))

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	_, err = tr.RecordReview(ctx, 1, ids[0], 5)
	assert.True(t, errors.Is(err, boom))

	_, err = store.GetMastery(ctx, 1, ids[0])
	assert.True(t, errors.Is(err, database.ErrNotFound))
	open, err := store.GetOpenSession(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, open.WordsCovered)
	assert.Equal(t, 0, open.XPEarned)
}

func TestCloseSessionIsAtomic(t *testing.T) {
	ctx := context.Background()
	tr, store, c, ids := newTestTracker(t, 1)
	boom := errors.New("disk full")
	failing := New(&failingStore{SQLStore: store, failOn: "UnlockAchievement", err: boom}, WithClock(c.Now))

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	_, err = tr.RecordReview(ctx, 1, ids[0], 5)
	require.NoError(t, err)
	c.Advance(20 * time.Minute)

	// the first word and the first session both unlock achievements
	_, err = failing.CloseSession(ctx, 1, 100)
	assert.True(t, errors.Is(err, boom))

	open, err := store.GetOpenSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, XPWordLearned, open.XPEarned)
	p, err := store.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.CurrentXP)
	assert.Equal(t, 0, p.TotalXPEarned)
	assert.Equal(t, 0, p.CurrentStreak)
	assert.True(t, p.LastStudyDate.IsZero())
	unlocked, err := store.UnlockedAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	res, err := tr.CloseSession(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.CurrentStreak)
	assert.NotEmpty(t, res.Unlocked)
	_, err = store.GetOpenSession(ctx, 1)
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestCloseSessionClampsNaNScore(t *testing.T) {
	ctx := context.Background()
	tr, _, _, _ := newTestTracker(t, 0)

	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	res, err := tr.CloseSession(ctx, 1, math.NaN())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Session.QuizScore)
	assert.Equal(t, 0, res.Session.XPEarned)
}

func TestDailyGoalCountsOnlyTodaysMinutes(t *testing.T) {
	ctx := context.Background()
	tr, _, c, _ := newTestTracker(t, 0)
	c.now = time.Date(2024, 3, 5, 23, 50, 0, 0, time.UTC)

	// 20 minutes across midnight, 10 of them on the new day
	_, err := tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	c.Advance(20 * time.Minute)
	res, err := tr.CloseSession(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, res.DailyGoalMet)

	// the earlier session contributes its 10 minutes after midnight
	_, err = tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	c.Advance(5 * time.Minute)
	res, err = tr.CloseSession(ctx, 1, 0)
	require.NoError(t, err)
	assert.True(t, res.DailyGoalMet)
}

func TestQueueAndAchievements(t *testing.T) {
	ctx := context.Background()
	tr, _, _, ids := newTestTracker(t, 3)

	queue, err := tr.Queue(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, ids, queue)

	_, err = tr.StartSession(ctx, 1, "")
	require.NoError(t, err)
	_, err = tr.RecordReview(ctx, 1, ids[1], 5)
	require.NoError(t, err)

	// the reviewed word is due tomorrow and goes last
	queue, err = tr.Queue(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2], ids[1]}, queue)

	_, err = tr.CloseSession(ctx, 1, 0)
	require.NoError(t, err)

	all, err := tr.Achievements(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 13)
	unlocked := 0
	for _, a := range all {
		if a.Unlocked() {
			unlocked++
		}
	}
	assert.Equal(t, 2, unlocked)

	sessions, err := tr.RecentSessions(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].IsOpen())
}

func TestConcurrentLearners(t *testing.T) {
	ctx := context.Background()
	tr, _, _, ids := newTestTracker(t, 5)

	var wg sync.WaitGroup
	for learner := int64(1); learner <= 4; learner++ {
		wg.Add(1)
		go func(learner int64) {
			defer wg.Done()
			_, err := tr.StartSession(ctx, learner, "")
			assert.NoError(t, err)
			for _, id := range ids {
				_, err := tr.RecordReview(ctx, learner, id, 4)
				assert.NoError(t, err)
			}
			_, err = tr.CloseSession(ctx, learner, 90)
			assert.NoError(t, err)
		}(learner)
	}
	wg.Wait()

	for learner := int64(1); learner <= 4; learner++ {
		stats, err := tr.Progress(ctx, learner)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.Aggregates.WordsLearned)
	}
}
