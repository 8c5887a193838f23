package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/example/wordtrack/internal/ai"
	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/internal/quiz"
	"github.com/example/wordtrack/internal/spaced_repetition"
	"github.com/example/wordtrack/internal/tracker"
	"github.com/example/wordtrack/pkg/models"
)

// reply is the text and optional keyboard sent back to the learner
type reply struct {
	text    string
	buttons [][]MenuButton
}

const helpText = `📖 Commands

/study [lesson] - start a study session
/next - next word to review
/answer <text> - answer the current question (or just type it)
/grade <word id> <0-5> - grade a word yourself
/finish [score] - close the session
/queue - words waiting for review
/stats - level, streak and totals
/achievements - earned and locked achievements
/difficulty - recommended quiz difficulty
/example <word id> - example sentence for a word
/menu - main menu`

// handleCommand runs a bot command for the learner and returns the reply
func (b *Bot) handleCommand(ctx context.Context, learnerID int64, command, args string) reply {
	args = strings.TrimSpace(args)
	switch command {
	case "start", "menu":
		return reply{text: "Welcome to WordTrack! 🎓\nChoose an option:", buttons: mainMenuButtons()}
	case "help":
		return reply{text: helpText}
	case "study":
		return b.handleStudy(ctx, learnerID, args)
	case "next":
		return b.nextQuestion(ctx, learnerID, "")
	case "answer":
		return b.handleAnswer(ctx, learnerID, args)
	case "grade":
		return b.handleGrade(ctx, learnerID, args)
	case "finish":
		return b.handleFinish(ctx, learnerID, args)
	case "queue":
		return b.handleQueue(ctx, learnerID)
	case "stats":
		return b.handleStats(ctx, learnerID)
	case "achievements":
		return b.handleAchievements(ctx, learnerID)
	case "difficulty":
		return b.handleDifficulty(ctx, learnerID)
	case "example":
		return b.handleExample(ctx, learnerID, args)
	}
	return reply{text: "Unknown command. Use /help to see what I can do.", buttons: mainMenuButtons()}
}

// handleText treats plain text as the answer to the pending question
func (b *Bot) handleText(ctx context.Context, learnerID int64, text string) reply {
	if b.pendingQuestion(learnerID) != nil {
		return b.handleAnswer(ctx, learnerID, text)
	}
	return reply{text: "I don't understand. Use /menu to show the main menu.", buttons: mainMenuButtons()}
}

func (b *Bot) handleStudy(ctx context.Context, learnerID int64, lesson string) reply {
	_, err := b.tracker.StartSession(ctx, learnerID, lesson)
	switch {
	case errors.Is(err, tracker.ErrSessionAlreadyOpen):
		return b.nextQuestion(ctx, learnerID, "You already have an open session, let's continue.\n\n")
	case err != nil:
		return b.failure(learnerID, "start the session", err)
	}

	b.mu.Lock()
	b.state[learnerID] = &studyState{}
	b.mu.Unlock()
	return b.nextQuestion(ctx, learnerID, "Session started! 📚\n\n")
}

// nextQuestion picks the first queued word not yet covered in the session
func (b *Bot) nextQuestion(ctx context.Context, learnerID int64, prefix string) reply {
	session, err := b.tracker.OpenSession(ctx, learnerID)
	if errors.Is(err, tracker.ErrNoOpenSession) {
		return reply{text: prefix + "Start a session with /study first.", buttons: mainMenuButtons()}
	} else if err != nil {
		return b.failure(learnerID, "load the session", err)
	}

	ids, err := b.tracker.Queue(ctx, learnerID, b.config.QueueLimit+len(session.WordsCovered))
	if err != nil && !errors.Is(err, spaced_repetition.ErrEmptyQueue) {
		return b.failure(learnerID, "build the review queue", err)
	}
	var pending []int64
	for _, id := range ids {
		if !session.Covers(id) {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return reply{
			text:    prefix + "Nothing left to review. 🎉 Use /finish to close the session.",
			buttons: [][]MenuButton{{{Text: "🏁 Finish Session", CallbackData: "finish"}}},
		}
	}

	word, err := b.words.GetWord(ctx, pending[0])
	if err != nil {
		return b.failure(learnerID, "load the word", err)
	}
	var pool []models.Word
	for _, id := range pending[1:] {
		if w, err := b.words.GetWord(ctx, id); err == nil {
			pool = append(pool, *w)
		}
	}

	difficulty, err := b.selector.ForItem(ctx, learnerID, word.ID)
	if err != nil {
		b.logger.Warn("difficulty unavailable, using normal",
			slog.Int64(logging.FieldLearnerID, learnerID),
			slog.Any("error", err))
	}

	b.mu.Lock()
	q := quiz.NewQuestion(*word, pool, difficulty, b.rnd)
	st := b.state[learnerID]
	if st == nil {
		st = &studyState{}
		b.state[learnerID] = st
	}
	st.question = &q
	b.mu.Unlock()

	return questionReply(prefix, q)
}

func questionReply(prefix string, q quiz.Question) reply {
	var sb strings.Builder
	sb.WriteString(prefix)
	fmt.Fprintf(&sb, "Translate: %s", q.Word.Text)
	if q.Word.Pronunciation != "" {
		fmt.Fprintf(&sb, " [%s]", q.Word.Pronunciation)
	}
	if q.Type == quiz.TextInput {
		sb.WriteString("\n\nType your answer.")
		return reply{text: sb.String()}
	}

	var row []MenuButton
	for i, opt := range q.Options {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, opt)
		row = append(row, MenuButton{Text: strconv.Itoa(i + 1), CallbackData: "answer_" + strconv.Itoa(i+1)})
	}
	return reply{text: sb.String(), buttons: [][]MenuButton{row}}
}

func (b *Bot) pendingQuestion(learnerID int64) *quiz.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st := b.state[learnerID]; st != nil {
		return st.question
	}
	return nil
}

// takeQuestion removes the pending question so only one answer is graded
func (b *Bot) takeQuestion(learnerID int64) *quiz.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.state[learnerID]
	if st == nil {
		return nil
	}
	q := st.question
	st.question = nil
	return q
}

// restoreQuestion puts q back after a failed save unless a new question was asked
func (b *Bot) restoreQuestion(learnerID int64, q *quiz.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st := b.state[learnerID]; st != nil && st.question == nil {
		st.question = q
	}
}

func (b *Bot) handleAnswer(ctx context.Context, learnerID int64, answer string) reply {
	q := b.takeQuestion(learnerID)
	if q == nil {
		return reply{text: "No question pending. Use /next to get one."}
	}

	var quality int
	if q.Type == quiz.MultipleChoice {
		quality = b.config.ChoiceWrongQuality
		if q.Check(answer) {
			quality = b.config.ChoiceCorrectQuality
		}
	} else {
		var err error
		if quality, err = b.grader.Grade(ctx, q.Word, answer); err != nil {
			b.logger.Warn("grader failed, falling back to exact match",
				slog.Int64(logging.FieldLearnerID, learnerID),
				slog.Int64(logging.FieldItemID, q.Word.ID),
				slog.Any("error", err))
			quality, _ = ai.ExactGrader{}.Grade(ctx, q.Word, answer)
		}
	}

	res, err := b.tracker.RecordReview(ctx, learnerID, q.Word.ID, quality)
	if errors.Is(err, tracker.ErrNoOpenSession) {
		b.clearState(learnerID)
		return reply{text: "Your session is closed. Start a new one with /study.", buttons: mainMenuButtons()}
	} else if err != nil {
		b.restoreQuestion(learnerID, q)
		return b.failure(learnerID, "save your answer", err)
	}

	correct := quality >= models.PassingQuality
	b.mu.Lock()
	if st := b.state[learnerID]; st != nil {
		st.answered++
		if correct {
			st.correct++
		}
	}
	b.mu.Unlock()

	var sb strings.Builder
	if correct {
		sb.WriteString("✅ Correct!")
	} else {
		fmt.Fprintf(&sb, "❌ The answer is: %s", q.Word.Translation)
	}
	fmt.Fprintf(&sb, "\nNext review in %s", days(res.Record.IntervalDays))
	if res.XPEarned > 0 {
		fmt.Fprintf(&sb, " (+%d XP)", res.XPEarned)
	}
	if res.Mastered {
		sb.WriteString("\n🥇 Word mastered!")
	}
	sb.WriteString("\n\n")
	return b.nextQuestion(ctx, learnerID, sb.String())
}

func (b *Bot) handleGrade(ctx context.Context, learnerID int64, args string) reply {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return reply{text: "Usage: /grade <word id> <quality 0-5>"}
	}
	itemID, err1 := strconv.ParseInt(fields[0], 10, 64)
	quality, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return reply{text: "Usage: /grade <word id> <quality 0-5>"}
	}

	res, err := b.tracker.RecordReview(ctx, learnerID, itemID, quality)
	switch {
	case errors.Is(err, tracker.ErrNoOpenSession):
		return reply{text: "Start a session with /study first."}
	case errors.Is(err, tracker.ErrUnknownItem):
		return reply{text: fmt.Sprintf("There is no word with id %d.", itemID)}
	case err != nil:
		return b.failure(learnerID, "save the grade", err)
	}
	return reply{text: fmt.Sprintf("Saved. Next review in %s, level %s (+%d XP).",
		days(res.Record.IntervalDays), res.Record.MasteryLevel, res.XPEarned)}
}

func (b *Bot) handleFinish(ctx context.Context, learnerID int64, args string) reply {
	b.mu.Lock()
	score := 0.0
	if st := b.state[learnerID]; st != nil && st.answered > 0 {
		score = float64(st.correct) / float64(st.answered) * 100
	}
	b.mu.Unlock()
	if args != "" {
		v, err := strconv.ParseFloat(args, 64)
		if err != nil {
			return reply{text: "Usage: /finish [score 0-100]"}
		}
		score = v
	}

	res, err := b.tracker.CloseSession(ctx, learnerID, score)
	if errors.Is(err, tracker.ErrNoOpenSession) {
		return reply{text: "There is no open session.", buttons: mainMenuButtons()}
	} else if err != nil {
		return b.failure(learnerID, "close the session", err)
	}
	b.clearState(learnerID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 Session complete!\n\nWords: %d\nScore: %.0f%%\nXP: +%d\nStreak: %d 🔥\nLevel: %d",
		len(res.Session.WordsCovered), res.Session.QuizScore, res.XPAwarded,
		res.Progress.CurrentStreak, res.Progress.Level)
	if res.LevelsGained > 0 {
		sb.WriteString(" ⬆️ level up!")
	}
	if res.DailyGoalMet {
		sb.WriteString("\n🎯 Daily goal reached!")
	}
	for _, a := range res.Unlocked {
		fmt.Fprintf(&sb, "\n%s Achievement unlocked: %s", a.Icon, a.Name)
	}
	return reply{text: sb.String(), buttons: mainMenuButtons()}
}

func (b *Bot) handleQueue(ctx context.Context, learnerID int64) reply {
	ids, err := b.tracker.Queue(ctx, learnerID, b.config.QueueLimit)
	if errors.Is(err, spaced_repetition.ErrEmptyQueue) {
		return reply{text: "Nothing to review right now. 🎉"}
	} else if err != nil {
		return b.failure(learnerID, "build the review queue", err)
	}

	var sb strings.Builder
	sb.WriteString("📋 Up next:")
	for i, id := range ids {
		w, err := b.words.GetWord(ctx, id)
		if err != nil {
			return b.failure(learnerID, "load the word", err)
		}
		fmt.Fprintf(&sb, "\n%d. %s (#%d)", i+1, w.Text, w.ID)
	}
	return reply{text: sb.String(), buttons: [][]MenuButton{{{Text: "🎯 Start Learning", CallbackData: "start_learning"}}}}
}

func (b *Bot) handleStats(ctx context.Context, learnerID int64) reply {
	stats, err := b.tracker.Progress(ctx, learnerID)
	if err != nil {
		return b.failure(learnerID, "load your statistics", err)
	}
	p, lvl, agg := stats.Progress, stats.Level, stats.Aggregates
	text := fmt.Sprintf("📊 Statistics\n\n"+
		"Level %d: %d/%d XP (%.0f%%)\n"+
		"Total XP: %d\n"+
		"Streak: %d days (best %d)\n"+
		"Words learned: %d, mastered: %d\n"+
		"Due today: %d\n"+
		"Sessions: %d, study time: %d min",
		lvl.Level, lvl.CurrentXP, lvl.XPForNext, lvl.Percent,
		p.TotalXPEarned,
		p.CurrentStreak, p.LongestStreak,
		agg.WordsLearned, agg.MasteredWords,
		stats.DueToday,
		agg.TotalSessions, agg.StudyMinutes)
	return reply{text: text, buttons: mainMenuButtons()}
}

func (b *Bot) handleAchievements(ctx context.Context, learnerID int64) reply {
	all, err := b.tracker.Achievements(ctx, learnerID)
	if err != nil {
		return b.failure(learnerID, "load achievements", err)
	}
	var sb strings.Builder
	sb.WriteString("🏆 Achievements")
	for _, a := range all {
		mark := "🔒"
		if a.Unlocked() {
			mark = a.Icon
		}
		fmt.Fprintf(&sb, "\n%s %s - %s", mark, a.Name, a.Description)
	}
	return reply{text: sb.String()}
}

func (b *Bot) handleDifficulty(ctx context.Context, learnerID int64) reply {
	d, err := b.selector.ForLearner(ctx, learnerID)
	if err != nil {
		return b.failure(learnerID, "read your history", err)
	}
	return reply{text: fmt.Sprintf("Recommended difficulty: %s", d)}
}

func (b *Bot) handleExample(ctx context.Context, learnerID int64, args string) reply {
	if b.examples == nil {
		return reply{text: "Example sentences need an OpenAI key."}
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return reply{text: "Usage: /example <word id>"}
	}
	w, err := b.words.GetWord(ctx, id)
	if err != nil {
		return reply{text: fmt.Sprintf("There is no word with id %d.", id)}
	}
	example, err := b.examples.GenerateExample(ctx, *w)
	if err != nil {
		return b.failure(learnerID, "generate an example", err)
	}
	return reply{text: fmt.Sprintf("%s - %s\n\n%s", w.Text, w.Translation, example)}
}

func (b *Bot) clearState(learnerID int64) {
	b.mu.Lock()
	delete(b.state, learnerID)
	b.mu.Unlock()
}

// failure logs err and returns a generic apology
func (b *Bot) failure(learnerID int64, action string, err error) reply {
	b.logger.Error("failed to "+action,
		slog.Int64(logging.FieldLearnerID, learnerID),
		slog.Any("error", err))
	return reply{text: fmt.Sprintf("Sorry, I couldn't %s. Please try again later.", action)}
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
