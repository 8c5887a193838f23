package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/wordtrack/internal/ai"
	"github.com/example/wordtrack/internal/database"
	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/internal/quiz"
	"github.com/example/wordtrack/internal/tracker"
	"github.com/example/wordtrack/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot sends through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ExampleWriter writes example sentences for a word
type ExampleWriter interface {
	GenerateExample(ctx context.Context, word models.Word) (string, error)
}

// studyState is the quiz in progress for one learner
type studyState struct {
	question *quiz.Question
	answered int
	correct  int
}

// Bot represents the Telegram bot application
type Bot struct {
	api      sender
	token    string
	tracker  *tracker.Tracker
	words    database.Repository
	selector *quiz.Selector
	grader   ai.Grader
	examples ExampleWriter // nil when OpenAI is not configured
	config   *BotConfig
	logger   *slog.Logger

	mu    sync.Mutex
	state map[int64]*studyState
	rnd   *rand.Rand
}

// Deps are the collaborators of the bot
type Deps struct {
	Tracker  *tracker.Tracker
	Store    database.Repository
	Grader   ai.Grader
	Examples ExampleWriter
	Config   *BotConfig
	Logger   *slog.Logger
}

// New creates a new bot instance. The Telegram connection is made by Start.
func New(token string, deps Deps) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	b := newBot(deps)
	b.token = token
	return b, nil
}

func newBot(deps Deps) *Bot {
	if deps.Config == nil {
		deps.Config = DefaultConfig()
	}
	if deps.Grader == nil {
		deps.Grader = ai.ExactGrader{}
	}
	return &Bot{
		tracker:  deps.Tracker,
		words:    deps.Store,
		selector: quiz.NewSelector(deps.Store),
		grader:   deps.Grader,
		examples: deps.Examples,
		config:   deps.Config,
		logger:   logging.Component(deps.Logger, "bot"),
		state:    make(map[int64]*studyState),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.mu.Lock()
	b.api = botAPI
	b.mu.Unlock()
	b.logger.Info("authorized on account", slog.String("username", botAPI.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(learnerID int64, count int) error {
	b.mu.Lock()
	api := b.api
	b.mu.Unlock()
	if api == nil {
		return fmt.Errorf("bot is not connected")
	}
	// For private chats the Telegram user id is the chat id
	msg := tgbotapi.NewMessage(learnerID, reminderText(count))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🎯 Start Learning", CallbackData: "start_learning"}},
	})
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	b.logger.Info("reminder sent",
		slog.Int64(logging.FieldLearnerID, learnerID),
		slog.Int("due", count))
	return nil
}

func reminderText(count int) string {
	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	return fmt.Sprintf("You have %d %s to review! Press Start Learning to begin.", count, wordForm)
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		chatID    int64
		learnerID int64
		r         reply
	)
	switch {
	case update.Message != nil && update.Message.From != nil:
		chatID = update.Message.Chat.ID
		learnerID = update.Message.From.ID
		if update.Message.IsCommand() {
			r = b.handleCommand(ctx, learnerID, update.Message.Command(), update.Message.CommandArguments())
		} else {
			r = b.handleText(ctx, learnerID, update.Message.Text)
		}
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
		learnerID = update.CallbackQuery.From.ID
		r = b.handleCallback(ctx, learnerID, update.CallbackQuery.Data)
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.logger.Warn("failed to answer callback", slog.Any("error", err))
		}
	default:
		return
	}

	msg := tgbotapi.NewMessage(chatID, r.text)
	if len(r.buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(r.buttons)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64(logging.FieldLearnerID, learnerID),
			slog.Any("error", err))
	}
}

// handleCallback maps menu buttons onto commands
func (b *Bot) handleCallback(ctx context.Context, learnerID int64, data string) reply {
	switch data {
	case "main_menu":
		return b.handleCommand(ctx, learnerID, "menu", "")
	case "start_learning":
		return b.handleCommand(ctx, learnerID, "study", "")
	case "next_word":
		return b.handleCommand(ctx, learnerID, "next", "")
	case "finish":
		return b.handleCommand(ctx, learnerID, "finish", "")
	case "show_stats":
		return b.handleCommand(ctx, learnerID, "stats", "")
	case "show_achievements":
		return b.handleCommand(ctx, learnerID, "achievements", "")
	}
	if answer, ok := strings.CutPrefix(data, "answer_"); ok {
		return b.handleCommand(ctx, learnerID, "answer", answer)
	}
	return reply{text: "Unknown action. Use /menu to show the main menu.", buttons: mainMenuButtons()}
}

// mainMenuButtons returns the buttons for the main menu
func mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎯 Start Learning", CallbackData: "start_learning"},
			{Text: "📊 Statistics", CallbackData: "show_stats"},
		},
		{
			{Text: "🏆 Achievements", CallbackData: "show_achievements"},
			{Text: "🏁 Finish Session", CallbackData: "finish"},
		},
	}
}
