// Package notify delivers review reminders.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ReminderText renders the reminder message for count due words
func ReminderText(count int) string {
	noun := "words"
	if count == 1 {
		noun = "word"
	}
	return fmt.Sprintf("You have %d %s to review! Run `vocabmaster review` to start.", count, noun)
}

// LogNotifier writes reminders to the log
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

// SendReminder implements the scheduler.Notifier interface
func (n *LogNotifier) SendReminder(_ context.Context, count int) error {
	n.log.Info(ReminderText(count), "due", count)
	return nil
}

// sender is the part of tgbotapi.BotAPI used for reminders
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends reminders to one chat through a bot
type Telegram struct {
	api    sender
	chatID int64
	log    *slog.Logger
}

// NewTelegram connects to the bot API with token
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("authorized telegram bot", "account", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

// SendReminder implements the scheduler.Notifier interface
func (t *Telegram) SendReminder(_ context.Context, count int) error {
	msg := tgbotapi.NewMessage(t.chatID, ReminderText(count))
	if _, err := t.api.Send(msg); err != nil {
		t.log.Error("error sending reminder", "chat_id", t.chatID, "error", err)
		return fmt.Errorf("failed to send telegram reminder: %w", err)
	}
	t.log.Info("sent telegram reminder", "chat_id", t.chatID, "due", count)
	return nil
}
