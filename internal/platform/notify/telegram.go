package notify

import (
	"context"
	"fmt"

	"ffclash/internal/platform/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier fans admin alerts out to every configured chat.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegramNotifier(botToken string, chatIDs []int64) (*TelegramNotifier, error) {
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("no telegram chat ids configured")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatIDs: chatIDs}, nil
}

// SendAlert returns the last error when any chat fails.
func (tn *TelegramNotifier) SendAlert(_ context.Context, message string) error {
	var lastErr error
	for _, chatID := range tn.chatIDs {
		if _, err := tn.bot.Send(tgbotapi.NewMessage(chatID, message)); err != nil {
			logger.Errorf("Failed to send telegram message to chat %d: %v", chatID, err)
			lastErr = err
		}
	}
	return lastErr
}

// LogNotifier is used when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) SendAlert(_ context.Context, message string) error {
	logger.WithField("channel", "admin_alert").Info(message)
	return nil
}
