package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot used for delivery.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelegramNotifier posts every message to one care-team chat.
type TelegramNotifier struct {
	sender Sender
	chat   telebot.ChatID
}

// NewTelegramBot creates a send-only bot. Offline skips the getMe round trip
// at startup; no poller is started.
func NewTelegramBot(token string) (*telebot.Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: 15 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chat: telebot.ChatID(chatID)}
}

func (notifier *TelegramNotifier) Method() string {
	return MethodTelegram
}

func (notifier *TelegramNotifier) Notify(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := notifier.sender.Send(notifier.chat, message.Text(), &telebot.SendOptions{
		ParseMode:             telebot.ModeDefault,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
