package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
)

// TelegramNotifier дублирует новые заявки в чат риелтора.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    logrus.FieldLogger
}

func NewTelegramNotifier(botToken string, chatID int64, log logrus.FieldLogger) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(botToken, tgbotapi.APIEndpoint, chatID, log)
}

// NewTelegramNotifierWithEndpoint позволяет указать свой Bot API (прокси, тесты).
// endpoint — шаблон вида "https://api.telegram.org/bot%s/%s".
func NewTelegramNotifierWithEndpoint(botToken, endpoint string, chatID int64, log logrus.FieldLogger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (t *TelegramNotifier) send(text string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		t.log.WithError(err).WithField("chat_id", t.chatID).Warn("[tg][send] failed")
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	t.log.WithField("chat_id", t.chatID).Debug("[tg][send] ok")
	return nil
}

func formatRequest(req *models.Request) string {
	m := ParseMessage(req.Message)
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Новая заявка: %s</b>\n", html.EscapeString(requestTypeTitles[req.Type]))
	fmt.Fprintf(&b, "Клиент: %s\n", html.EscapeString(m.Name))
	fmt.Fprintf(&b, "Телефон: %s\n", html.EscapeString(m.Phone))
	if m.PreferredDate != "" {
		fmt.Fprintf(&b, "Дата: %s\n", html.EscapeString(m.PreferredDate))
	}
	if m.Message != "" {
		fmt.Fprintf(&b, "\n%s", html.EscapeString(m.Message))
	}
	return b.String()
}

func (t *TelegramNotifier) NewRequest(_ context.Context, req *models.Request) error {
	return t.send(formatRequest(req))
}

// AccountActivated ничего не шлёт: пароль клиента в общий чат не попадает.
func (t *TelegramNotifier) AccountActivated(context.Context, *models.Client, string, string) error {
	return nil
}
