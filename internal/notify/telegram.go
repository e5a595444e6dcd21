package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTelegramURL is the Bot API host.
const DefaultTelegramURL = "https://api.telegram.org"

var errTelegramMisconfigured = errors.New("telegram notifier misconfigured")

// Telegram posts messages to a chat through the Bot API using HTML parse
// mode.
type Telegram struct {
	client   *resty.Client
	botToken string
	chatID   string
}

var _ Sender = (*Telegram)(nil)

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram builds a sender. baseURL may be empty for the public API.
func NewTelegram(client *resty.Client, baseURL, botToken, chatID string) *Telegram {
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
	}
	client.SetBaseURL(baseURL)
	return &Telegram{client: client, botToken: botToken, chatID: chatID}
}

// Send posts one sendMessage request.
func (t *Telegram) Send(ctx context.Context, message string) error {
	if t.botToken == "" || t.chatID == "" {
		return errTelegramMisconfigured
	}

	var result, failure telegramResponse
	res, err := t.client.R().
		SetContext(ctx).
		SetPathParam("token", t.botToken).
		SetBody(telegramMessage{ChatID: t.chatID, Text: message, ParseMode: "HTML"}).
		SetResult(&result).
		SetError(&failure).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("telegram error: %s: %s", res.Status(), failure.Description)
	}
	if !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}
	return nil
}
