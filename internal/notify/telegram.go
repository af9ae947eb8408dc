package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends messages through the Telegram Bot API over plain HTTP.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// TelegramOpts holds parameters for creating a Telegram notifier.
type TelegramOpts struct {
	BotToken string
	ChatID   string
	BaseURL  string       // optional override, used in tests
	Client   *http.Client // optional; defaults to a 10s-timeout client
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(opts TelegramOpts) (*Telegram, error) {
	if opts.BotToken == "" {
		return nil, fmt.Errorf("notify: telegram: bot token is required")
	}
	if opts.ChatID == "" {
		return nil, fmt.Errorf("notify: telegram: chat id is required")
	}
	base := opts.BaseURL
	if base == "" {
		base = telegramAPIBase
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Telegram{
		token:   opts.BotToken,
		chatID:  opts.ChatID,
		baseURL: strings.TrimRight(base, "/"),
		client:  client,
	}, nil
}

// Name implements Notifier.
func (t *Telegram) Name() string { return "telegram" }

// Send delivers the text via the sendMessage endpoint.
func (t *Telegram) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	form := url.Values{"chat_id": {t.chatID}, "text": {text}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: telegram: send: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("notify: telegram: decode response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("notify: telegram: api error: %s", body.Description)
	}
	return nil
}
