// Package integrations connects external APIs to a project and records the
// api.connect events the onboarding status engine derives step 4 from.
package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const telegramAPIBase = "https://api.telegram.org"

// ConnectTelegramOpts holds parameters for ConnectTelegram.
type ConnectTelegramOpts struct {
	BotToken string
	ChatID   string
	BaseURL  string       // optional Bot API override, used in tests
	Client   *http.Client // optional; defaults to a 10s-timeout client
}

// ConnectTelegram verifies the bot token against the Bot API, marks the
// project as telegram-connected, and appends the api.connect event with
// provider=Telegram status=connected.
func ConnectTelegram(ctx context.Context, db *gorm.DB, projectID uint, opts ConnectTelegramOpts) error {
	if opts.BotToken == "" {
		return fmt.Errorf("integrations: telegram: bot token is required")
	}
	base := opts.BaseURL
	if base == "" {
		base = telegramAPIBase
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	botName, err := telegramGetMe(ctx, client, strings.TrimRight(base, "/"), opts.BotToken)
	if err != nil {
		return err
	}

	err = db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("telegram_connected", true).Error
	if err != nil {
		return fmt.Errorf("integrations: telegram: persist: %w", err)
	}

	err = eventlog.Append(db, projectID, eventlog.ActorUser, eventlog.KindAPIConnect, map[string]interface{}{
		"provider": "Telegram",
		"status":   "connected",
		"bot":      botName,
		"chat_id":  opts.ChatID,
	})
	if err != nil {
		return fmt.Errorf("integrations: telegram: %w", err)
	}
	return nil
}

// telegramGetMe validates the token and returns the bot's username.
func telegramGetMe(ctx context.Context, client *http.Client, base, token string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getMe", base, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("integrations: telegram: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("integrations: telegram: getMe: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK     bool `json:"ok"`
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("integrations: telegram: decode getMe: %w", err)
	}
	if !body.OK {
		return "", fmt.Errorf("integrations: telegram: token rejected: %s", body.Description)
	}
	return body.Result.Username, nil
}

// ConnectGitHub verifies a personal access token against the GitHub API and
// appends the api.connect event with provider=GitHub status=connected.
func ConnectGitHub(ctx context.Context, db *gorm.DB, projectID uint, token string) error {
	if token == "" {
		return fmt.Errorf("integrations: github: token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("integrations: github: verify token: %w", err)
	}

	err = eventlog.Append(db, projectID, eventlog.ActorUser, eventlog.KindAPIConnect, map[string]interface{}{
		"provider": "GitHub",
		"status":   "connected",
		"login":    user.GetLogin(),
	})
	if err != nil {
		return fmt.Errorf("integrations: github: %w", err)
	}
	return nil
}
