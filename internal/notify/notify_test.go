package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
)

// --- telegram tests ---

func TestTelegram_Validation(t *testing.T) {
	if _, err := NewTelegram(TelegramOpts{ChatID: "1"}); err == nil {
		t.Error("expected error without bot token")
	}
	if _, err := NewTelegram(TelegramOpts{BotToken: "t"}); err == nil {
		t.Error("expected error without chat id")
	}
}

func TestTelegram_Send(t *testing.T) {
	var gotPath, gotChatID, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChatID = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	tg, err := NewTelegram(TelegramOpts{BotToken: "123:abc", ChatID: "42", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	if tg.Name() != "telegram" {
		t.Errorf("Name() = %q", tg.Name())
	}
	if err := tg.Send(context.Background(), "Reminder: study (2025-12-20)"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotChatID != "42" {
		t.Errorf("chat_id = %q", gotChatID)
	}
	if gotText != "Reminder: study (2025-12-20)" {
		t.Errorf("text = %q", gotText)
	}
}

func TestTelegram_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "description": "Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	tg, err := NewTelegram(TelegramOpts{BotToken: "t", ChatID: "1", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	err = tg.Send(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for ok=false")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error = %v, want the api description surfaced", err)
	}
}

// --- slack tests ---

type mockSlackClient struct {
	channelID string
	calls     int
	err       error
}

func (m *mockSlackClient) PostMessageContext(_ context.Context, channelID string, _ ...slackapi.MsgOption) (string, string, error) {
	m.calls++
	m.channelID = channelID
	return channelID, "123.456", m.err
}

func TestSlack_Validation(t *testing.T) {
	if _, err := NewSlack(SlackOpts{ChannelID: "C1"}); err == nil {
		t.Error("expected error without token or client")
	}
	if _, err := NewSlack(SlackOpts{BotToken: "xoxb"}); err == nil {
		t.Error("expected error without channel id")
	}
}

func TestSlack_Send(t *testing.T) {
	mock := &mockSlackClient{}
	s, err := NewSlack(SlackOpts{Client: mock, ChannelID: "C123"})
	if err != nil {
		t.Fatalf("NewSlack: %v", err)
	}
	if s.Name() != "slack" {
		t.Errorf("Name() = %q", s.Name())
	}
	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mock.calls != 1 || mock.channelID != "C123" {
		t.Errorf("calls = %d channel = %q", mock.calls, mock.channelID)
	}

	mock.err = fmt.Errorf("channel_not_found")
	if err := s.Send(context.Background(), "hi"); err == nil {
		t.Fatal("expected error passed through")
	}
}

// --- discord tests ---

type mockDiscordSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockDiscordSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{Content: content}, m.err
}

func TestDiscord_Validation(t *testing.T) {
	if _, err := NewDiscord(DiscordOpts{ChannelID: "1"}); err == nil {
		t.Error("expected error without token or session")
	}
	if _, err := NewDiscord(DiscordOpts{BotToken: "t"}); err == nil {
		t.Error("expected error without channel id")
	}
}

func TestDiscord_Send(t *testing.T) {
	mock := &mockDiscordSession{}
	d, err := NewDiscord(DiscordOpts{Session: mock, ChannelID: "789"})
	if err != nil {
		t.Fatalf("NewDiscord: %v", err)
	}
	if d.Name() != "discord" {
		t.Errorf("Name() = %q", d.Name())
	}
	if err := d.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mock.channelID != "789" || mock.content != "hello" {
		t.Errorf("sent to %q content %q", mock.channelID, mock.content)
	}

	mock.err = fmt.Errorf("missing access")
	if err := d.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error passed through")
	}
}
