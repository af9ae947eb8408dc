package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(ClientOpts{}); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestClient_Complete(t *testing.T) {
	var gotModel string
	var gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model          string `json:"model"`
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		if req.ResponseFormat != nil {
			gotFormat = req.ResponseFormat.Type
		}
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "{\"ok\": true}"}}]}`)
	}))
	defer srv.Close()

	c, err := NewClient(ClientOpts{APIKey: "sk-test", BaseURL: srv.URL, DefaultModel: "fallback-model"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ok": true}` {
		t.Errorf("out = %q", out)
	}
	if gotModel != "fallback-model" {
		t.Errorf("model = %q, want the default applied", gotModel)
	}
	if gotFormat != "json_object" {
		t.Errorf("response_format = %q, want json_object", gotFormat)
	}
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	c, err := NewClient(ClientOpts{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Complete(context.Background(), Request{Model: "m"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
