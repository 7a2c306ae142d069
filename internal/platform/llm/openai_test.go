package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient("sk-test", "", "")
	if c.chatModel != "gpt-4o" {
		t.Errorf("expected default chat model gpt-4o, got %s", c.chatModel)
	}
	if c.audioModel != "whisper-1" {
		t.Errorf("expected default audio model whisper-1, got %s", c.audioModel)
	}
}

func TestNewOpenAIClient_Override(t *testing.T) {
	c := NewOpenAIClient("sk-test", "gpt-4o-mini", "whisper-1")
	if c.chatModel != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %s", c.chatModel)
	}
}

// fakeChatServer returns a test server that records the max_tokens of each
// chat completion request and replies with a minimal valid completion.
func fakeChatServer(t *testing.T, got *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*got = body.MaxTokens
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
}

func TestComplete_TokenBudget(t *testing.T) {
	var got int
	srv := fakeChatServer(t, &got)
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	c := &OpenAIClient{client: openai.NewClientWithConfig(cfg), chatModel: "gpt-4o"}

	if _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "oi"}}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != completionMaxTokens {
		t.Errorf("max_tokens = %d, want %d", got, completionMaxTokens)
	}
}

func TestCompleteJSON_TokenBudget(t *testing.T) {
	var got int
	srv := fakeChatServer(t, &got)
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	c := &OpenAIClient{client: openai.NewClientWithConfig(cfg), chatModel: "gpt-4o"}

	if _, err := c.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "oi"}}); err != nil {
		t.Fatalf("completeJSON: %v", err)
	}
	if got != jsonMaxTokens {
		t.Errorf("max_tokens = %d, want %d", got, jsonMaxTokens)
	}
}
