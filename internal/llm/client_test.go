package llm

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mfenderov/regcorpus/internal/retry"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty model",
			config:  Config{BaseURL: "http://localhost:8080/v1"},
			wantErr: true,
		},
		{
			name:    "no endpoint",
			config:  Config{Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "base url",
			config:  Config{BaseURL: "http://localhost:8080/v1", Model: "gpt-4o-mini"},
			wantErr: false,
		},
		{
			name:    "socket path",
			config:  Config{SocketPath: "/tmp/test.sock", Model: "ai/gemma3"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func completionHandler(t *testing.T, check func(r *http.Request, req chatRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "  1. KYC - Know Your Customer  "}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`))
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, func(r *http.Request, req chatRequest) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want 0", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL + "/v1/", APIKey: "secret", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := client.Complete(context.Background(), Request{Prompt: "List abbreviations", System: "You are precise."})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Text != "1. KYC - Know Your Customer" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.PromptTokens != 120 || resp.CompletionTokens != 30 {
		t.Errorf("usage = %d/%d, want 120/30", resp.PromptTokens, resp.CompletionTokens)
	}
	if resp.TotalTokens() != 150 {
		t.Errorf("TotalTokens() = %d, want 150", resp.TotalTokens())
	}
}

func TestComplete_AzureAuth(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, func(r *http.Request, req chatRequest) {
		if got := r.URL.Query().Get("api-version"); got != "2024-02-01" {
			t.Errorf("api-version = %q", got)
		}
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key = %q", got)
		}
		if len(req.Messages) != 1 {
			t.Errorf("expected only the user message, got %d", len(req.Messages))
		}
	}))
	defer server.Close()

	client, err := New(Config{
		BaseURL:    server.URL + "/openai/deployments/gpt-4o-mini",
		APIKey:     "secret",
		APIVersion: "2024-02-01",
		Model:      "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Complete(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestComplete_UnixSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "test.sock")

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to create Unix socket: %v", err)
	}
	defer listener.Close()

	server := &http.Server{Handler: completionHandler(t, nil)}
	go server.Serve(listener)
	defer server.Close()

	client, err := New(Config{SocketPath: socketPath, Model: "ai/gemma3"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := client.Complete(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text == "" {
		t.Error("expected response text")
	}
}

func TestComplete_ErrorClassification(t *testing.T) {
	tests := []struct {
		status        int
		wantPermanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusRequestTimeout, false},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"nope"}}`, tt.status)
			}))
			defer server.Close()

			client, _ := New(Config{BaseURL: server.URL, Model: "m"})
			_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := retry.IsPermanent(err); got != tt.wantPermanent {
				t.Errorf("IsPermanent() = %v, want %v (err: %v)", got, tt.wantPermanent, err)
			}
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL, Model: "m"})
	if _, err := client.Complete(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestComplete_RateLimitedContextCancelled(t *testing.T) {
	client, _ := New(Config{BaseURL: "http://127.0.0.1:1", Model: "m", RequestsPerSecond: 0.001, Burst: 1})

	// Drain the only token.
	client.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Complete(ctx, Request{Prompt: "hi"}); err == nil {
		t.Error("expected rate limiter error on cancelled context")
	}
}

func TestPricing_Cost(t *testing.T) {
	p := Pricing{InputPerToken: 0.00000015, OutputPerToken: 0.0000006}
	got := p.Cost(Response{PromptTokens: 1000, CompletionTokens: 500})
	want := 1000*0.00000015 + 500*0.0000006
	if got != want {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
}
