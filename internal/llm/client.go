package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfenderov/regcorpus/internal/retry"
)

const (
	// DefaultSocketBaseURL is the Docker Model Runner endpoint reached over its unix socket.
	DefaultSocketBaseURL = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1"
	DefaultTimeout       = 120 * time.Second
)

// Config holds LLM client configuration.
// Either BaseURL or SocketPath must be set.
type Config struct {
	BaseURL    string // OpenAI-compatible API root, e.g. "https://api.openai.com/v1"
	SocketPath string // Unix socket path for Docker Model Runner
	APIKey     string
	APIVersion string // Set for Azure OpenAI; switches auth to the api-key header
	Model      string // Model or deployment name (e.g., "gpt-4o-mini")
	Timeout    time.Duration

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	azure      bool
	model      string
	limiter    *rate.Limiter
}

var _ Completer = (*Client)(nil)

// New creates a new LLM client.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	baseURL := config.BaseURL

	switch {
	case config.SocketPath != "":
		socketPath := config.SocketPath
		httpClient.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		}
		if baseURL == "" {
			baseURL = DefaultSocketBaseURL
		}
	case baseURL == "":
		return nil, fmt.Errorf("base URL or socket path is required")
	}

	endpoint, err := url.Parse(strings.TrimRight(baseURL, "/") + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if config.APIVersion != "" {
		q := endpoint.Query()
		q.Set("api-version", config.APIVersion)
		endpoint.RawQuery = q.Encode()
	}

	c := &Client{
		httpClient: httpClient,
		endpoint:   endpoint.String(),
		apiKey:     config.APIKey,
		azure:      config.APIVersion != "",
		model:      config.Model,
	}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), max(config.Burst, 1))
	}
	return c, nil
}

// chatRequest is the request payload for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the chat completions API.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a prompt with temperature 0 and returns the response.
// Client errors other than 408 and 429 are marked permanent for retry.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return Response{}, retry.Permanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		if c.azure {
			httpReq.Header.Set("api-key", c.apiKey)
		} else {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		if isPermanentStatus(resp.StatusCode) {
			return Response{}, retry.Permanent(err)
		}
		return Response{}, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return Response{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return Response{}, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return Response{}, fmt.Errorf("no response returned")
	}

	return Response{
		Text:             strings.TrimSpace(chatResp.Choices[0].Message.Content),
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}

func isPermanentStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}
