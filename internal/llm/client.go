package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"titlechat/internal/models"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.4
	defaultMaxTokens   = 300
	httpTimeout        = 30 * time.Second

	// NoResponseReply is used when the model answers with no content.
	NoResponseReply = "Sorry, I couldn’t get a response."
)

// ErrNoAPIKey is returned by Complete when the client has no credential.
var ErrNoAPIKey = errors.New("llm: api key not configured")

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	URL         string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTP        *http.Client
}

func NewClient(url, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		URL:         url,
		APIKey:      apiKey,
		Model:       model,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		HTTP:        &http.Client{Timeout: httpTimeout},
	}
}

type completionRequest struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Messages    []models.LLMMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system instruction and one user message and returns
// the first choice's text. An empty answer is not an error; it comes back
// as NoResponseReply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody, err := json.Marshal(completionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Messages: []models.LLMMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: http call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return NoResponseReply, nil
	}
	return out.Choices[0].Message.Content, nil
}
