package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"titlechat/internal/llm"
	"titlechat/internal/models"
)

// ProxyClient asks a running server's /chat endpoint.
type ProxyClient struct {
	BaseURL string
	Client  *http.Client
}

func NewProxyClient(baseURL string) *ProxyClient {
	return &ProxyClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 45 * time.Second},
	}
}

func (p *ProxyClient) Reply(ctx context.Context, message, regionName string) (string, error) {
	body, err := json.Marshal(models.ChatRequest{UserMessage: message, State: regionName})
	if err != nil {
		return "", fmt.Errorf("chat: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: post /chat: %w", err)
	}
	defer resp.Body.Close()

	var out models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat: decode /chat response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error == NotConfiguredMessage {
			return "", ErrNotConfigured
		}
		return "", fmt.Errorf("chat: /chat returned %d: %s", resp.StatusCode, out.Error)
	}
	if out.Reply == "" {
		return llm.NoResponseReply, nil
	}
	return out.Reply, nil
}
