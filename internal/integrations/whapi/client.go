package whapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vidaplan/corretora-api/internal/config"
)

// Client sends outbound messages through the WhatsApp provider API
type Client interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

type client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a provider client
func NewClient(cfg *config.Config) Client {
	return &client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendTextRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendTextResponse struct {
	Sent    bool `json:"sent"`
	Message struct {
		ID string `json:"id"`
	} `json:"message"`
}

// SendText posts a text message and returns the provider message ID
func (c *client) SendText(ctx context.Context, to, body string) (string, error) {
	payload, err := json.Marshal(sendTextRequest{To: to, Body: body})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/messages/text", c.cfg.WhapiBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.WhapiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whapi request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whapi returned %d: %s", resp.StatusCode, string(data))
	}

	var result sendTextResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whapi response decode failed: %w", err)
	}
	return result.Message.ID, nil
}
