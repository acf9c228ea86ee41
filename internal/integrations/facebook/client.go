package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vidaplan/corretora-api/internal/config"
)

// Client fetches lead details from the Graph API after a lead-ads
// webhook only delivers the leadgen ID.
type Client interface {
	GetLeadDetails(ctx context.Context, leadgenID string) (*LeadDetails, error)
}

type client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a Graph API client
func NewClient(cfg *config.Config) Client {
	return &client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// LeadDetails is the Graph API representation of a captured lead form
type LeadDetails struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"created_time"`
	FieldData []LeadField `json:"field_data"`
}

// LeadField is one answered form field
type LeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Field returns the first value answered for a named form field
func (d *LeadDetails) Field(name string) string {
	for _, f := range d.FieldData {
		if f.Name == name && len(f.Values) > 0 {
			return f.Values[0]
		}
	}
	return ""
}

func (c *client) GetLeadDetails(ctx context.Context, leadgenID string) (*LeadDetails, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=field_data,created_time&access_token=%s",
		c.cfg.FacebookGraphURL, url.PathEscape(leadgenID), url.QueryEscape(c.cfg.FacebookAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph api returned %d: %s", resp.StatusCode, string(data))
	}

	var details LeadDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("graph api response decode failed: %w", err)
	}
	return &details, nil
}
