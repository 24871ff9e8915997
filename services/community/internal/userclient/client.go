// Package userclient probes the users service for account existence.
package userclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elzpil/bookclub/pkg/probe"
)

// Client checks user references against the users service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the users service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Exists probes the users service. Transport failures and unexpected status
// codes come back as Unknown with the underlying error.
func (c *Client) Exists(ctx context.Context, id string) (probe.Presence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/exists/"+id, nil)
	if err != nil {
		return probe.Unknown, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return probe.Unknown, fmt.Errorf("probe users service: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return probe.Present, nil
	case http.StatusNotFound:
		return probe.Absent, nil
	default:
		return probe.Unknown, fmt.Errorf("probe users service: unexpected status %d", resp.StatusCode)
	}
}
