// ABOUTME: Workflowy API client for validating user-supplied API keys
// ABOUTME: Distinguishes transport failures from authenticated-but-rejected responses

package workflowy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is the production Workflowy API endpoint.
const DefaultBaseURL = "https://workflowy.com"

// targetsPath is the cheapest authenticated endpoint; a 2xx response proves
// the key is accepted.
const targetsPath = "/api/v1/targets"

// APIError is a rejection from Workflowy: the endpoint was reached but
// answered with a non-2xx status. This is the user-facing "invalid or
// expired key" case, distinct from transport failures.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// Client talks to the Workflowy API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given base URL. An empty baseURL uses
// the production endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// ValidateAPIKey checks whether key is accepted by Workflowy.
//
// The key is trimmed of surrounding whitespace and sent as a bearer token.
// A 2xx response returns true. A non-2xx response returns an *APIError
// carrying the status code and response body. Transport-level failures
// (DNS, TLS, timeout) return the underlying error. No retries.
func (c *Client) ValidateAPIKey(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+targetsPath, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(key))
	// The upstream expects this header even on a bodyless GET.
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}

	// Body read failure degrades to an empty body, not a separate error:
	// the status code alone is still actionable for the user.
	body, _ := io.ReadAll(resp.Body)
	return false, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}
