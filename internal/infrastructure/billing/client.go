// Package billing provides a client for the external payment provider's
// customer API. Only the operations the account lifecycle needs are exposed.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the payment provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the billing client.
type Config struct {
	// BaseURL is the provider API base URL (e.g., "https://api.stripe.com")
	BaseURL string

	// APIKey is the secret API key
	APIKey string

	// Timeout is the HTTP request timeout (default: 15s)
	Timeout time.Duration
}

// NewClient creates a new billing client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type deleteCustomerResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteCustomer removes the customer record at the provider. A 404 means
// the customer is already gone, which the deletion workflow treats as done.
func (c *Client) DeleteCustomer(ctx context.Context, customerID string) error {
	u := fmt.Sprintf("%s/v1/customers/%s", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("customer delete request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("billing API returned status %d", resp.StatusCode)
	}

	var result deleteCustomerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Deleted {
		return fmt.Errorf("billing API did not confirm deletion of %s", result.ID)
	}
	return nil
}
