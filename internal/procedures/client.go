package procedures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteError carries the status and message of a failed procedure call
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("procedure call failed with status %d", e.Status)
	}
	return e.Message
}

// Client calls a procedure layer running behind HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the procedure API rooted at baseURL
// (for example "https://portal.example.com/api/v1")
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ForToken returns a client acting as the buyer identified by token
func (c *Client) ForToken(token string) *BuyerClient {
	return &BuyerClient{client: c, token: token}
}

// BuyerClient is a Client bound to one buyer's bearer token
type BuyerClient struct {
	client *Client
	token  string
}

// GetStepData fetches the stored payload for step, nil when none
func (b *BuyerClient) GetStepData(ctx context.Context, step string) (json.RawMessage, error) {
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := b.do(ctx, http.MethodGet, "/procedures/steps/"+url.PathEscape(step), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return nil, nil
	}
	return out.Data, nil
}

// Submit posts a step payload
func (b *BuyerClient) Submit(ctx context.Context, step string, payload any) error {
	return b.do(ctx, http.MethodPost, "/procedures/steps/"+url.PathEscape(step), payload, nil)
}

// CompleteOnboarding marks onboarding complete
func (b *BuyerClient) CompleteOnboarding(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/procedures/complete", struct{}{}, nil)
}

func (b *BuyerClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("procedure request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &e)
		return &RemoteError{Status: resp.StatusCode, Message: e.Error}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("malformed procedure response: %w", err)
		}
	}
	return nil
}
