package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	url  string
	http HTTPClient
}

func NewClient(url string, httpClient HTTPClient) *Client {
	return &Client{
		url:  url,
		http: httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	return req, nil
}

// Send posts payload as JSON and expects status back.
func (c *Client) Send(ctx context.Context, method, path string, payload any, status int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != status {
		return fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	return nil
}

type streamsResp struct {
	Streams       []string `json:"streams"`
	CorrelationID string   `json:"correlationId"`
}

func (c *Client) Streams(ctx context.Context) (streamsResp, error) {
	var out streamsResp

	req, err := c.newRequest(ctx, http.MethodGet, "/v1/streams", nil)
	if err != nil {
		return out, fmt.Errorf("could not create request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("could not send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	return out, json.NewDecoder(res.Body).Decode(&out)
}
