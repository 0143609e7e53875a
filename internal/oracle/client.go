// Package oracle asks an OpenAI-compatible chat model to pick the best
// catalog candidate for an invoice line.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const chatCompletionsPath = "/v1/chat/completions"

// HTTPError is a non-2xx answer from the model endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("oracle http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("oracle http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Client is a minimal chat-completions client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a Client with a pooled transport.
func NewClient(baseURL, apiKey, model string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oracle: base url required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("oracle: model required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewClientWithHTTPClient is used by tests to avoid the network.
func NewClientWithHTTPClient(baseURL, apiKey, model string, hc *http.Client) (*Client, error) {
	c, err := NewClient(baseURL, apiKey, model)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		c.httpClient = hc
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system and one user message and returns the first
// choice's content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: map[string]any{"type": "json_object"},
	}

	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, chatCompletionsPath, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("oracle: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
