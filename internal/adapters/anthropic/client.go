// Package anthropic implements the ports.TextOracle interface against an
// Anthropic-style messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tradeTutor/internal/metrics"
	"tradeTutor/internal/ports"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	messagesPath   = "/v1/messages"
)

// Config holds configuration for the oracle client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  ports.Logger
}

// Client is a TextOracle backed by the messages API. An empty API key is
// allowed at construction so the rest of the app can start; calls then fail
// with ErrOracleUnconfigured.
type Client struct {
	http   *resty.Client
	apiKey string
	logger ports.Logger
}

// NewClient creates the oracle client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for oracle client: %w", ports.ErrConfigurationError)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", apiVersion)

	return &Client{http: http, apiKey: cfg.APIKey, logger: cfg.Logger}, nil
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// completionReply is the subset of the messages API response we read.
type completionReply struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends a conversation and returns the concatenated text blocks of
// the reply.
func (c *Client) Complete(ctx context.Context, req ports.OracleRequest) (string, error) {
	body, err := c.post(ctx, "complete", req)
	if err != nil {
		return "", err
	}

	var reply completionReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("undecodable oracle response: %w", ports.ErrOracleUnavailable)
	}

	var sb strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("oracle response had no text content: %w", ports.ErrOracleUnavailable)
	}
	return sb.String(), nil
}

// Forward sends a raw request body upstream and returns the response
// verbatim, for the pass-through proxy endpoint.
func (c *Client) Forward(ctx context.Context, body []byte) ([]byte, error) {
	return c.post(ctx, "forward", body)
}

func (c *Client) post(ctx context.Context, operation string, body interface{}) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ports.ErrOracleUnconfigured
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(body).
		Post(messagesPath)
	outcome := "ok"
	defer func() {
		metrics.OracleRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		outcome = "error"
		c.logger.Error(ctx, err, "oracle request failed", map[string]interface{}{"operation": operation})
		return nil, fmt.Errorf("%v: %w", err, ports.ErrOracleUnavailable)
	}
	if resp.IsError() {
		outcome = "error"
		oerr := &ports.OracleError{
			Status:  resp.StatusCode(),
			Message: fmt.Sprintf("oracle returned status %d", resp.StatusCode()),
		}
		// Surface the upstream error document when it parses.
		var details map[string]interface{}
		if json.Unmarshal(resp.Body(), &details) == nil {
			oerr.Details = details
		}
		c.logger.Warn(ctx, "oracle returned error status", map[string]interface{}{
			"operation": operation,
			"status":    resp.StatusCode(),
		})
		return nil, oerr
	}
	return resp.Body(), nil
}
