package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

// Client talks to the external sentiment-inference service. It is constructed
// once and shared read-only across pipelines. Model failures are absorbed into
// the ERROR label so a flaky classifier never aborts an acquisition.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client from configuration.
func NewClient(cfg config.ClassifierConfig, logger *slog.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Classify labels one review text. Empty or near-empty text is neutral by
// definition and never reaches the model.
func (c *Client) Classify(ctx context.Context, text string) domain.Classification {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= 2 {
		return domain.Classification{Label: domain.SentimentNeutral, Confidence: 1.0}
	}

	result, err := c.post(ctx, trimmed)
	if err != nil {
		c.warn("classification failed", "error", err)
		return domain.Classification{Label: domain.SentimentError, Confidence: 0}
	}

	switch result.Label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
		return result
	default:
		c.warn("classifier returned unknown label", "label", result.Label)
		return domain.Classification{Label: domain.SentimentError, Confidence: 0}
	}
}

func (c *Client) post(ctx context.Context, text string) (domain.Classification, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var decoded struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.Classification{Label: decoded.Label, Confidence: decoded.Confidence}, nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
