// Package scoring is the HTTP client for the external lead-scoring model
// service. The model is a black box: it takes feature rows and returns a
// likelihood-to-convert score per row, plus an optional per-feature
// explanation for a single lead.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plscore/leadscore-api/internal/pkg/httpretry"
)

// Client calls the scorer service. Batch scoring uses its own long-timeout
// HTTP client and is never retried (a batch is all-or-nothing); single-row
// calls use a short timeout with retries.
type Client struct {
	baseURL     string
	batchClient *http.Client
	single      httpretry.HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithBatchTimeout overrides the batch call timeout (default 5 minutes —
// scoring a large batch is slow).
func WithBatchTimeout(d time.Duration) Option {
	return func(c *Client) { c.batchClient = &http.Client{Timeout: d} }
}

// WithSingleDoer overrides the client used for single-row calls (tests).
func WithSingleDoer(d httpretry.HTTPDoer) Option {
	return func(c *Client) { c.single = d }
}

// NewClient creates a scorer client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		batchClient: &http.Client{Timeout: 5 * time.Minute},
		single:      httpretry.NewRetryClient(&http.Client{Timeout: 10 * time.Second}, 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type batchRequest struct {
	CSV   string `json:"csv"`
	Limit int    `json:"limit,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// ScoreBatch ships a delimited-text batch of rows to the scorer and returns
// one score per row, positionally aligned with the submitted batch. Any
// transport failure, non-array payload, or explicit error field fails the
// whole batch; there is no partial scoring credit.
func (c *Client) ScoreBatch(ctx context.Context, csvText string, limit int) ([]float64, error) {
	body, _ := json.Marshal(batchRequest{CSV: csvText, Limit: limit})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.batchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service unreachable: %w", err)
	}
	defer resp.Body.Close()

	// The scorer reports row-level problems as a JSON object with an error
	// field, on 200 or 500 alike. Decode into RawMessage first so both
	// shapes can be told apart.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("malformed scoring response: %w", err)
	}

	var ep errorPayload
	if json.Unmarshal(raw, &ep) == nil && ep.Error != "" {
		return nil, fmt.Errorf("scoring service error: %s", ep.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	// Rows echo the input columns (strings included) plus ml_score, so
	// decode each row loosely and pull out just the score.
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("scoring response is not an array: %w", err)
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		rawScore, ok := row["ml_score"]
		if !ok {
			return nil, fmt.Errorf("row %d missing ml_score", i+1)
		}
		var n json.Number
		if err := json.Unmarshal(rawScore, &n); err != nil {
			return nil, fmt.Errorf("row %d has non-numeric ml_score: %w", i+1, err)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("row %d has non-numeric ml_score: %w", i+1, err)
		}
		scores[i] = f
	}
	return scores, nil
}

type singleResponse struct {
	Prediction *float64 `json:"prediction"`
	Error      string   `json:"error"`
}

// ScoreSingle scores one feature vector. Used when a lead is created by hand
// rather than through a bulk upload.
func (c *Client) ScoreSingle(ctx context.Context, f Features) (float64, error) {
	var out singleResponse
	if err := c.postJSON(ctx, "/predict_single", f, &out); err != nil {
		return 0, err
	}
	if out.Error != "" {
		return 0, fmt.Errorf("scoring service error: %s", out.Error)
	}
	if out.Prediction == nil {
		return 0, fmt.Errorf("scoring service returned no prediction")
	}
	return *out.Prediction, nil
}

type explainResponse struct {
	Explanation
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Explain returns the scorer's per-feature contribution breakdown for one
// feature vector.
func (c *Client) Explain(ctx context.Context, f Features) (*Explanation, error) {
	var out explainResponse
	if err := c.postJSON(ctx, "/explain", f, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("scoring service error: %s", out.Error)
	}
	return &out.Explanation, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	resp, err := c.single.Do(req)
	if err != nil {
		return fmt.Errorf("scoring service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed scoring response: %w", err)
	}
	return nil
}
