// Package ai calls the enrichment service that turns canvas claims into
// probing questions, supporting evidence and debate summaries.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/polemica/polemica/errors"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultQuestionTimeout = 15 * time.Second
	DefaultEvidenceTimeout = 30 * time.Second
	DefaultRequestsPerMin  = 30.0
	DefaultBurst           = 5
)

// Config holds enrichment client configuration.
type Config struct {
	BaseURL         string
	QuestionTimeout time.Duration // also covers summaries
	EvidenceTimeout time.Duration
	RequestsPerMin  float64
	Burst           int
	Logger          *zap.SugaredLogger // nil = nop logger
}

// Client talks to the enrichment HTTP service. All calls are bounded by a
// per-kind timeout and throttled by a shared rate limiter so one canvas
// cannot starve the service for everyone else.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	limiter         *rate.Limiter
	questionTimeout time.Duration
	evidenceTimeout time.Duration
	logger          *zap.SugaredLogger
}

// NewClient creates an enrichment client.
func NewClient(config Config) *Client {
	if config.QuestionTimeout == 0 {
		config.QuestionTimeout = DefaultQuestionTimeout
	}
	if config.EvidenceTimeout == 0 {
		config.EvidenceTimeout = DefaultEvidenceTimeout
	}
	if config.RequestsPerMin == 0 {
		config.RequestsPerMin = DefaultRequestsPerMin
	}
	if config.Burst == 0 {
		config.Burst = DefaultBurst
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL:         config.BaseURL,
		httpClient:      &http.Client{},
		limiter:         rate.NewLimiter(rate.Limit(config.RequestsPerMin/60.0), config.Burst),
		questionTimeout: config.QuestionTimeout,
		evidenceTimeout: config.EvidenceTimeout,
		logger:          logger,
	}
}

// Evidence is one piece of sourced support for a claim.
type Evidence struct {
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type questionRequest struct {
	Claim string `json:"claim"`
}

type questionResponse struct {
	Question string `json:"question"`
}

type evidenceRequest struct {
	Claim string `json:"claim"`
}

type evidenceResponse struct {
	Evidence []Evidence `json:"evidence"`
}

type summaryRequest struct {
	Claims []string `json:"claims"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// The service reports failures as {"error": "..."} regardless of HTTP
// status; RATE_LIMIT is the only machine-readable code it emits.
type errorResponse struct {
	Error string `json:"error"`
}

// GenerateQuestion asks the service for a probing question about a claim.
func (c *Client) GenerateQuestion(ctx context.Context, claim string) (string, error) {
	var resp questionResponse
	err := c.post(ctx, "/question", c.questionTimeout, questionRequest{Claim: claim}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Question == "" {
		return "", errors.New("enrichment service returned empty question")
	}
	return resp.Question, nil
}

// FindEvidence asks the service for sourced evidence supporting a claim.
// Evidence search crawls external sources, so it gets the longer timeout.
func (c *Client) FindEvidence(ctx context.Context, claim string) ([]Evidence, error) {
	var resp evidenceResponse
	err := c.post(ctx, "/evidence", c.evidenceTimeout, evidenceRequest{Claim: claim}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Evidence, nil
}

// Summarize condenses a set of claims into a short debate summary.
func (c *Client) Summarize(ctx context.Context, claims []string) (string, error) {
	var resp summaryResponse
	err := c.post(ctx, "/summarize", c.questionTimeout, summaryRequest{Claims: claims}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, reqBody, respBody interface{}) error {
	if !c.limiter.Allow() {
		return errors.Wrap(errors.ErrRateLimited, "enrichment throttled")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debugw("Enrichment request", "path", path, "timeout", timeout)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrapf(errors.ErrTimeout, "enrichment %s exceeded %s", path, timeout)
		}
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		if errResp.Error == "RATE_LIMIT" {
			return errors.Wrap(errors.ErrRateLimited, "enrichment service rate limited")
		}
		return errors.Newf("enrichment service error: %s", errResp.Error)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.Wrap(errors.ErrRateLimited, "enrichment service rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("enrichment request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}
