package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matruraksha-bot/pkg"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BackendClient talks to the analysis/summary/registration backend. Every
// call carries its own bounded timeout; a timeout is reported the same way as
// a non-success status so callers take a single degradation path.
type BackendClient struct {
	http            *resty.Client
	summaryTimeout  time.Duration
	registerTimeout time.Duration
	analyzeTimeout  time.Duration
	logger          *zap.Logger
}

// registerResponse is the registration API envelope. status must be
// "success" for the primary write path to count as succeeded.
type registerResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// NewBackendClient constructs a client for the given base URL.
func NewBackendClient(baseURL string, summaryTimeout, registerTimeout, analyzeTimeout time.Duration, logger *zap.Logger) *BackendClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BackendClient{
		http:            client,
		summaryTimeout:  summaryTimeout,
		registerTimeout: registerTimeout,
		analyzeTimeout:  analyzeTimeout,
		logger:          logger,
	}
}

// FetchSummary retrieves the remote health summary for a profile. Non-200
// responses and timeouts both come back as errors; the caller degrades to a
// locally-assembled summary.
func (c *BackendClient) FetchSummary(ctx context.Context, profileID string) (*pkg.SummaryPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.summaryTimeout)
	defer cancel()

	var payload pkg.SummaryPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/api/v1/summary/" + profileID)
	if err != nil {
		return nil, fmt.Errorf("summary request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("summary API returned %d", resp.StatusCode())
	}
	return &payload, nil
}

// RegisterMother attempts the primary registration write. It succeeds only
// when the API responds 2xx with status "success" and a decodable profile in
// data; anything else is an error and the caller falls back to the store.
func (c *BackendClient) RegisterMother(ctx context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.registerTimeout)
	defer cancel()

	var body registerResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&body).
		Post("/mothers/register")
	if err != nil {
		return nil, fmt.Errorf("register request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("register API returned %d", resp.StatusCode())
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("register API status %q", body.Status)
	}

	var saved pkg.Profile
	if err := json.Unmarshal(body.Data, &saved); err != nil {
		return nil, fmt.Errorf("register API body: %w", err)
	}
	if saved.ID == "" {
		return nil, fmt.Errorf("register API returned no profile id")
	}
	c.logger.Info("profile saved via registration API",
		zap.String("profile_id", saved.ID),
		zap.String("session_key", payload.SessionKey),
	)
	return &saved, nil
}

// AnalyzeReport asks the backend to analyze an uploaded report. The upload is
// already durable when this is called; failures here only soften the
// user-visible confirmation.
func (c *BackendClient) AnalyzeReport(ctx context.Context, req pkg.AnalyzeRequest) (*pkg.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	var result pkg.AnalysisResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/analyze-report")
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("analyze API returned %d", resp.StatusCode())
	}
	return &result, nil
}
