package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Summarizer turns text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// APIError is a non-2xx answer from the summarization API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("summarization API returned status %d: %s", e.StatusCode, e.Message)
}

// ErrEmptySummary is returned when the API answers without summary text.
var ErrEmptySummary = errors.New("empty response from summarization API")

type summarizeRequest struct {
	Inputs string `json:"inputs"`
}

type summarizeResult struct {
	SummaryText string `json:"summary_text"`
}

type apiErrorBody struct {
	Error string `json:"error"`
}

// HFClient calls a hosted inference model over HTTP with a bearer token
type HFClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHFClient targets baseURL + model. Deadlines come from the caller's context.
func NewHFClient(baseURL, model, apiKey string) *HFClient {
	return &HFClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + model,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

func (c *HFClient) Summarize(ctx context.Context, text string) (string, error) {
	jsonData, err := json.Marshal(summarizeRequest{Inputs: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body apiErrorBody
		_ = json.Unmarshal(respBody, &body)
		msg := body.Error
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var results []summarizeResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", ErrEmptySummary
	}
	return results[0].SummaryText, nil
}
