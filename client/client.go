// Package client is a Go client for the enrollment API and the enrollment flow
// a front end drives against it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/HSouheill/enrollment_backend/models"
)

// APIError is a non-2xx answer from the enrollment API
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Solution   string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

type errorBody struct {
	Error    string `json:"error"`
	Details  string `json:"details"`
	Solution string `json:"solution"`
}

// APIClient calls the enrollment backend over HTTP
type APIClient struct {
	baseURL string
	client  *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:10000".
func New(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *APIClient) Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollResponse, error) {
	var out models.EnrollResponse
	if err := c.postJSON(ctx, "/api/enroll", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResponse, error) {
	var out models.VerifyResponse
	if err := c.postJSON(ctx, "/api/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	var out models.CreateOrderResponse
	if err := c.postJSON(ctx, "/api/create-order", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	var out models.VerifyPaymentResponse
	if err := c.postJSON(ctx, "/api/verify-payment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enrollment fetches the dashboard record for a session token
func (c *APIClient) Enrollment(ctx context.Context, sessionToken string) (*models.EnrollmentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/enrollment", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	var out models.EnrollmentResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize uploads a PDF as the "pdf" form field
func (c *APIClient) Summarize(ctx context.Context, filename string, data []byte) (*models.SummaryResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("pdf", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/summarize-pdf", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out models.SummaryResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Health(ctx context.Context) (*models.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out models.HealthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Details: eb.Details, Solution: eb.Solution}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
