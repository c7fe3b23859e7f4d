package models

import "time"

// ErrorResponse is the failure envelope shared by the enrollment and payment endpoints
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Stack   string `json:"stack,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"dbStatus"`
}
