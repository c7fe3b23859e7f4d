package models

// VerifyRequest is the body of POST /api/verify
type VerifyRequest struct {
	Mobile       string `json:"mobile" validate:"required"`
	OTP          string `json:"otp" validate:"required"`
	EnrollmentID string `json:"enrollmentId,omitempty"`
}

// VerifyResponse is the success body of POST /api/verify
type VerifyResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
