package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// OTPSender delivers a one-time code to a mobile number.
type OTPSender interface {
	SendOTP(ctx context.Context, mobile, code string) error
}

// SMSService sends OTPs through a bulk SMS HTTP gateway
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
	logger   zerolog.Logger
}

// SMSResponse represents the gateway response
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance
func NewSMSService(apiPath, username, password, senderID string, logger zerolog.Logger) *SMSService {
	return &SMSService{
		Username: username,
		Password: password,
		SenderID: senderID,
		APIPath:  apiPath,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "sms").Logger(),
	}
}

// SendOTP sends the code to +91<mobile>
func (s *SMSService) SendOTP(ctx context.Context, mobile, code string) error {
	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", "+91"+mobile)
	params.Set("message", fmt.Sprintf("Your course enrollment code is %s", code))
	params.Set("template", "otp")
	params.Set("variables", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIPath+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some gateways answer with plain text on success
		if strings.Contains(strings.ToLower(string(body)), "success") {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		s.logger.Info().Str("mobile", mobile).Str("message_id", smsResp.Data.MessageID).Msg("OTP sent")
		return nil
	}
	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}
