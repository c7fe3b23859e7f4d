package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/utils"
)

const msgMissingFields = "Missing required fields"

// EnrollmentOptions tunes code issuance.
type EnrollmentOptions struct {
	DemoMode   bool
	OTPTTL     time.Duration
	BcryptCost int
}

// EnrollResult is the outcome of a successful enrollment.
type EnrollResult struct {
	Record       *models.EnrollmentRecord
	Message      string
	Code         string // demo mode only
	SessionToken string
}

// EnrollmentService validates enrollment requests and issues one-time codes.
type EnrollmentService struct {
	store    repositories.EnrollmentStore
	sender   utils.OTPSender
	sessions *utils.SessionTokens
	validate *validator.Validate
	opts     EnrollmentOptions
	now      func() time.Time
	logger   zerolog.Logger
}

func NewEnrollmentService(store repositories.EnrollmentStore, sender utils.OTPSender, sessions *utils.SessionTokens, opts EnrollmentOptions, logger zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:    store,
		sender:   sender,
		sessions: sessions,
		validate: utils.NewValidator(),
		opts:     opts,
		now:      time.Now,
		logger:   logger.With().Str("component", "enrollment").Logger(),
	}
}

// Enroll creates a new enrollment record with a fresh one-time code.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.EnrollRequest) (*EnrollResult, error) {
	req.Name = utils.SanitizeInput(req.Name)
	req.Country = utils.SanitizeInput(req.Country)
	req.Mobile = utils.SanitizeInput(req.Mobile)
	req.Email = utils.NormalizeEmail(req.Email)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	code, err := s.issueCode()
	if err != nil {
		return nil, utils.InternalError(fmt.Errorf("generate OTP: %w", err))
	}
	hash, err := utils.HashOTP(code, s.opts.BcryptCost)
	if err != nil {
		return nil, utils.InternalError(fmt.Errorf("hash OTP: %w", err))
	}

	now := s.now()
	rec := &models.EnrollmentRecord{
		Name:          req.Name,
		Country:       req.Country,
		Mobile:        req.Mobile,
		Email:         req.Email,
		OneTimeCode:   hash,
		CodeExpiresAt: now.Add(s.opts.OTPTTL),
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("mobile", rec.Mobile).Msg("enrollment save failed")
		return nil, err
	}

	token, err := s.sessions.Issue(rec.ID.Hex(), rec.Mobile)
	if err != nil {
		return nil, utils.InternalError(fmt.Errorf("issue session token: %w", err))
	}

	result := &EnrollResult{Record: rec, SessionToken: token}
	if s.opts.DemoMode {
		result.Code = code
		result.Message = "DEMO MODE: Use OTP " + code
	} else {
		if err := s.sender.SendOTP(ctx, rec.Mobile, code); err != nil {
			s.logger.Error().Err(err).Str("enrollment_id", rec.ID.Hex()).Msg("OTP delivery failed")
			return nil, utils.UpstreamError("Failed to send OTP", err)
		}
		result.Message = "OTP sent to your mobile number"
	}

	s.logger.Info().Str("enrollment_id", rec.ID.Hex()).Bool("demo", s.opts.DemoMode).Msg("enrollment created")
	return result, nil
}

func (s *EnrollmentService) issueCode() (string, error) {
	if s.opts.DemoMode {
		return utils.DemoOTP, nil
	}
	return utils.GenerateNumericOTP(utils.OTPDigits)
}

func (s *EnrollmentService) validateRequest(req models.EnrollRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return utils.ValidationError(err.Error())
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return utils.ValidationError(msgMissingFields)
		}
	}
	switch verrs[0].Tag() {
	case "mobile10":
		return utils.ValidationError(fmt.Sprintf("%s is not a valid mobile number!", req.Mobile))
	case "basicemail":
		return utils.ValidationError(fmt.Sprintf("%s is not a valid email!", req.Email))
	}
	return utils.ValidationError(verrs[0].Error())
}
