package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/utils"
)

const msgInvalidOTP = "Invalid or expired OTP"

// VerificationService checks submitted one-time codes.
type VerificationService struct {
	store    repositories.EnrollmentStore
	limiter  utils.AttemptLimiter
	notifier StatusNotifier
	now      func() time.Time
	logger   zerolog.Logger
}

func NewVerificationService(store repositories.EnrollmentStore, limiter utils.AttemptLimiter, notifier StatusNotifier, logger zerolog.Logger) *VerificationService {
	if limiter == nil {
		limiter = utils.NoopAttemptLimiter{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &VerificationService{
		store:    store,
		limiter:  limiter,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.With().Str("component", "verification").Logger(),
	}
}

// Verify marks the newest unexpired enrollment whose code matches as verified.
// When EnrollmentID is set only that attempt is considered.
func (s *VerificationService) Verify(ctx context.Context, req models.VerifyRequest) (*models.EnrollmentRecord, error) {
	mobile := strings.TrimSpace(req.Mobile)
	code := strings.TrimSpace(req.OTP)
	if mobile == "" || code == "" {
		return nil, utils.ValidationError(msgMissingFields)
	}

	if err := s.limiter.Allow(ctx, mobile); err != nil {
		if utils.IsKind(err, utils.KindRateLimited) {
			return nil, err
		}
		// limiter backend trouble must not lock users out
		s.logger.Warn().Err(err).Msg("OTP attempt limiter unavailable")
	}

	now := s.now()
	candidates, err := s.candidates(ctx, mobile, strings.TrimSpace(req.EnrollmentID), now)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		rec := &candidates[i]
		if !rec.CodeValidAt(now) || !utils.CompareOTP(rec.OneTimeCode, code) {
			continue
		}
		if err := s.store.MarkVerified(ctx, rec.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, utils.NotFoundError(msgInvalidOTP)
			}
			return nil, err
		}
		rec.IsVerified = true
		s.notifier.EnrollmentVerified(rec)
		s.logger.Info().Str("enrollment_id", rec.ID.Hex()).Msg("mobile verified")
		return rec, nil
	}

	s.logger.Info().Str("mobile", mobile).Int("candidates", len(candidates)).Msg("OTP rejected")
	return nil, utils.NotFoundError(msgInvalidOTP)
}

func (s *VerificationService) candidates(ctx context.Context, mobile, enrollmentID string, now time.Time) ([]models.EnrollmentRecord, error) {
	if enrollmentID == "" {
		return s.store.FindActiveByMobile(ctx, mobile, now)
	}

	id, err := primitive.ObjectIDFromHex(enrollmentID)
	if err != nil {
		return nil, utils.NotFoundError(msgInvalidOTP)
	}
	rec, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Mobile != mobile {
		return nil, nil
	}
	return []models.EnrollmentRecord{*rec}, nil
}
