package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/security"
	"github.com/HSouheill/enrollment_backend/utils"
)

// PaymentVerificationService confirms checkout callbacks and completes enrollments.
type PaymentVerificationService struct {
	store      repositories.EnrollmentStore
	secret     string
	amountPaid float64
	notifier   StatusNotifier
	mailer     ConfirmationMailer
	logger     zerolog.Logger
}

func NewPaymentVerificationService(store repositories.EnrollmentStore, secret string, amountPaid float64, notifier StatusNotifier, mailer ConfirmationMailer, logger zerolog.Logger) *PaymentVerificationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if mailer == nil {
		mailer = NoopMailer{}
	}
	return &PaymentVerificationService{
		store:      store,
		secret:     secret,
		amountPaid: amountPaid,
		notifier:   notifier,
		mailer:     mailer,
		logger:     logger.With().Str("component", "payment_verification").Logger(),
	}
}

// VerifyPayment checks the provider signature and, on match, marks the
// (email, mobile) enrollment paid. A mismatch mutates nothing.
func (s *PaymentVerificationService) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) (*models.EnrollmentRecord, error) {
	// The signature covers the ids exactly as supplied, so they are not trimmed.
	paymentID, orderID := req.PaymentID, req.OrderID
	email := utils.NormalizeEmail(req.UserData.Email)
	mobile := strings.TrimSpace(req.UserData.Mobile)
	if strings.TrimSpace(paymentID) == "" || strings.TrimSpace(orderID) == "" || req.Signature == "" || email == "" || mobile == "" {
		return nil, utils.ValidationError(msgMissingFields)
	}

	if !security.VerifyPaymentSignature(s.secret, orderID, paymentID, req.Signature) {
		s.logger.Warn().Str("order_id", orderID).Str("payment_id", paymentID).Msg("payment signature mismatch")
		return nil, utils.SignatureMismatchError("Payment verification failed")
	}

	rec, err := s.store.MarkPaid(ctx, email, mobile, models.PaymentUpdate{
		PaymentID:  paymentID,
		OrderID:    orderID,
		AmountPaid: s.amountPaid,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.RecordNotFoundError("Enrollment not found")
	}
	if errors.Is(err, repositories.ErrAlreadyPaid) {
		s.logger.Info().Str("enrollment_id", rec.ID.Hex()).Str("payment_id", paymentID).Msg("enrollment already paid, keeping first payment")
		return rec, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("enrollment_id", rec.ID.Hex()).Str("payment_id", paymentID).Msg("payment verified")

	s.notifier.EnrollmentPaid(rec)
	if err := s.mailer.SendConfirmation(rec); err != nil {
		s.logger.Warn().Err(err).Str("enrollment_id", rec.ID.Hex()).Msg("confirmation email failed")
	}
	return rec, nil
}
