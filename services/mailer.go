package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/HSouheill/enrollment_backend/models"
)

// ConfirmationMailer sends the post-payment confirmation email.
type ConfirmationMailer interface {
	SendConfirmation(rec *models.EnrollmentRecord) error
}

// NoopMailer is used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) SendConfirmation(*models.EnrollmentRecord) error { return nil }

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	course string
}

func NewSMTPMailer(host string, port int, user, pass, from, course string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		course: course,
	}
}

func (m *SMTPMailer) SendConfirmation(rec *models.EnrollmentRecord) error {
	if err := m.dialer.DialAndSend(confirmationMessage(m.from, m.course, rec)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func confirmationMessage(from, course string, rec *models.EnrollmentRecord) *gomail.Message {
	amount := 0.0
	if rec.AmountPaid != nil {
		amount = *rec.AmountPaid
	}
	paymentID := ""
	if rec.PaymentID != nil {
		paymentID = *rec.PaymentID
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", rec.Email)
	m.SetHeader("Subject", "Enrollment confirmed: "+course)
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour enrollment in %s is complete.\nAmount paid: %.2f\nPayment reference: %s\n",
		rec.Name, course, amount, paymentID,
	))
	return m
}
