package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/utils"
)

var testSessions = utils.NewSessionTokens("test-session-secret", time.Hour)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingSender struct {
	mobile string
	code   string
	err    error
}

func (s *recordingSender) SendOTP(_ context.Context, mobile, code string) error {
	s.mobile, s.code = mobile, code
	return s.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	verified []string
	paid     []string
}

func (n *recordingNotifier) EnrollmentVerified(rec *models.EnrollmentRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verified = append(n.verified, rec.ID.Hex())
}

func (n *recordingNotifier) EnrollmentPaid(rec *models.EnrollmentRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, rec.ID.Hex())
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendConfirmation(rec *models.EnrollmentRecord) error {
	m.sent = append(m.sent, rec.Email)
	return m.err
}

func newDemoEnrollment(store repositories.EnrollmentStore, clock *fakeClock) *EnrollmentService {
	svc := NewEnrollmentService(store, nil, testSessions, EnrollmentOptions{
		DemoMode:   true,
		OTPTTL:     5 * time.Minute,
		BcryptCost: 4,
	}, zerolog.Nop())
	svc.now = clock.Now
	return svc
}

func adaRequest() models.EnrollRequest {
	return models.EnrollRequest{Name: "Ada", Country: "India", Mobile: "9876543210", Email: "a@b.com"}
}
