package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HSouheill/enrollment_backend/models"
)

// State is a step of the enrollment flow.
type State int

const (
	StateCollectingInfo State = iota
	StateAwaitingCode
	StateAwaitingPayment
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollectingInfo:
		return "collecting_info"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned for actions the current state does not accept.
var ErrInvalidTransition = errors.New("action not allowed in current state")

// ErrActionInProgress is returned when an action starts while another is still waiting on the backend.
var ErrActionInProgress = errors.New("another action is in progress")

const healthTimeout = 5 * time.Second

// Backend is the set of calls the flow makes. *APIClient implements it.
type Backend interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollResponse, error)
	Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResponse, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error)
	Summarize(ctx context.Context, filename string, data []byte) (*models.SummaryResponse, error)
	Health(ctx context.Context) (*models.HealthResponse, error)
}

// PaymentCallback is what the checkout widget hands back after a payment.
type PaymentCallback struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Flow drives one user through enroll, code verification and payment. Each
// action makes exactly one backend call; a failed call keeps the state and is
// recorded as LastError. Nothing is retried automatically. The lock is not held
// during backend calls, so State and LastError stay readable while one runs.
type Flow struct {
	mu      sync.Mutex
	backend Backend
	state   State
	lastErr error
	busy    bool

	info         models.EnrollRequest
	message      string
	demoCode     string
	enrollmentID string
	sessionToken string
	name         string
	order        *models.CreateOrderResponse
}

func NewFlow(backend Backend) *Flow {
	return &Flow{backend: backend}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the error from the most recent failed action, cleared on success.
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Message is the latest user-facing message from the backend.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// DemoCode is the code the backend returned in demo mode, if any.
func (f *Flow) DemoCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.demoCode
}

// SessionToken authenticates dashboard and status socket calls for this enrollment.
func (f *Flow) SessionToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionToken
}

// Name is the enrolled name as confirmed by the backend.
func (f *Flow) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

// begin checks that the flow is in want and no other action is running, then
// marks an action in flight. The caller must call finish.
func (f *Flow) begin(want State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrActionInProgress
	}
	if f.state != want {
		return ErrInvalidTransition
	}
	f.busy = true
	return nil
}

// finish records the outcome of an action. apply runs under the lock only on success.
func (f *Flow) finish(err error, apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.lastErr = err
		return err
	}
	f.lastErr = nil
	apply()
	return nil
}

// SubmitInfo sends the enrollment form and moves to AwaitingCode.
func (f *Flow) SubmitInfo(ctx context.Context, info models.EnrollRequest) error {
	if err := f.begin(StateCollectingInfo); err != nil {
		return err
	}

	res, err := f.backend.Enroll(ctx, info)
	return f.finish(err, func() {
		f.info = info
		f.message = res.Message
		f.demoCode = res.OTP
		f.enrollmentID = res.EnrollmentID
		f.sessionToken = res.SessionToken
		f.state = StateAwaitingCode
	})
}

// SubmitCode checks the one-time code and moves to AwaitingPayment.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	if err := f.begin(StateAwaitingCode); err != nil {
		return err
	}
	f.mu.Lock()
	req := models.VerifyRequest{Mobile: f.info.Mobile, OTP: code, EnrollmentID: f.enrollmentID}
	f.mu.Unlock()

	res, err := f.backend.Verify(ctx, req)
	return f.finish(err, func() {
		f.name = res.Name
		f.message = res.Message
		f.state = StateAwaitingPayment
	})
}

// StartPayment opens an order for the checkout widget. The state stays
// AwaitingPayment; calling it again replaces the order.
func (f *Flow) StartPayment(ctx context.Context) (*models.CreateOrderResponse, error) {
	if err := f.begin(StateAwaitingPayment); err != nil {
		return nil, err
	}

	order, err := f.backend.CreateOrder(ctx, models.CreateOrderRequest{})
	if err := f.finish(err, func() { f.order = order }); err != nil {
		return nil, err
	}
	return order, nil
}

// CompletePayment forwards the widget callback and moves to Done.
func (f *Flow) CompletePayment(ctx context.Context, cb PaymentCallback) error {
	if err := f.begin(StateAwaitingPayment); err != nil {
		return err
	}
	f.mu.Lock()
	if f.order == nil {
		f.busy = false
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	req := models.VerifyPaymentRequest{
		PaymentID: cb.PaymentID,
		OrderID:   cb.OrderID,
		Signature: cb.Signature,
		UserData: models.PaymentUserData{
			Email:  f.info.Email,
			Mobile: f.info.Mobile,
			Name:   f.info.Name,
		},
	}
	f.mu.Unlock()

	res, err := f.backend.VerifyPayment(ctx, req)
	return f.finish(err, func() {
		f.name = res.Name
		f.message = res.Message
		f.state = StateDone
	})
}

// Summarize runs the summary panel. It does not depend on or change the flow state.
func (f *Flow) Summarize(ctx context.Context, filename string, data []byte) (*models.SummaryResponse, error) {
	return f.backend.Summarize(ctx, filename, data)
}

// Health checks backend liveness with a short deadline.
func (f *Flow) Health(ctx context.Context) (*models.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return f.backend.Health(ctx)
}
