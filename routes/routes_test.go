package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/enrollment_backend/controllers"
	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/security"
	"github.com/HSouheill/enrollment_backend/services"
	"github.com/HSouheill/enrollment_backend/utils"
)

const testKeySecret = "rzp_test_secret"

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*models.Order, error) {
	return &models.Order{ID: "order_test", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractText(data []byte) (string, error) { return string(data), nil }

type stubSummarizer struct{}

func (stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	return "summary of " + text, nil
}

type testApp struct {
	e     *echo.Echo
	store *repositories.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	nop := zerolog.Nop()
	store := repositories.NewMemoryStore()
	sessions := utils.NewSessionTokens("session-secret", time.Hour)

	enrollments := services.NewEnrollmentService(store, nil, sessions, services.EnrollmentOptions{
		DemoMode:   true,
		OTPTTL:     5 * time.Minute,
		BcryptCost: 4,
	}, nop)
	verifications := services.NewVerificationService(store, nil, nil, nop)
	orders := services.NewPaymentOrderService(stubGateway{}, 50000, "INR", nop)
	payments := services.NewPaymentVerificationService(store, testKeySecret, 500, nil, nil, nop)
	summaries := services.NewSummaryService(stubExtractor{}, stubSummarizer{}, "facebook/bart-large-cnn", time.Second, nop)

	e := echo.New()
	e.Validator = controllers.NewCustomValidator()
	e.HTTPErrorHandler = controllers.ErrorHandler(false, nop)
	SetupRoutes(e, Handlers{
		Enrollment: controllers.NewEnrollmentController(enrollments, verifications, store),
		Payment:    controllers.NewPaymentController(orders, payments),
		Summary:    controllers.NewSummaryController(summaries, nop),
		Health:     controllers.NewHealthController(store),
		Sessions:   sessions,
	})
	return &testApp{e: e, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, header http.Header) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func bearer(token string) http.Header {
	return http.Header{echo.HeaderAuthorization: []string{"Bearer " + token}}
}

func TestEndToEnd_EnrollVerifyPay(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "000000")
	assert.Equal(t, "000000", body["otp"])
	token, _ := body["sessionToken"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, body["enrollmentId"])

	rec, body = app.do(t, http.MethodPost, "/api/verify", map[string]string{
		"mobile": "9876543210", "otp": "000000",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ada", body["name"])
	assert.True(t, app.store.All()[0].IsVerified)

	rec, body = app.do(t, http.MethodPost, "/api/create-order", map[string]interface{}{"amount": 50000, "currency": "INR"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "order_test", body["id"])
	assert.Equal(t, float64(50000), body["amount"])

	rec, body = app.do(t, http.MethodPost, "/api/verify-payment", map[string]interface{}{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_test",
		"razorpay_signature":  security.PaymentSignature(testKeySecret, "order_test", "pay_1"),
		"userData":            map[string]string{"email": "a@b.com", "mobile": "9876543210"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ada", body["name"])

	stored := app.store.All()[0]
	assert.Equal(t, models.PaymentCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.AmountPaid)
	assert.Equal(t, 500.0, *stored.AmountPaid)

	rec, body = app.do(t, http.MethodGet, "/api/enrollment", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	enrollment, _ := body["enrollment"].(map[string]interface{})
	assert.Equal(t, "completed", enrollment["paymentStatus"])
	assert.Equal(t, true, enrollment["isVerified"])
	assert.NotContains(t, rec.Body.String(), "otp")

	rec, _ = app.do(t, http.MethodGet, "/api/enrollment/qr", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestEnroll_Failures(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.do(t, http.MethodPost, "/api/enroll", map[string]string{"name": "Ada"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required fields", body["error"])

	rec, body = app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "12345", "email": "a@b.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "12345 is not a valid mobile number!", body["error"])
	assert.Empty(t, app.store.All())

	app.store.Err = utils.UnavailableError(errors.New("server selection error"))
	rec, body = app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database unavailable", body["error"])
	assert.NotContains(t, rec.Body.String(), "server selection")
}

func TestVerify_WrongCode(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)

	rec, body := app.do(t, http.MethodPost, "/api/verify", map[string]string{"mobile": "9876543210", "otp": "111111"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", body["error"])
	assert.False(t, app.store.All()[0].IsVerified)
}

func TestVerifyPayment_Failures(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)

	payload := map[string]interface{}{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_test",
		"razorpay_signature":  "0000",
		"userData":            map[string]string{"email": "a@b.com", "mobile": "9876543210"},
	}
	rec, body := app.do(t, http.MethodPost, "/api/verify-payment", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment verification failed", body["error"])
	assert.NotContains(t, rec.Body.String(), testKeySecret)
	assert.Equal(t, models.PaymentPending, app.store.All()[0].PaymentStatus)

	payload["razorpay_signature"] = security.PaymentSignature(testKeySecret, "order_test", "pay_1")
	payload["userData"] = map[string]string{"email": "other@b.com", "mobile": "9876543210"}
	rec, _ = app.do(t, http.MethodPost, "/api/verify-payment", payload, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	delete(payload, "razorpay_order_id")
	rec, body = app.do(t, http.MethodPost, "/api/verify-payment", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["error"])
}

func TestCreateOrder_RejectsOtherAmount(t *testing.T) {
	app := newTestApp(t)
	rec, body := app.do(t, http.MethodPost, "/api/create-order", map[string]interface{}{"amount": 100}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order amount", body["error"])
}

func TestDashboard_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(t, http.MethodGet, "/api/enrollment", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, body := app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)
	token := body["sessionToken"].(string)

	rec, body = app.do(t, http.MethodGet, "/api/enrollment/qr", nil, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Enrollment is not paid yet", body["error"])
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "connected", body["dbStatus"])
	assert.NotEmpty(t, body["timestamp"])

	app.store.Err = errors.New("down")
	rec, body = app.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disconnected", body["dbStatus"])
}

func TestSummarizePDF(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.do(t, http.MethodPost, "/api/summarize-pdf", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No PDF file uploaded", body["error"])

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("pdf", "notes.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("week one covers goroutines"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/summarize-pdf", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rr := httptest.NewRecorder()
	app.e.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res models.SummaryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "summary of week one covers goroutines", res.Summary)
	assert.Equal(t, "facebook/bart-large-cnn", res.Model)
	assert.Equal(t, len("week one covers goroutines"), res.CharsProcessed)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	rec, body := app.do(t, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestEnrollVerify_NameRoundTripsUnchanged(t *testing.T) {
	app := newTestApp(t)
	const name = "Tom & Jerry O'Brien"

	rec, body := app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": name, "country": "India", "mobile": "9876543210", "email": "tom@b.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := body["sessionToken"].(string)
	assert.Equal(t, name, app.store.All()[0].Name)

	rec, body = app.do(t, http.MethodPost, "/api/verify", map[string]string{
		"mobile": "9876543210", "otp": "000000",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, name, body["name"])

	rec, body = app.do(t, http.MethodGet, "/api/enrollment", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	enrollment, _ := body["enrollment"].(map[string]interface{})
	assert.Equal(t, name, enrollment["name"])
}

func TestDashboard_RejectsTokenForOtherMobile(t *testing.T) {
	app := newTestApp(t)
	rec, body := app.do(t, http.MethodPost, "/api/enroll", map[string]string{
		"name": "Ada", "country": "India", "mobile": "9876543210", "email": "a@b.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, _ := body["enrollmentId"].(string)

	forged, err := utils.NewSessionTokens("session-secret", time.Hour).Issue(id, "1111111111")
	require.NoError(t, err)

	rec, body = app.do(t, http.MethodGet, "/api/enrollment", nil, bearer(forged))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired session", body["error"])
}
