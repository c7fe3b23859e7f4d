package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/enrollment_backend/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestEnroll_PostsJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/enroll", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.EnrollRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.Name)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"DEMO MODE: Use OTP 000000","otp":"000000","enrollmentId":"e1","sessionToken":"tok"}`))
	})

	res, err := c.Enroll(context.Background(), models.EnrollRequest{Name: "Ada", Country: "India", Mobile: "9876543210", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "000000", res.OTP)
	assert.Equal(t, "e1", res.EnrollmentID)
	assert.Equal(t, "tok", res.SessionToken)
}

func TestDo_ParsesErrorBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Summarization failed","details":"model loading","solution":"Wait a minute and try again"}`))
	})

	_, err := c.Summarize(context.Background(), "notes.pdf", []byte("%PDF"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Summarization failed", apiErr.Message)
	assert.Equal(t, "model loading", apiErr.Details)
	assert.Equal(t, "Wait a minute and try again", apiErr.Solution)
	assert.Equal(t, "Summarization failed (503): model loading", apiErr.Error())
}

func TestDo_NonJSONErrorUsesStatusText(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.Equal(t, "Bad Gateway (502)", apiErr.Error())
}

func TestSummarize_SendsMultipartField(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summarize-pdf", r.URL.Path)
		file, header, err := r.FormFile("pdf")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		_, _ = w.Write([]byte(`{"summary":"short","model":"facebook/bart-large-cnn","chars_processed":42}`))
	})

	res, err := c.Summarize(context.Background(), "notes.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "short", res.Summary)
	assert.Equal(t, 42, res.CharsProcessed)
}

func TestEnrollment_SendsBearerToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"enrollment":{"id":"e1","name":"Ada","paymentStatus":"paid","isVerified":true}}`))
	})

	res, err := c.Enrollment(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.Enrollment.Name)
	assert.Equal(t, models.PaymentStatus("paid"), res.Enrollment.PaymentStatus)
	assert.True(t, res.Enrollment.IsVerified)
}

func TestVerifyPayment_UsesGatewayFieldNames(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pay_1", body["razorpay_payment_id"])
		assert.Equal(t, "order_1", body["razorpay_order_id"])
		assert.Equal(t, "sig", body["razorpay_signature"])
		_, _ = w.Write([]byte(`{"success":true,"message":"Payment verified and enrollment completed","name":"Ada"}`))
	})

	res, err := c.VerifyPayment(context.Background(), models.VerifyPaymentRequest{
		PaymentID: "pay_1",
		OrderID:   "order_1",
		Signature: "sig",
		UserData:  models.PaymentUserData{Email: "a@b.com", Mobile: "9876543210"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.Name)
}

func TestDo_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Health(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
