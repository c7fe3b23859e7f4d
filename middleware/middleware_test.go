package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/HSouheill/enrollment_backend/utils"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx)
	limiter.SetEndpointLimit("/api/verify", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/verify", ok)
	e.GET("/health", ok)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
		assert.Equal(t, http.StatusOK, serve(e, req).Code)
	}

	rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/verify", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// the block outlasts the bucket refill
	rec = serve(e, httptest.NewRequest(http.MethodPost, "/api/verify", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health checks are never limited
	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestRateLimit_SeparatesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx)
	limiter.SetEndpointLimit("/api/enroll", rate.Every(time.Hour), 1)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/enroll", ok)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/enroll", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		assert.Equal(t, http.StatusOK, serve(e, req).Code, ip)
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{AllowedDomains: CheckoutDomains}))
	e.GET("/", ok)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' https://checkout.razorpay.com")
	assert.Contains(t, csp, "connect-src 'self' https://checkout.razorpay.com")
	assert.NotContains(t, csp, "unsafe-eval")
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORSWithConfig(NewCORSConfig([]string{" https://courses.example.com ", ""})))
	e.POST("/api/enroll", ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/enroll", nil)
	req.Header.Set(echo.HeaderOrigin, "https://courses.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := serve(e, req)
	assert.Equal(t, "https://courses.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodOptions, "/api/enroll", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = serve(e, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRequireSession(t *testing.T) {
	sessions := utils.NewSessionTokens("secret", time.Hour)
	token, err := sessions.Issue("65f0c0ffee0000000000abcd", "9876543210")
	require.NoError(t, err)

	e := echo.New()
	e.GET("/api/enrollment", func(c echo.Context) error {
		return c.String(http.StatusOK, EnrollmentIDFromContext(c)+"/"+MobileFromContext(c))
	}, RequireSession(sessions))

	req := httptest.NewRequest(http.MethodGet, "/api/enrollment", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "65f0c0ffee0000000000abcd/9876543210", rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/enrollment?token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/enrollment", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/enrollment", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}
