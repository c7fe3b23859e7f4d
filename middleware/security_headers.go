// middleware/security_headers.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// CheckoutDomains are the payment widget origins the enrollment page loads.
var CheckoutDomains = []string{"https://checkout.razorpay.com", "https://api.razorpay.com"}

type SecurityConfig struct {
	AllowedDomains []string
	AllowInlineJS  bool
	AllowEval      bool
}

func SecurityHeadersWithConfig(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Security headers
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			// Remove potentially sensitive headers
			h.Del("Server")
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}

func buildCSP(config SecurityConfig) string {
	csp := []string{
		"default-src 'self'",
		"img-src 'self' data: https:",
		"style-src 'self' 'unsafe-inline'",
	}

	script := "script-src 'self'"
	if config.AllowInlineJS {
		script += " 'unsafe-inline'"
	}
	if config.AllowEval {
		script += " 'unsafe-eval'"
	}
	if len(config.AllowedDomains) > 0 {
		script += " " + strings.Join(config.AllowedDomains, " ")
	}
	csp = append(csp, script)

	if len(config.AllowedDomains) > 0 {
		domains := strings.Join(config.AllowedDomains, " ")
		csp = append(csp, "connect-src 'self' "+domains, "frame-src "+domains)
	}

	return strings.Join(csp, "; ")
}
