package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/utils"
)

const (
	contextKeyEnrollmentID = "enrollmentId"
	contextKeyMobile       = "mobile"
)

// RequireSession rejects requests without a valid enrollment session token.
// The token is read from "Authorization: Bearer" or the token query parameter.
func RequireSession(sessions *utils.SessionTokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				token = c.QueryParam("token")
			}

			claims, err := sessions.Parse(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"error":   "Invalid or expired session",
				})
			}

			c.Set(contextKeyEnrollmentID, claims.EnrollmentID)
			c.Set(contextKeyMobile, claims.Mobile)
			return next(c)
		}
	}
}

// EnrollmentIDFromContext returns the enrollment bound by RequireSession
func EnrollmentIDFromContext(c echo.Context) string {
	id, _ := c.Get(contextKeyEnrollmentID).(string)
	return id
}

// MobileFromContext returns the session's mobile number
func MobileFromContext(c echo.Context) string {
	mobile, _ := c.Get(contextKeyMobile).(string)
	return mobile
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
