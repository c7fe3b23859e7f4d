package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/controllers"
	"github.com/HSouheill/enrollment_backend/utils"
	"github.com/HSouheill/enrollment_backend/websocket"
)

// Handlers bundles the controllers mounted by SetupRoutes
type Handlers struct {
	Enrollment *controllers.EnrollmentController
	Payment    *controllers.PaymentController
	Summary    *controllers.SummaryController
	Health     *controllers.HealthController
	WebSocket  *websocket.Handler
	Sessions   *utils.SessionTokens
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h Handlers) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Enrollment backend is running",
			"version": "1.0",
		})
	})
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", h.Health.Health)

	RegisterEnrollmentRoutes(e, h.Enrollment, h.Sessions)
	RegisterPaymentRoutes(e, h.Payment)
	RegisterSummaryRoutes(e, h.Summary)

	if h.WebSocket != nil {
		e.GET("/api/ws", h.WebSocket.HandleWebSocket)
	}
}
