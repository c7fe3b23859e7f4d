package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/controllers"
)

// RegisterPaymentRoutes sets up order creation and payment confirmation
func RegisterPaymentRoutes(e *echo.Echo, pc *controllers.PaymentController) {
	api := e.Group("/api")
	api.POST("/create-order", pc.CreateOrder)
	api.POST("/verify-payment", pc.VerifyPayment)
}
