package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/controllers"
	"github.com/HSouheill/enrollment_backend/middleware"
	"github.com/HSouheill/enrollment_backend/utils"
)

// RegisterEnrollmentRoutes sets up enrollment, verification and dashboard routes
func RegisterEnrollmentRoutes(e *echo.Echo, ec *controllers.EnrollmentController, sessions *utils.SessionTokens) {
	api := e.Group("/api")
	api.POST("/enroll", ec.Enroll)
	api.POST("/verify", ec.Verify)

	dashboard := api.Group("/enrollment", middleware.RequireSession(sessions))
	dashboard.GET("", ec.GetEnrollment)
	dashboard.GET("/qr", ec.EnrollmentQR)
}
