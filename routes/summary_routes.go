package routes

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/enrollment_backend/controllers"
)

// RegisterSummaryRoutes sets up the PDF summary route with a larger body limit
func RegisterSummaryRoutes(e *echo.Echo, sc *controllers.SummaryController) {
	e.POST("/api/summarize-pdf", sc.SummarizePDF, echoMiddleware.BodyLimit("11M"))
}
