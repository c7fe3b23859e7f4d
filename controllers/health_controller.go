package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
)

const healthPingTimeout = 2 * time.Second

// HealthController reports liveness and store connectivity
type HealthController struct {
	store repositories.EnrollmentStore
}

func NewHealthController(store repositories.EnrollmentStore) *HealthController {
	return &HealthController{store: store}
}

// Health always answers 200; dbStatus carries the store state.
func (hc *HealthController) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	dbStatus := "connected"
	if err := hc.store.Ping(ctx); err != nil {
		dbStatus = "disconnected"
	}

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		DBStatus:  dbStatus,
	})
}
