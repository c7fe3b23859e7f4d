// controllers/enrollment_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/enrollment_backend/middleware"
	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/services"
	"github.com/HSouheill/enrollment_backend/utils"
)

const (
	requestTimeout = 10 * time.Second
	qrSize         = 256
)

// EnrollmentController serves enrollment, code verification and the dashboard
type EnrollmentController struct {
	enrollments   *services.EnrollmentService
	verifications *services.VerificationService
	store         repositories.EnrollmentStore
}

// NewEnrollmentController creates a new enrollment controller
func NewEnrollmentController(enrollments *services.EnrollmentService, verifications *services.VerificationService, store repositories.EnrollmentStore) *EnrollmentController {
	return &EnrollmentController{enrollments: enrollments, verifications: verifications, store: store}
}

// Enroll handler creates an enrollment record and issues a one-time code
func (ec *EnrollmentController) Enroll(c echo.Context) error {
	var req models.EnrollRequest
	if err := c.Bind(&req); err != nil {
		return utils.ValidationError("Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := ec.enrollments.Enroll(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.EnrollResponse{
		Success:      true,
		Message:      res.Message,
		OTP:          res.Code,
		EnrollmentID: res.Record.ID.Hex(),
		SessionToken: res.SessionToken,
	})
}

// Verify handler checks a submitted one-time code
func (ec *EnrollmentController) Verify(c echo.Context) error {
	var req models.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return utils.ValidationError("Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := ec.verifications.Verify(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.VerifyResponse{
		Success: true,
		Name:    rec.Name,
		Message: "Verification successful",
	})
}

// GetEnrollment returns the session's enrollment for the dashboard
func (ec *EnrollmentController) GetEnrollment(c echo.Context) error {
	rec, err := ec.sessionRecord(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.EnrollmentResponse{
		Success:    true,
		Enrollment: models.NewEnrollmentView(rec),
	})
}

// EnrollmentQR returns a PNG QR pass for a paid enrollment
func (ec *EnrollmentController) EnrollmentQR(c echo.Context) error {
	rec, err := ec.sessionRecord(c)
	if err != nil {
		return err
	}
	if !rec.IsPaid() || rec.PaymentID == nil {
		return utils.ValidationError("Enrollment is not paid yet")
	}

	png, err := utils.QRCodePNG("enroll://"+rec.ID.Hex()+"/"+*rec.PaymentID, qrSize)
	if err != nil {
		return utils.InternalError(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (ec *EnrollmentController) sessionRecord(c echo.Context) (*models.EnrollmentRecord, error) {
	id, err := primitive.ObjectIDFromHex(middleware.EnrollmentIDFromContext(c))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := ec.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.RecordNotFoundError("Enrollment not found")
	}
	if err != nil {
		return nil, err
	}
	// the token must have been issued for this record's mobile
	if rec.Mobile != middleware.MobileFromContext(c) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
	}
	return rec, nil
}
