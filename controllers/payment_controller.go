// controllers/payment_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/services"
	"github.com/HSouheill/enrollment_backend/utils"
)

// PaymentController opens payment orders and confirms checkout callbacks
type PaymentController struct {
	orders        *services.PaymentOrderService
	verifications *services.PaymentVerificationService
}

// NewPaymentController creates a new payment controller
func NewPaymentController(orders *services.PaymentOrderService, verifications *services.PaymentVerificationService) *PaymentController {
	return &PaymentController{orders: orders, verifications: verifications}
}

// CreateOrder handler opens a provider order for the course price
func (pc *PaymentController) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.ValidationError("Invalid request body")
	}

	order, err := pc.orders.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CreateOrderResponse{
		Success:  true,
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	})
}

// VerifyPayment handler checks the checkout signature and completes the enrollment
func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	var req models.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return utils.ValidationError("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return utils.ValidationError("Missing required fields")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := pc.verifications.VerifyPayment(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified and enrollment completed",
		Name:    rec.Name,
	})
}
