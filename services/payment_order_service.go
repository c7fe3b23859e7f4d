package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/utils"
)

// PaymentOrderService opens provider orders for the fixed course price.
type PaymentOrderService struct {
	gateway  OrderGateway
	amount   int64
	currency string
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewPaymentOrderService(gateway OrderGateway, amount int64, currency string, logger zerolog.Logger) *PaymentOrderService {
	return &PaymentOrderService{
		gateway:  gateway,
		amount:   amount,
		currency: currency,
		timeout:  15 * time.Second,
		logger:   logger.With().Str("component", "payment_order").Logger(),
	}
}

// CreateOrder requests an order handle. Zero amount or empty currency take the course defaults.
func (s *PaymentOrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	amount := req.Amount
	if amount == 0 {
		amount = s.amount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}
	if amount != s.amount {
		return nil, utils.ValidationError("Invalid order amount")
	}
	if currency != s.currency {
		return nil, utils.ValidationError("Unsupported currency")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Razorpay caps receipts at 40 characters
	receipt := "receipt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	order, err := s.gateway.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		s.logger.Error().Err(err).Str("receipt", receipt).Msg("order creation failed")
		if utils.IsTimeout(err) {
			return nil, utils.TimeoutError("Payment provider timed out", err)
		}
		return nil, utils.UpstreamError(err.Error(), err)
	}

	if order.Amount == 0 {
		order.Amount = amount
	}
	if order.Currency == "" {
		order.Currency = currency
	}
	s.logger.Info().Str("order_id", order.ID).Int64("amount", order.Amount).Msg("order created")
	return order, nil
}
