package services

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/HSouheill/enrollment_backend/models"
)

// OrderGateway opens payment orders with the provider.
type OrderGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.Order, error)
}

// RazorpayGateway creates orders through the Razorpay Orders API
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder returns when the provider answers or ctx is done. The SDK call
// itself is not cancellable and finishes in the background.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.Order, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)

	go func() {
		body, err := g.client.Order.Create(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receipt,
		}, nil)
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return orderFromBody(r.body)
	}
}

func orderFromBody(body map[string]interface{}) (*models.Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("payment provider returned no order id")
	}

	order := &models.Order{ID: id}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	return order, nil
}
