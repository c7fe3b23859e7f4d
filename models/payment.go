package models

// CreateOrderRequest is the body of POST /api/create-order. Zero values take the course defaults.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Order is a provider-side payment order handle
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// CreateOrderResponse is the success body of POST /api/create-order
type CreateOrderResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentUserData identifies the enrollment a payment belongs to
type PaymentUserData struct {
	Email  string `json:"email" validate:"required"`
	Mobile string `json:"mobile" validate:"required"`
	Name   string `json:"name,omitempty"`
}

// VerifyPaymentRequest is the checkout widget callback payload forwarded by the client
type VerifyPaymentRequest struct {
	PaymentID string          `json:"razorpay_payment_id" validate:"required"`
	OrderID   string          `json:"razorpay_order_id" validate:"required"`
	Signature string          `json:"razorpay_signature" validate:"required"`
	UserData  PaymentUserData `json:"userData" validate:"required"`
}

// VerifyPaymentResponse is the success body of POST /api/verify-payment
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name"`
}
