// models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is the payment state of an enrollment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// EnrollmentRecord is the persisted user/enrollment document
type EnrollmentRecord struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Country       string             `json:"country" bson:"country"`
	Mobile        string             `json:"mobile" bson:"mobile"`
	Email         string             `json:"email" bson:"email"`
	OneTimeCode   string             `json:"-" bson:"otp"` // bcrypt hash
	CodeExpiresAt time.Time          `json:"-" bson:"otpExpires"`
	IsVerified    bool               `json:"isVerified" bson:"isVerified"`
	PaymentID     *string            `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	OrderID       *string            `json:"orderId,omitempty" bson:"orderId,omitempty"`
	PaymentStatus PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	AmountPaid    *float64           `json:"amountPaid,omitempty" bson:"amountPaid,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsPaid reports whether the payment has been confirmed.
func (r *EnrollmentRecord) IsPaid() bool {
	return r.PaymentStatus == PaymentCompleted
}

// CodeValidAt reports whether the one-time code is still usable at now.
func (r *EnrollmentRecord) CodeValidAt(now time.Time) bool {
	return r.CodeExpiresAt.After(now)
}

// PaymentUpdate carries the fields set on a confirmed payment
type PaymentUpdate struct {
	PaymentID  string
	OrderID    string
	AmountPaid float64
}

// EnrollRequest is the body of POST /api/enroll
type EnrollRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country" validate:"required"`
	Mobile  string `json:"mobile" validate:"required,mobile10"`
	Email   string `json:"email" validate:"required,basicemail"`
}

// EnrollResponse is the success body of POST /api/enroll
type EnrollResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	OTP          string `json:"otp,omitempty"`
	EnrollmentID string `json:"enrollmentId"`
	SessionToken string `json:"sessionToken"`
}

// EnrollmentView is the dashboard projection of a record
type EnrollmentView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Country       string        `json:"country"`
	Email         string        `json:"email"`
	Mobile        string        `json:"mobile"`
	IsVerified    bool          `json:"isVerified"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	AmountPaid    *float64      `json:"amountPaid,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// NewEnrollmentView builds the dashboard projection
func NewEnrollmentView(r *EnrollmentRecord) EnrollmentView {
	return EnrollmentView{
		ID:            r.ID.Hex(),
		Name:          r.Name,
		Country:       r.Country,
		Email:         r.Email,
		Mobile:        r.Mobile,
		IsVerified:    r.IsVerified,
		PaymentStatus: r.PaymentStatus,
		AmountPaid:    r.AmountPaid,
		CreatedAt:     r.CreatedAt,
	}
}

// EnrollmentResponse is the body of GET /api/enrollment
type EnrollmentResponse struct {
	Success    bool           `json:"success"`
	Enrollment EnrollmentView `json:"enrollment"`
}
