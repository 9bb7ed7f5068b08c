package model

import "time"

// Payment tracks an advance-payment attempt through the external gateway
// (JazzCash / EasyPaisa). The gateway integration itself is a stub boundary,
// only the intake callback mutates booking state.
type Payment struct {
	DTO
	PaymentCode string     `gorm:"size:30;uniqueIndex" json:"paymentCode"` // PAY-XXXXXXXX
	BookingId   uint       `gorm:"index" json:"bookingId"`
	Booking     Booking    `gorm:"foreignKey:BookingId" json:"-"`
	Amount      float64    `json:"amount"`
	Method      string     `gorm:"size:20" json:"method"` // JAZZCASH, EASYPAISA
	Status      string     `gorm:"size:20" json:"status"` // PENDING, PAID, FAILED
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

type CreatePaymentInput struct {
	BookingCode string `json:"bookingCode" validate:"required"`
	Method      string `json:"method" validate:"required,oneof=JAZZCASH EASYPAISA"`
}

// GatewayCallbackInput is what the payment collaborator posts back after the
// customer has paid. Idempotent on paymentCode.
type GatewayCallbackInput struct {
	PaymentCode string `json:"paymentCode" validate:"required"`
	Success     bool   `json:"success"`
	Reference   string `json:"reference" validate:"omitempty,max=60"`
}
