package model

import "time"

// SlotStatus is the status of a single occupancy record. The full transition
// table lives in the booking package.
type SlotStatus string

const (
	SlotFree           SlotStatus = "FREE" // implicit, never stored
	SlotHeld           SlotStatus = "HELD"
	SlotAdvancePending SlotStatus = "ADVANCE_PENDING"
	SlotAdvancePaid    SlotStatus = "ADVANCE_PAID"
	SlotConfirmed      SlotStatus = "CONFIRMED"
	SlotCancelled      SlotStatus = "CANCELLED"
)

// BookingStatus mirrors the aggregate state of a booking's occupancy records.
type BookingStatus string

const (
	BookingHeld           BookingStatus = "HELD"
	BookingAdvancePending BookingStatus = "ADVANCE_PENDING"
	BookingAdvancePaid    BookingStatus = "ADVANCE_PAID"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingCancelled      BookingStatus = "CANCELLED"
	BookingExpired        BookingStatus = "EXPIRED"
)

// OccupancyRecord is the persisted status of one slot (venue, date, slotIndex).
// Records are never deleted, cancellation is a status so the history stays
// queryable. At most one non-cancelled record may exist per key.
type OccupancyRecord struct {
	DTO
	VenueId   uint       `gorm:"index:idx_slot_key" json:"venueId"`
	Date      string     `gorm:"size:10;index:idx_slot_key" json:"date"` // YYYY-MM-DD
	SlotIndex int        `gorm:"index:idx_slot_key" json:"slotIndex"`
	Status    SlotStatus `gorm:"size:20;index" json:"status"`
	Price     float64    `json:"price"` // venue price captured at hold time
	BookingId uint       `gorm:"index" json:"bookingId"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type Booking struct {
	DTO
	PublicCode    string        `gorm:"size:20;uniqueIndex" json:"publicCode"` // BKG-XXXXXXXX
	CustomerId    *uint         `json:"customerId,omitempty"`                  // null for guest bookings
	Customer      *Customer     `json:"customer,omitempty"`
	VenueId       uint          `json:"venueId"`
	Venue         Venue         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:VenueId" json:"venue"`
	Date          string        `gorm:"size:10;index" json:"date"`
	Status        BookingStatus `gorm:"size:20;index" json:"status"`
	TotalAmount   float64       `json:"totalAmount"`
	AdvanceAmount float64       `json:"advanceAmount"`
	DiscountCode  string        `gorm:"size:30" json:"discountCode,omitempty"`
	Phone         string        `gorm:"size:20" json:"phone"`
	HoldExpiresAt time.Time     `json:"holdExpiresAt"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	ConfirmedAt   *time.Time    `json:"confirmedAt,omitempty"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty"`
	CancelReason  string        `json:"cancelReason,omitempty"`

	Slots []OccupancyRecord `gorm:"foreignKey:BookingId" json:"slots"`
}

type CreateBookingInput struct {
	VenueId     uint   `json:"venueId" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	SlotIndexes []int  `json:"slotIndexes" validate:"required,min=1,dive,gte=0"`
}

type SubmitContactInput struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type CancelBookingInput struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type ApplyDiscountInput struct {
	DiscountCode string `json:"discountCode" validate:"required"`
}

type FilterBookingInput struct {
	Pagination
	VenueId uint   `query:"venueId" validate:"omitempty,gt=0"`
	Date    string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Status  string `query:"status" validate:"omitempty,oneof=HELD ADVANCE_PENDING ADVANCE_PAID CONFIRMED CANCELLED EXPIRED"`
}

// SlotAvailability is one row of the availability query, covering every grid
// slot of a (venue, date) whether or not a record exists.
type SlotAvailability struct {
	SlotIndex int        `json:"slotIndex"`
	Start     string     `json:"start"` // "08:00"
	End       string     `json:"end"`   // "09:00"
	Status    SlotStatus `json:"status"`
}

type BookingResponse struct {
	PublicCode    string             `json:"publicCode"`
	VenueName     string             `json:"venueName"`
	Category      string             `json:"category"`
	Date          string             `json:"date"`
	Status        BookingStatus      `json:"status"`
	TotalAmount   float64            `json:"totalAmount"`
	AdvanceAmount float64            `json:"advanceAmount"`
	Phone         string             `json:"phone"`
	HoldExpiresAt time.Time          `json:"holdExpiresAt"`
	Slots         []SlotAvailability `json:"slots"`
	CreatedAt     time.Time          `json:"createdAt"`
}
