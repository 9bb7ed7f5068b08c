package model

import "time"

type Discount struct {
	DTO
	Code       string    `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Percentage float64   `gorm:"type:decimal(5,2);not null" json:"percentage"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `gorm:"not null" json:"validUntil"`
	IsActive   bool      `gorm:"default:true" json:"isActive"`
}

type CreateDiscountInput struct {
	Code       string    `json:"code" validate:"required,uppercase,max=30"`
	Percentage float64   `json:"percentage" validate:"required,gt=0,lte=100"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil" validate:"required"`
	IsActive   *bool     `json:"isActive"`
}

type UpdateDiscountInput struct {
	Percentage *float64   `json:"percentage" validate:"omitempty,gt=0,lte=100"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
	IsActive   *bool      `json:"isActive"`
}

type FilterDiscountInput struct {
	Pagination
	IsActive *bool `query:"isActive"`
}
