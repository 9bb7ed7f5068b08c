package model

type Account struct {
	DTO
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;default:'ADMIN'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

type AdminLoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
