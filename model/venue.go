package model

type Venue struct {
	DTO
	PublicSlug   string  `gorm:"size:80;uniqueIndex" json:"publicSlug"`
	Name         string  `gorm:"not null" validate:"required" json:"name"`
	Category     string  `gorm:"size:30;not null" json:"category"` // Basketball, Tennis, Badminton, Volleyball, Futsal, Cricket
	PricePerHour float64 `gorm:"not null" json:"pricePerHour"`
	Description  string  `gorm:"type:text" json:"description"`
	IsActive     bool    `gorm:"default:true" json:"isActive"`

	Media []VenueMedia `gorm:"foreignKey:VenueId" json:"media"`
}

// VenueMedia holds opaque URLs of uploaded images/videos. Upload and storage
// happen at Cloudinary, the core only keeps the references.
type VenueMedia struct {
	DTO
	VenueId uint   `gorm:"index" json:"venueId"`
	Kind    string `gorm:"size:10" json:"kind"` // IMAGE, VIDEO
	URL     string `gorm:"not null" json:"url"`
}

type CreateVenueInput struct {
	Name         string   `json:"name" validate:"required"`
	Category     string   `json:"category" validate:"required,oneof=Basketball Tennis Badminton Volleyball Futsal Cricket"`
	PricePerHour float64  `json:"pricePerHour" validate:"required,gt=0"`
	Description  string   `json:"description" validate:"omitempty"`
	ImageURLs    []string `json:"imageUrls" validate:"omitempty,dive,url"`
	VideoURLs    []string `json:"videoUrls" validate:"omitempty,dive,url"`
}

type UpdateVenueInput struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category" validate:"omitempty,oneof=Basketball Tennis Badminton Volleyball Futsal Cricket"`
	PricePerHour *float64 `json:"pricePerHour" validate:"omitempty,gt=0"`
	Description  *string  `json:"description"`
	IsActive     *bool    `json:"isActive"`
}

type FilterVenueInput struct {
	Pagination
	Category string `query:"category"`
	Search   string `query:"search"`
}
