package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Business is a tenant: a company that takes bookings through the platform.
type Business struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"owner_id"`

	Name     string `gorm:"type:varchar(160);not null" json:"name"`
	Slug     string `gorm:"type:varchar(160);uniqueIndex" json:"slug"`
	Category string `gorm:"type:varchar(60)" json:"category"`
	City     string `gorm:"type:varchar(80)" json:"city"`
	About    string `gorm:"type:text" json:"about"`
	LogoURL  string `gorm:"type:text" json:"logo_url,omitempty"`

	// Balance in grosz; settled through LedgerEntry rows.
	Balance int64 `gorm:"default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner    *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Services []Service `gorm:"foreignKey:BusinessID" json:"services,omitempty"`
}

// Service is a bookable offering of a business.
type Service struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index" json:"business_id"`

	Name        string `gorm:"type:varchar(160);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	DurationMin int    `gorm:"not null" json:"duration_min"`
	Price       int64  `gorm:"not null" json:"price"`
	Active      bool   `gorm:"default:true" json:"active"`

	// Pricing holds optional tier/variant pricing, e.g.
	// { "standard": {...}, "weekend": {...} }
	Pricing datatypes.JSON `json:"pricing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index" json:"business_id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index" json:"service_id"`

	CustomerName  string `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(160);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	StartsAt time.Time     `gorm:"index" json:"starts_at"`
	EndsAt   time.Time     `json:"ends_at"`
	Status   BookingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Price    int64         `json:"price"`
	Note     string        `gorm:"type:text" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Business *Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Service  *Service  `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}
