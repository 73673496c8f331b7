package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleBusiness Role = "business"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone string    `gorm:"type:varchar(30)" json:"phone"`

	Password  string `gorm:"not null" json:"-"`
	Role      Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	AvatarURL string `gorm:"type:text" json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Business *Business `gorm:"foreignKey:OwnerID;references:ID" json:"business,omitempty"`
}

// Operator is the roster entry consumed by the assignment UI.
// It is a read-only projection of support/admin users.
type Operator struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
