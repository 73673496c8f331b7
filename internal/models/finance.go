package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LedgerEntryType string

const (
	LedgerCredit LedgerEntryType = "credit"
	LedgerDebit  LedgerEntryType = "debit"
	LedgerRefund LedgerEntryType = "refund"
)

// LedgerEntry is one row of the business balance ledger. Every balance
// mutation writes an entry in the same DB transaction.
type LedgerEntry struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID       `gorm:"type:uuid;index;not null" json:"business_id"`
	Amount     int64           `gorm:"not null" json:"amount"`
	Type       LedgerEntryType `gorm:"type:varchar(20);not null" json:"type"`

	Description string     `gorm:"type:text" json:"description"`
	ReferenceID *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PayoutStatus string

const (
	PayoutRequested PayoutStatus = "requested"
	PayoutPaid      PayoutStatus = "paid"
	PayoutFailed    PayoutStatus = "failed"
)

type Payout struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`

	Amount int64        `gorm:"not null" json:"amount"`
	Status PayoutStatus `gorm:"type:varchar(20);default:'requested';index" json:"status"`
	IBAN   string       `gorm:"type:varchar(40)" json:"iban"`

	// Breakdown keeps the per-booking amounts this payout covers,
	// e.g. {"bookings": [{"id": "...", "amount": 12000}]}
	Breakdown datatypes.JSON `json:"breakdown,omitempty"`

	RequestedAt time.Time  `json:"requested_at"`
	PaidAt      *time.Time `json:"paid_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
