package payout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/db"
	"github.com/ashanV/bookly-sub002/internal/models"
)

type PayoutService struct {
	DB *gorm.DB
}

func NewPayoutService(db *gorm.DB) *PayoutService {
	return &PayoutService{DB: db}
}

// CreditBusiness adds funds to the business balance and writes the ledger
// row. Call inside a DB transaction.
func (s *PayoutService) CreditBusiness(tx *gorm.DB, businessID uuid.UUID, amount int64, referenceID uuid.UUID, description string) error {
	if amount <= 0 {
		return errors.New("amount to credit must be greater than zero")
	}

	result := tx.Model(&models.Business{}).
		Where("id = ?", businessID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("business not found: %s", businessID)
	}

	ledger := models.LedgerEntry{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Amount:      amount,
		Type:        models.LedgerCredit,
		Description: description,
		ReferenceID: &referenceID,
	}
	return tx.Create(&ledger).Error
}

// DebitBusiness deducts funds for a payout request. Refuses to let the
// balance go negative. Call inside a DB transaction.
func (s *PayoutService) DebitBusiness(tx *gorm.DB, businessID uuid.UUID, amount int64, referenceID uuid.UUID, description string) error {
	if amount <= 0 {
		return errors.New("amount to debit must be greater than zero")
	}

	var biz models.Business
	if err := db.ForUpdate(tx).First(&biz, "id = ?", businessID).Error; err != nil {
		return err
	}
	if biz.Balance < amount {
		return errors.New("insufficient balance")
	}

	result := tx.Model(&models.Business{}).
		Where("id = ? AND balance >= ?", businessID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("failed to deduct balance: business not found or insufficient balance")
	}

	ledger := models.LedgerEntry{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Amount:      amount,
		Type:        models.LedgerDebit,
		Description: description,
		ReferenceID: &referenceID,
	}
	return tx.Create(&ledger).Error
}

// RefundBusiness returns funds after a failed payout and writes a refund
// ledger row. Call inside a DB transaction.
func (s *PayoutService) RefundBusiness(tx *gorm.DB, businessID uuid.UUID, amount int64, referenceID uuid.UUID, description string) error {
	if amount <= 0 {
		return errors.New("amount to refund must be greater than zero")
	}

	result := tx.Model(&models.Business{}).
		Where("id = ?", businessID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("business not found: %s", businessID)
	}

	ledger := models.LedgerEntry{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Amount:      amount,
		Type:        models.LedgerRefund,
		Description: description,
		ReferenceID: &referenceID,
	}
	return tx.Create(&ledger).Error
}
