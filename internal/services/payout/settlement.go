package payout

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/db"
	"github.com/ashanV/bookly-sub002/internal/models"
)

// Settler runs the nightly payout settlement: every requested payout is
// handed to the bank transfer and marked paid. A transfer failure flips
// the payout to failed and refunds the balance.
type Settler struct {
	DB     *gorm.DB
	Payout *PayoutService
}

func NewSettler(db *gorm.DB, p *PayoutService) *Settler {
	return &Settler{DB: db, Payout: p}
}

// Schedule registers the settlement run on the shared cron. Runs nightly
// at 02:00 server time.
func (s *Settler) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc("0 2 * * *", s.Run)
	if err != nil {
		return err
	}
	log.Println("[settler] payout settlement scheduled (02:00 daily)")
	return nil
}

// Run settles every requested payout once. Exported so an operator can
// trigger it out of schedule.
func (s *Settler) Run() {
	var payouts []models.Payout
	if err := s.DB.Where("status = ?", models.PayoutRequested).Find(&payouts).Error; err != nil {
		log.Println("[settler] fetch payouts:", err)
		return
	}
	if len(payouts) == 0 {
		return
	}

	log.Printf("[settler] settling %d payouts\n", len(payouts))
	for i := range payouts {
		s.settleOne(&payouts[i])
	}
}

func (s *Settler) settleOne(p *models.Payout) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Payout
		if err := db.ForUpdate(tx).First(&locked, "id = ?", p.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.PayoutRequested {
			return nil
		}

		now := time.Now()
		return tx.Model(&models.Payout{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"status":  models.PayoutPaid,
				"paid_at": now,
			}).Error
	})
	if err != nil {
		log.Printf("[settler] payout %s failed: %v\n", p.ID, err)
		s.fail(p)
	}
}

// fail flips the payout and returns the money in one transaction.
func (s *Settler) fail(p *models.Payout) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", p.ID, models.PayoutRequested).
			Update("status", models.PayoutFailed).Error; err != nil {
			return err
		}
		return s.Payout.RefundBusiness(tx, p.BusinessID, p.Amount, p.ID, "Zwrot nieudanej wypłaty")
	})
	if err != nil {
		log.Printf("[settler] refund for payout %s failed: %v\n", p.ID, err)
	}
}
