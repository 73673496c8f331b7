package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/services/payout"
)

type FinanceHandler struct {
	DB     *gorm.DB
	Payout *payout.PayoutService
}

func NewFinanceHandler(db *gorm.DB, p *payout.PayoutService) *FinanceHandler {
	return &FinanceHandler{DB: db, Payout: p}
}

func (h *FinanceHandler) ownedBusiness(c *fiber.Ctx) (*models.Business, error) {
	uid, err := getUserUUID(c)
	if err != nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var biz models.Business
	if err := h.DB.First(&biz, "owner_id = ?", uid).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Business not found",
		})
	}
	return &biz, nil
}

// GetEarnings summarizes the business ledger: current balance, lifetime
// credited amount and the month-to-date figure.
func (h *FinanceHandler) GetEarnings(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var total, month int64
	row := h.DB.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("business_id = ? AND type = ?", biz.ID, models.LedgerCredit).
		Row()
	if err := row.Scan(&total); err != nil {
		log.Println("Error summing earnings:", err)
	}
	row = h.DB.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("business_id = ? AND type = ? AND created_at >= ?", biz.ID, models.LedgerCredit, monthStart).
		Row()
	if err := row.Scan(&month); err != nil {
		log.Println("Error summing earnings:", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"balance":        biz.Balance,
			"total_earned":   total,
			"month_earnings": month,
		},
	})
}

// GetLedger returns the balance history, newest first.
func (h *FinanceHandler) GetLedger(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	var entries []models.LedgerEntry
	if err := h.DB.
		Where("business_id = ?", biz.ID).
		Order("created_at DESC").
		Limit(200).
		Find(&entries).Error; err != nil {
		log.Println("Error fetching ledger:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch ledger",
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": entries})
}

type PayoutReq struct {
	Amount int64  `json:"amount" validate:"required,min=1000"`
	IBAN   string `json:"iban" validate:"required,min=15,max=40"`
}

// RequestPayout debits the balance and queues a payout for the settlement
// job. The debit and the payout row land in one transaction, so the
// balance can never pay out twice.
func (h *FinanceHandler) RequestPayout(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	var req PayoutReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	breakdown, _ := json.Marshal(fiber.Map{"balance_before": biz.Balance, "amount": req.Amount})

	p := models.Payout{
		BusinessID:  biz.ID,
		Amount:      req.Amount,
		Status:      models.PayoutRequested,
		IBAN:        req.IBAN,
		Breakdown:   datatypes.JSON(breakdown),
		RequestedAt: time.Now(),
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return h.Payout.DebitBusiness(tx, biz.ID, req.Amount, p.ID, "Wypłata środków")
	})
	if txErr != nil {
		if txErr.Error() == "insufficient balance" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Niewystarczające saldo",
			})
		}
		log.Println("Error requesting payout:", txErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to request payout",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": p})
}

func (h *FinanceHandler) GetPayouts(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	var payouts []models.Payout
	if err := h.DB.
		Where("business_id = ?", biz.ID).
		Order("requested_at DESC").
		Find(&payouts).Error; err != nil {
		log.Println("Error fetching payouts:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch payouts",
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": payouts})
}
