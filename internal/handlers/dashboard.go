package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// GetStats is the business owner's dashboard header: booking counts,
// upcoming slots, month-to-date earnings and the unread chat badge.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var biz models.Business
	if err := h.DB.First(&biz, "owner_id = ?", uid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Business not found",
		})
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var pending, confirmed, upcoming int64
	if err := h.DB.Model(&models.Booking{}).
		Where("business_id = ? AND status = ?", biz.ID, models.BookingPending).
		Count(&pending).Error; err != nil {
		log.Println("Error counting bookings:", err)
	}
	if err := h.DB.Model(&models.Booking{}).
		Where("business_id = ? AND status = ?", biz.ID, models.BookingConfirmed).
		Count(&confirmed).Error; err != nil {
		log.Println("Error counting bookings:", err)
	}
	if err := h.DB.Model(&models.Booking{}).
		Where("business_id = ? AND status IN ? AND starts_at > ?",
			biz.ID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			now).
		Count(&upcoming).Error; err != nil {
		log.Println("Error counting bookings:", err)
	}

	var monthEarnings int64
	row := h.DB.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("business_id = ? AND type = ? AND created_at >= ?", biz.ID, models.LedgerCredit, monthStart).
		Row()
	if err := row.Scan(&monthEarnings); err != nil {
		log.Println("Error summing earnings:", err)
	}

	var unreadChats int64
	if err := h.DB.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ? AND messages.sender_type = ? AND messages.read = false",
			models.NormalizeID(uid.String()), models.SenderSupport).
		Count(&unreadChats).Error; err != nil {
		log.Println("Error counting unread messages:", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"balance":          biz.Balance,
			"pending_bookings": pending,
			"active_bookings":  confirmed,
			"upcoming":         upcoming,
			"month_earnings":   monthEarnings,
			"unread_chats":     unreadChats,
		},
	})
}
