package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/support"
)

type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// GetRoles returns the operator roster for the assignment dropdown. Names
// are split into first/last the way the console renders them.
func (h *AdminHandler) GetRoles(c *fiber.Ctx) error {
	var users []models.User
	err := h.DB.
		Where("role IN ? AND is_active = true", []models.Role{models.RoleSupport, models.RoleAdmin}).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		log.Println("Error fetching operators:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch operators",
		})
	}

	operators := make([]models.Operator, 0, len(users))
	for _, u := range users {
		first, last := splitName(u.Name)
		operators = append(operators, models.Operator{
			ID:        u.ID.String(),
			FirstName: first,
			LastName:  last,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": operators})
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// GetStats is the operator dashboard header: live counts per status plus
// how many threads currently wait too long for a reply.
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	type statusCount struct {
		Status models.ConversationStatus
		Count  int64
	}

	var rows []statusCount
	err := h.DB.Model(&models.Conversation{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		log.Println("Error counting conversations:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch stats",
		})
	}

	byStatus := map[models.ConversationStatus]int64{}
	for _, r := range rows {
		byStatus[r.Status] = r.Count
	}

	var waitingForReply []models.Conversation
	err = h.DB.
		Where("status NOT IN ? AND last_message_by = ?",
			[]models.ConversationStatus{models.StatusClosed, models.StatusDeleted},
			models.SenderUser).
		Find(&waitingForReply).Error
	if err != nil {
		log.Println("Error fetching conversations:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch stats",
		})
	}

	now := time.Now()
	var overdue int64
	for i := range waitingForReply {
		if sla := support.ComputeSLA(&waitingForReply[i], now); sla != nil && sla.Overdue {
			overdue++
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"open":       byStatus[models.StatusOpen],
			"inProgress": byStatus[models.StatusInProgress],
			"waiting":    byStatus[models.StatusWaiting],
			"resolved":   byStatus[models.StatusResolved],
			"closed":     byStatus[models.StatusClosed],
			"deleted":    byStatus[models.StatusDeleted],
			"overdue":    overdue,
		},
	})
}
