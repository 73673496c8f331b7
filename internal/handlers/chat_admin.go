package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/chatsync"
	"github.com/ashanV/bookly-sub002/internal/db"
	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/support"
)

type UpdateConversationReq struct {
	Status      *string `json:"status"`
	SupportID   *string `json:"supportId"`
	SupportName *string `json:"supportName"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateConversation applies a status change and/or an assignment change.
// Status goes through the transition table; assignment is independent of
// status and idempotent, with an empty supportId clearing it.
func (h *ChatHandler) UpdateConversation(c *fiber.Ctx) error {
	var req UpdateConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	convID, err := uuid.Parse(models.NormalizeID(c.Params("id")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid conversation ID",
		})
	}

	var conv models.Conversation
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).First(&conv, "id = ?", convID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}

		if req.Status != nil {
			next, err := support.Transition(conv.Status, models.ConversationStatus(*req.Status))
			if err != nil {
				return err
			}
			conv.Status = next
			updates["status"] = next
		}

		if req.SupportID != nil {
			if *req.SupportID == "" {
				conv.SupportID = nil
				conv.SupportName = nil
				updates["support_id"] = nil
				updates["support_name"] = nil
			} else {
				sid, err := uuid.Parse(*req.SupportID)
				if err != nil {
					return err
				}
				var op models.User
				if err := tx.First(&op, "id = ? AND role IN ?", sid,
					[]models.Role{models.RoleSupport, models.RoleAdmin}).Error; err != nil {
					return err
				}
				name := op.Name
				if req.SupportName != nil && *req.SupportName != "" {
					name = *req.SupportName
				}
				conv.SupportID = &sid
				conv.SupportName = &name
				updates["support_id"] = sid
				updates["support_name"] = name
			}
		}

		if req.Priority != nil && *req.Priority != "" {
			conv.Priority = models.ConversationPriority(*req.Priority)
			updates["priority"] = conv.Priority
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(updates).Error
	})
	if txErr != nil {
		if _, ok := txErr.(*support.ErrInvalidTransition); ok {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": txErr.Error(),
			})
		}
		if txErr == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Conversation not found",
			})
		}
		log.Println("Error updating conversation:", txErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update conversation",
		})
	}

	h.publishConversationUpdated(c.Context(), &conv)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.view(&conv, string(models.RoleAdmin), time.Now()),
	})
}

// DeleteConversation soft-deletes a live conversation (move to trash) and
// permanently removes one that is already trashed. Hard delete takes the
// messages with it.
func (h *ChatHandler) DeleteConversation(c *fiber.Ctx) error {
	convID, err := uuid.Parse(models.NormalizeID(c.Params("id")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid conversation ID",
		})
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", convID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Conversation not found",
		})
	}

	if support.CanPurge(conv.Status) {
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Conversation{}, "id = ?", conv.ID).Error
		})
		if err != nil {
			log.Println("Error deleting conversation:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete conversation",
			})
		}

		payload := fiber.Map{"id": models.NormalizeID(conv.ID.String())}
		h.Gateway.Publish(c.Context(), chatsync.ChannelAdmin, chatsync.EventConversationDeleted, payload)
		h.Gateway.Publish(c.Context(), chatsync.ChatChannel(conv.ID.String()), chatsync.EventConversationDeleted, payload)

		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": "permanent"}})
	}

	next, err := support.Transition(conv.Status, models.StatusDeleted)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := h.DB.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Update("status", next).Error; err != nil {
		log.Println("Error trashing conversation:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete conversation",
		})
	}
	conv.Status = next

	h.publishConversationUpdated(c.Context(), &conv)

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": "trash"}})
}

type BulkReq struct {
	Action string   `json:"action" validate:"required"`
	IDs    []string `json:"ids" validate:"required,min=1"`
}

// BulkResult reports what happened to one id of a bulk request.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkUpdate applies one action to many conversations, best-effort: items
// whose current status makes the transition illegal are skipped and
// reported, the rest go through.
func (h *ChatHandler) BulkUpdate(c *fiber.Ctx) error {
	var req BulkReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	action := support.BulkAction(req.Action)
	target, isStatusChange := support.BulkTarget(action)
	if !isStatusChange && action != support.BulkPurge {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown bulk action",
		})
	}

	results := make([]BulkResult, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id := models.NormalizeID(strings.TrimSpace(raw))
		results = append(results, h.bulkOne(c, id, action, target, isStatusChange))
	}

	return c.JSON(fiber.Map{"success": true, "data": results})
}

func (h *ChatHandler) bulkOne(c *fiber.Ctx, id string, action support.BulkAction, target models.ConversationStatus, isStatusChange bool) BulkResult {
	convID, err := uuid.Parse(id)
	if err != nil {
		return BulkResult{ID: id, Error: "invalid id"}
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", convID).Error; err != nil {
		return BulkResult{ID: id, Error: "not found"}
	}

	if action == support.BulkPurge {
		if !support.CanPurge(conv.Status) {
			return BulkResult{ID: id, Error: "only trashed conversations can be deleted permanently"}
		}
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Conversation{}, "id = ?", conv.ID).Error
		})
		if err != nil {
			log.Println("Error purging conversation:", err)
			return BulkResult{ID: id, Error: "delete failed"}
		}
		payload := fiber.Map{"id": id}
		h.Gateway.Publish(c.Context(), chatsync.ChannelAdmin, chatsync.EventConversationDeleted, payload)
		h.Gateway.Publish(c.Context(), chatsync.ChatChannel(id), chatsync.EventConversationDeleted, payload)
		return BulkResult{ID: id, OK: true}
	}

	if !isStatusChange {
		return BulkResult{ID: id, Error: "unknown action"}
	}

	next, err := support.Transition(conv.Status, target)
	if err != nil {
		return BulkResult{ID: id, Error: err.Error()}
	}
	if next == conv.Status {
		// idempotent no-op, nothing to publish
		return BulkResult{ID: id, OK: true}
	}
	if err := h.DB.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Update("status", next).Error; err != nil {
		log.Println("Error updating conversation:", err)
		return BulkResult{ID: id, Error: "update failed"}
	}
	conv.Status = next
	h.publishConversationUpdated(c.Context(), &conv)
	return BulkResult{ID: id, OK: true}
}
