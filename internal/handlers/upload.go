package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ashanV/bookly-sub002/internal/services/uploads"
)

type UploadHandler struct {
	Signer *uploads.Signer
}

func NewUploadHandler(signer *uploads.Signer) *UploadHandler {
	return &UploadHandler{Signer: signer}
}

// GetSignature hands the widget one-shot credentials for a direct upload
// to the media host. The file bytes never pass through this server.
func (h *UploadHandler) GetSignature(c *fiber.Ctx) error {
	creds := h.Signer.Sign(time.Now())
	return c.JSON(fiber.Map{"success": true, "data": creds})
}
