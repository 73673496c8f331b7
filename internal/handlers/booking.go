package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/db"
	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/services/payout"
)

type BookingHandler struct {
	DB     *gorm.DB
	Payout *payout.PayoutService
}

func NewBookingHandler(db *gorm.DB, p *payout.PayoutService) *BookingHandler {
	return &BookingHandler{DB: db, Payout: p}
}

// ownedBusiness loads the caller's business; every business endpoint is
// scoped to it.
func (h *BookingHandler) ownedBusiness(c *fiber.Ctx) (*models.Business, error) {
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

type CreateBusinessReq struct {
	Name     string `json:"name" validate:"required,min=2,max=160"`
	Slug     string `json:"slug" validate:"required,min=2,max=160"`
	Category string `json:"category" validate:"omitempty,max=60"`
	City     string `json:"city" validate:"omitempty,max=80"`
	About    string `json:"about"`
}

func (h *BookingHandler) CreateBusiness(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var req CreateBusinessReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	biz := models.Business{
		OwnerID:  uid,
		Name:     strings.TrimSpace(req.Name),
		Slug:     strings.ToLower(strings.TrimSpace(req.Slug)),
		Category: req.Category,
		City:     req.City,
		About:    req.About,
	}
	if err := h.DB.Create(&biz).Error; err != nil {
		log.Println("Error creating business:", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create business",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": biz})
}

func (h *BookingHandler) GetBusiness(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}
	return c.JSON(fiber.Map{"success": true, "data": biz})
}

type CreateServiceReq struct {
	Name        string `json:"name" validate:"required,min=2,max=160"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min" validate:"required,min=5,max=720"`
	Price       int64  `json:"price" validate:"required,min=0"`
}

func (h *BookingHandler) CreateService(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	var req CreateServiceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	svc := models.Service{
		BusinessID:  biz.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Active:      true,
	}
	if err := h.DB.Create(&svc).Error; err != nil {
		log.Println("Error creating service:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create service",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": svc})
}

func (h *BookingHandler) GetServices(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	var services []models.Service
	if err := h.DB.Where("business_id = ?", biz.ID).Order("created_at ASC").Find(&services).Error; err != nil {
		log.Println("Error fetching services:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch services",
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": services})
}

type CreateBookingReq struct {
	BusinessID    string    `json:"business_id" validate:"required,uuid4"`
	ServiceID     string    `json:"service_id" validate:"required,uuid4"`
	CustomerName  string    `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CustomerPhone string    `json:"customer_phone" validate:"omitempty,max=30"`
	StartsAt      time.Time `json:"starts_at" validate:"required"`
	Note          string    `json:"note"`
}

// CreateBooking is the public booking form. The slot ends DurationMin
// after it starts; overlapping confirmed bookings for the same service are
// rejected.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	businessID, _ := uuid.Parse(req.BusinessID)
	serviceID, _ := uuid.Parse(req.ServiceID)

	var svc models.Service
	if err := h.DB.First(&svc, "id = ? AND business_id = ? AND active = true", serviceID, businessID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	startsAt := req.StartsAt
	endsAt := startsAt.Add(time.Duration(svc.DurationMin) * time.Minute)

	var overlapping int64
	err := h.DB.Model(&models.Booking{}).
		Where("service_id = ? AND status IN ? AND starts_at < ? AND ends_at > ?",
			serviceID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			endsAt, startsAt).
		Count(&overlapping).Error
	if err != nil {
		log.Println("Error checking booking overlap:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create booking",
		})
	}
	if overlapping > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Termin jest już zajęty",
		})
	}

	booking := models.Booking{
		BusinessID:    businessID,
		ServiceID:     serviceID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone: req.CustomerPhone,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Status:        models.BookingPending,
		Price:         svc.Price,
		Note:          req.Note,
	}
	if err := h.DB.Create(&booking).Error; err != nil {
		log.Println("Error creating booking:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create booking",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": booking})
}

func (h *BookingHandler) GetBookings(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	q := h.DB.Where("business_id = ?", biz.ID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", models.BookingStatus(status))
	}

	var bookings []models.Booking
	if err := q.Preload("Service").Order("starts_at DESC").Find(&bookings).Error; err != nil {
		log.Println("Error fetching bookings:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch bookings",
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": bookings})
}

type UpdateBookingReq struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

// UpdateBookingStatus moves a booking along its small lifecycle. Completing
// a booking credits the business balance through the ledger.
func (h *BookingHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	biz, errResp := h.ownedBusiness(c)
	if biz == nil {
		return errResp
	}

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid booking ID",
		})
	}

	var req UpdateBookingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	var booking models.Booking
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).
			First(&booking, "id = ? AND business_id = ?", bookingID, biz.ID).Error; err != nil {
			return err
		}

		next := models.BookingStatus(req.Status)
		if booking.Status == models.BookingCancelled || booking.Status == models.BookingCompleted {
			return gorm.ErrInvalidData
		}
		if next == models.BookingCompleted && booking.Status != models.BookingConfirmed {
			return gorm.ErrInvalidData
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("status", next).Error; err != nil {
			return err
		}
		booking.Status = next

		if next == models.BookingCompleted {
			return h.Payout.CreditBusiness(tx, biz.ID, booking.Price, booking.ID,
				"Rezerwacja zrealizowana: "+booking.CustomerName)
		}
		return nil
	})
	if txErr != nil {
		if txErr == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Booking not found",
			})
		}
		if txErr == gorm.ErrInvalidData {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Status change not allowed",
			})
		}
		log.Println("Error updating booking:", txErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update booking",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": booking})
}
