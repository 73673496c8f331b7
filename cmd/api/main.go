package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ashanV/bookly-sub002/internal/config"
	"github.com/ashanV/bookly-sub002/internal/db"
	"github.com/ashanV/bookly-sub002/internal/handlers"
	"github.com/ashanV/bookly-sub002/internal/middleware"
	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/realtime"
	"github.com/ashanV/bookly-sub002/internal/services/payout"
	"github.com/ashanV/bookly-sub002/internal/services/uploads"
	"github.com/ashanV/bookly-sub002/internal/support"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	gateway := realtime.NewGateway(rdb, hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gateway.Run(ctx)

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Service{},
		&models.Booking{},
		&models.Conversation{},
		&models.Message{},
		&models.LedgerEntry{},
		&models.Payout{},
	); err != nil {
		log.Fatal(err)
	}

	payoutSvc := payout.NewPayoutService(gdb)
	signer := uploads.NewSigner(cfg.UploadAPIKey, cfg.UploadSecret)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	chatH := handlers.NewChatHandler(gdb, hub, gateway, cfg.GuestTokenKey, cfg.JWTSecret)
	adminH := handlers.NewAdminHandler(gdb)
	uploadH := handlers.NewUploadHandler(signer)
	bookingH := handlers.NewBookingHandler(gdb, payoutSvc)
	dashboardH := handlers.NewDashboardHandler(gdb)
	financeH := handlers.NewFinanceHandler(gdb, payoutSvc)

	sweeper := support.NewSweeper(gdb, gateway)
	go sweeper.Run(ctx)

	cr := cron.New()
	settler := payout.NewSettler(gdb, payoutSvc)
	if err := settler.Schedule(cr); err != nil {
		log.Fatal(err)
	}
	cr.Start()
	defer cr.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// chat surface: guests work without an account, so auth is optional
	// here and the handlers resolve identity from the JWT locals when
	// present and the guest cookie otherwise
	chat := api.Group("/chat", middleware.OptionalJWT(cfg.JWTSecret))
	chat.Post("/conversations", chatH.CreateConversation)
	chat.Get("/conversations", chatH.GetConversations)
	chat.Get("/messages", chatH.GetMessages)
	chat.Post("/messages", chatH.SendMessage)
	chat.Post("/messages/:conversationId/read", chatH.MarkAsRead)
	chat.Post("/typing", chatH.Typing)
	chat.Get("/unread", chatH.UnreadTotal)

	// public booking form
	api.Post("/bookings", bookingH.CreateBooking)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", func(c *fiber.Ctx) error {
		uid := c.Locals("userId")

		var user models.User
		if err := gdb.First(&user, "id = ?", uid).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	})

	// operator console
	operators := middleware.RequireRoles("support", "admin")
	protected.Patch("/chat/conversations/:id", operators, chatH.UpdateConversation)
	protected.Delete("/chat/conversations/:id", operators, chatH.DeleteConversation)
	protected.Post("/chat/conversations/bulk", operators, chatH.BulkUpdate)
	protected.Get("/admin/roles", operators, adminH.GetRoles)
	protected.Get("/admin/stats", operators, adminH.GetStats)

	// uploads (signed credentials for the widget attach button)
	protected.Get("/upload/signature", uploadH.GetSignature)

	// business owner surface
	business := protected.Group("/business", middleware.RequireRoles("business", "admin"))
	business.Post("/", bookingH.CreateBusiness)
	business.Get("/me", bookingH.GetBusiness)
	business.Post("/services", bookingH.CreateService)
	business.Get("/services", bookingH.GetServices)
	business.Get("/bookings", bookingH.GetBookings)
	business.Patch("/bookings/:id/status", bookingH.UpdateBookingStatus)
	business.Get("/dashboard", dashboardH.GetStats)
	business.Get("/finance/earnings", financeH.GetEarnings)
	business.Get("/finance/ledger", financeH.GetLedger)
	business.Post("/finance/payouts", financeH.RequestPayout)
	business.Get("/finance/payouts", financeH.GetPayouts)

	// WebSocket endpoint; auth happens inside the handler (cookie or
	// guest token), the upgrade cannot pass through the JWT middleware
	app.Get("/ws/chat", websocket.New(chatH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
