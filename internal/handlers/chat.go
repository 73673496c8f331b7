package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/chatsync"
	"github.com/ashanV/bookly-sub002/internal/models"
	"github.com/ashanV/bookly-sub002/internal/realtime"
	"github.com/ashanV/bookly-sub002/internal/support"
	"github.com/ashanV/bookly-sub002/internal/utils"
)

const guestCookie = "bk_guest"

type ChatHandler struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	Gateway   *realtime.Gateway
	GuestKey  string
	JWTSecret string
}

func NewChatHandler(db *gorm.DB, hub *realtime.Hub, gw *realtime.Gateway, guestKey, jwtSecret string) *ChatHandler {
	return &ChatHandler{DB: db, Hub: hub, Gateway: gw, GuestKey: guestKey, JWTSecret: jwtSecret}
}

// ConversationView is the list DTO. Status label and SLA are derived on
// every render, never stored.
type ConversationView struct {
	ID            string                      `json:"id"`
	Subject       string                      `json:"subject"`
	Category      models.ConversationCategory `json:"category"`
	Status        models.ConversationStatus   `json:"status"`
	StatusLabel   string                      `json:"statusLabel"`
	Priority      models.ConversationPriority `json:"priority"`
	UserID        string                      `json:"userId"`
	UserName      string                      `json:"userName"`
	UserEmail     string                      `json:"userEmail"`
	UserType      models.UserType             `json:"userType"`
	UserAvatar    string                      `json:"userAvatar,omitempty"`
	SupportID     *string                     `json:"supportId"`
	SupportName   *string                     `json:"supportName"`
	LastMessageAt time.Time                   `json:"lastMessageAt"`
	LastMessageBy models.SenderType           `json:"lastMessageBy"`
	UnreadCount   int64                       `json:"unreadCount"`
	CreatedAt     time.Time                   `json:"createdAt"`
	SLA           *support.SLA                `json:"sla"`
}

// unreadFor counts the counterpart's unread messages: an operator counts
// unread user messages, the widget counts unread support messages.
func (h *ChatHandler) unreadFor(convID uuid.UUID, viewerRole string) int64 {
	sender := models.SenderUser
	if viewerRole != string(models.RoleSupport) && viewerRole != string(models.RoleAdmin) {
		sender = models.SenderSupport
	}

	var count int64
	if err := h.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_type = ? AND read = false", convID, sender).
		Count(&count).Error; err != nil {
		log.Println("Error counting unread messages:", err)
		return 0
	}
	return count
}

func (h *ChatHandler) view(conv *models.Conversation, viewerRole string, now time.Time) ConversationView {
	var supportID *string
	if conv.SupportID != nil {
		s := conv.SupportID.String()
		supportID = &s
	}

	return ConversationView{
		ID:            models.NormalizeID(conv.ID.String()),
		Subject:       conv.Subject,
		Category:      conv.Category,
		Status:        conv.Status,
		StatusLabel:   support.StatusLabel(conv.Status),
		Priority:      conv.Priority,
		UserID:        conv.UserID,
		UserName:      conv.UserName,
		UserEmail:     conv.UserEmail,
		UserType:      conv.UserType,
		UserAvatar:    conv.UserAvatar,
		SupportID:     supportID,
		SupportName:   conv.SupportName,
		LastMessageAt: conv.LastMessageAt,
		LastMessageBy: conv.LastMessageBy,
		UnreadCount:   h.unreadFor(conv.ID, viewerRole),
		CreatedAt:     conv.CreatedAt,
		SLA:           support.ComputeSLA(conv, now),
	}
}

// viewerIdentity resolves who is talking: an authenticated account when a
// JWT is present, otherwise the widget guest cookie. A fresh guest id is
// issued (and set as a cookie) when neither exists.
func (h *ChatHandler) viewerIdentity(c *fiber.Ctx) (id string, name string, email string, role string) {
	if uid, err := getUserUUID(c); err == nil {
		var u models.User
		if err := h.DB.First(&u, "id = ?", uid).Error; err == nil {
			return uid.String(), u.Name, u.Email, string(u.Role)
		}
	}

	if enc := c.Cookies(guestCookie); enc != "" {
		if gid, err := utils.DecryptGuestID(enc, h.GuestKey); err == nil {
			return gid, "", "", string(models.RoleUser)
		}
	}

	gid := "guest-" + uuid.New().String()
	if enc, err := utils.EncryptGuestID(gid, h.GuestKey); err == nil {
		c.Cookie(&fiber.Cookie{
			Name:     guestCookie,
			Value:    enc,
			Path:     "/",
			HTTPOnly: true,
			SameSite: "Lax",
			MaxAge:   60 * 60 * 24 * 365,
		})
	}
	return gid, "", "", string(models.RoleUser)
}

type CreateConversationReq struct {
	Subject   string `json:"subject" validate:"required,min=3,max=200"`
	Category  string `json:"category" validate:"required,oneof=bug question complaint suggestion other blocked"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
	UserName  string `json:"userName" validate:"required,min=2,max=120"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	UserType  string `json:"userType" validate:"omitempty,oneof=individual business"`
	Priority  string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// CreateConversation opens a new support thread from the widget form and
// stores the first message with it.
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	var req CreateConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	viewerID, viewerName, viewerEmail, _ := h.viewerIdentity(c)
	userName := strings.TrimSpace(req.UserName)
	userEmail := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if viewerName != "" {
		userName = viewerName
	}
	if viewerEmail != "" {
		userEmail = viewerEmail
	}

	userType := models.UserTypeIndividual
	if req.UserType == string(models.UserTypeBusiness) {
		userType = models.UserTypeBusiness
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.ConversationPriority(req.Priority)
	}

	now := time.Now()
	conv := models.Conversation{
		Subject:       strings.TrimSpace(req.Subject),
		Category:      models.ConversationCategory(req.Category),
		Status:        models.StatusOpen,
		Priority:      priority,
		UserID:        models.NormalizeID(viewerID),
		UserName:      userName,
		UserEmail:     userEmail,
		UserType:      userType,
		LastMessageAt: now,
		LastMessageBy: models.SenderUser,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		msg := models.Message{
			ConversationID: conv.ID,
			SenderID:       conv.UserID,
			SenderType:     models.SenderUser,
			SenderName:     userName,
			Type:           models.MessageText,
			Body:           strings.TrimSpace(req.Message),
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		log.Println("Error creating conversation:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create conversation",
		})
	}

	view := h.view(&conv, string(models.RoleAdmin), now)
	h.Gateway.Publish(c.Context(), chatsync.ChannelAdmin, chatsync.EventNewConversation, view)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    h.view(&conv, string(models.RoleUser), now),
	})
}

// GetConversations lists conversations. role=admin gives the operator
// console view with filter/tab/search; role=user gives the widget's own
// threads. SLA and status labels are computed per row.
func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	asAdmin := c.Query("role") == "admin"
	now := time.Now()

	if asAdmin {
		role := getRole(c)
		if role != string(models.RoleSupport) && role != string(models.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied",
			})
		}

		q := h.DB.Model(&models.Conversation{})

		filter := support.Filter(c.Query("filter", string(support.FilterAll)))
		switch filter {
		case support.FilterAll:
			q = q.Where("status NOT IN ?", []models.ConversationStatus{models.StatusClosed, models.StatusDeleted})
		case support.FilterMine:
			uid, err := getUserUUID(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Unauthorized",
				})
			}
			q = q.Where("support_id = ? AND status <> ?", uid, models.StatusDeleted)
		case support.FilterOpen, support.FilterInProgress, support.FilterClosed, support.FilterDeleted:
			q = q.Where("status = ?", models.ConversationStatus(filter))
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Unknown filter",
			})
		}

		tab := support.Tab(c.Query("tab", string(support.TabConversations)))
		if tab == support.TabAppeals {
			q = q.Where("category = ?", models.CategoryBlocked)
		} else {
			q = q.Where("category <> ?", models.CategoryBlocked)
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			q = q.Where("subject ILIKE ? OR user_name ILIKE ? OR user_email ILIKE ?", like, like, like)
		}

		var convs []models.Conversation
		if err := q.Order("last_message_at DESC").Find(&convs).Error; err != nil {
			log.Println("Error fetching conversations:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch conversations",
			})
		}

		views := make([]ConversationView, 0, len(convs))
		for i := range convs {
			views = append(views, h.view(&convs[i], string(models.RoleAdmin), now))
		}
		return c.JSON(fiber.Map{"success": true, "data": views})
	}

	viewerID, _, _, _ := h.viewerIdentity(c)

	var convs []models.Conversation
	err := h.DB.
		Where("user_id = ? AND status <> ?", models.NormalizeID(viewerID), models.StatusDeleted).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		log.Println("Error fetching conversations:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch conversations",
		})
	}

	views := make([]ConversationView, 0, len(convs))
	for i := range convs {
		views = append(views, h.view(&convs[i], string(models.RoleUser), now))
	}
	return c.JSON(fiber.Map{"success": true, "data": views})
}

// loadConversation parses the id and checks the caller may see the thread:
// operators always, everyone else only their own.
func (h *ChatHandler) loadConversation(c *fiber.Ctx, rawID string) (*models.Conversation, bool, error) {
	convID, err := uuid.Parse(models.NormalizeID(rawID))
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid conversation ID",
		})
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", convID).Error; err != nil {
		return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Conversation not found",
		})
	}

	role := getRole(c)
	isOperator := role == string(models.RoleSupport) || role == string(models.RoleAdmin)
	if !isOperator {
		viewerID, _, _, _ := h.viewerIdentity(c)
		if conv.UserID != models.NormalizeID(viewerID) {
			return nil, false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied",
			})
		}
	}
	return &conv, isOperator, nil
}

// GetMessages returns the full thread plus the conversation header. The
// widget disables its input when the status blocks replies.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	conv, isOperator, errResp := h.loadConversation(c, c.Query("conversationId"))
	if conv == nil {
		return errResp
	}

	var messages []models.Message
	err := h.DB.
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Println("Error fetching messages:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch messages",
		})
	}

	viewerRole := string(models.RoleUser)
	if isOperator {
		viewerRole = string(models.RoleAdmin)
	}

	data := fiber.Map{
		"conversation": h.view(conv, viewerRole, time.Now()),
		"messages":     messages,
	}
	if !isOperator && (conv.Status == models.StatusClosed || conv.Status == models.StatusDeleted) {
		data["notice"] = support.ClosedConversationNotice
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

type SendMessageReq struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Message        string `json:"message" validate:"omitempty,max=4000"`
	Type           string `json:"type" validate:"omitempty,oneof=text image gif"`
	FileURL        string `json:"fileUrl"`
	GifURL         string `json:"gifUrl"`
}

// SendMessage appends one message to a thread. A closed or trashed
// conversation rejects end-user messages; operators may only write to live
// threads. Every accepted message is pushed as new-message on the
// conversation channel and as a message-received inbox delta on the
// operator channel.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	msgType := models.MessageText
	if req.Type != "" {
		msgType = models.MessageType(req.Type)
	}
	body := strings.TrimSpace(req.Message)
	if body == "" && req.FileURL == "" && req.GifURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Message is required",
		})
	}

	conv, isOperator, errResp := h.loadConversation(c, req.ConversationID)
	if conv == nil {
		return errResp
	}

	if conv.Status == models.StatusDeleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": support.StatusLabel(models.StatusDeleted),
		})
	}
	if !isOperator && conv.Status == models.StatusClosed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": support.ClosedConversationNotice,
		})
	}

	senderType := models.SenderUser
	senderID := conv.UserID
	senderName := conv.UserName
	if isOperator {
		senderType = models.SenderSupport
		uid, err := getUserUUID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		senderID = uid.String()
		var u models.User
		if err := h.DB.First(&u, "id = ?", uid).Error; err == nil {
			senderName = u.Name
		}
	}

	now := time.Now()
	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       models.NormalizeID(senderID),
		SenderType:     senderType,
		SenderName:     senderName,
		Type:           msgType,
		Body:           body,
		FileURL:        req.FileURL,
		GifURL:         req.GifURL,
	}

	// A support reply picks the thread up; a user reply reopens a
	// resolved one. Both go through the transition table.
	newStatus := conv.Status
	if isOperator && conv.Status == models.StatusOpen {
		newStatus, _ = support.Transition(conv.Status, models.StatusInProgress)
	}
	if !isOperator && conv.Status == models.StatusResolved {
		newStatus, _ = support.Transition(conv.Status, models.StatusOpen)
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message_at": now,
				"last_message_by": senderType,
				"status":          newStatus,
			}).Error
	})
	if err != nil {
		log.Println("Error creating message:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send message",
		})
	}
	conv.LastMessageAt = now
	conv.LastMessageBy = senderType
	conv.Status = newStatus

	channel := chatsync.ChatChannel(conv.ID.String())
	h.Gateway.Publish(c.Context(), channel, chatsync.EventNewMessage, msg)

	delta := fiber.Map{
		"conversationId": models.NormalizeID(conv.ID.String()),
		"lastMessageAt":  now,
		"lastMessageBy":  senderType,
		"status":         conv.Status,
		"unreadCount":    h.unreadFor(conv.ID, string(models.RoleAdmin)),
	}
	h.Gateway.Publish(c.Context(), chatsync.ChannelAdmin, chatsync.EventMessageReceived, delta)

	return c.JSON(fiber.Map{"success": true, "data": msg})
}

// MarkAsRead flips the counterpart's unread messages in one conversation
// and announces the read receipt on the conversation channel.
func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	conv, isOperator, errResp := h.loadConversation(c, c.Params("conversationId"))
	if conv == nil {
		return errResp
	}

	counterpart := models.SenderSupport
	if isOperator {
		counterpart = models.SenderUser
	}

	now := time.Now()
	result := h.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_type = ? AND read = false", conv.ID, counterpart).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		})
	if result.Error != nil {
		log.Println("Error marking messages as read:", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to mark messages as read",
		})
	}

	if result.RowsAffected > 0 {
		h.Gateway.Publish(c.Context(), chatsync.ChatChannel(conv.ID.String()), chatsync.EventMessageRead, fiber.Map{
			"conversationId": models.NormalizeID(conv.ID.String()),
			"senderType":     counterpart,
			"readAt":         now,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"updated": result.RowsAffected}})
}

type TypingReq struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

// Typing relays a keystroke signal to the other side of the thread. The
// receiving client expires the flag itself after 3s, so the server never
// sends a "stopped typing" event.
func (h *ChatHandler) Typing(c *fiber.Ctx) error {
	var req TypingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if errs := checkStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	conv, isOperator, errResp := h.loadConversation(c, req.ConversationID)
	if conv == nil {
		return errResp
	}

	role := "user"
	if isOperator {
		role = "support"
	}
	h.Gateway.Publish(c.Context(), chatsync.ChatChannel(conv.ID.String()), chatsync.EventTyping, fiber.Map{
		"conversationId": models.NormalizeID(conv.ID.String()),
		"role":           role,
	})

	return c.JSON(fiber.Map{"success": true})
}

// UnreadTotal returns the badge count across every visible conversation.
func (h *ChatHandler) UnreadTotal(c *fiber.Ctx) error {
	role := getRole(c)

	var count int64
	var err error
	if role == string(models.RoleSupport) || role == string(models.RoleAdmin) {
		err = h.DB.Model(&models.Message{}).
			Joins("JOIN conversations ON conversations.id = messages.conversation_id").
			Where("messages.sender_type = ? AND messages.read = false AND conversations.status <> ?",
				models.SenderUser, models.StatusDeleted).
			Count(&count).Error
	} else {
		viewerID, _, _, _ := h.viewerIdentity(c)
		err = h.DB.Model(&models.Message{}).
			Joins("JOIN conversations ON conversations.id = messages.conversation_id").
			Where("conversations.user_id = ? AND messages.sender_type = ? AND messages.read = false",
				models.NormalizeID(viewerID), models.SenderSupport).
			Count(&count).Error
	}
	if err != nil {
		log.Println("Error counting unread messages:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to count unread messages",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": count})
}

type wsCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// WebSocketHandler keeps one socket per client and lets it join and leave
// hub channels. Conversation channels are checked against ownership for
// non-operators; admin-support needs an operator token.
func (h *ChatHandler) WebSocketHandler(c *websocket.Conn) {
	// the JWT middleware cannot run across the upgrade, so the cookie is
	// parsed here; guests identify through the encrypted query token
	var role, userID string
	if tokenStr := c.Cookies("bk_token"); tokenStr != "" {
		if claims, err := utils.ParseJWT(h.JWTSecret, tokenStr); err == nil {
			userID = claims.UserID
			role = claims.Role
		}
	}
	if userID == "" {
		if enc := c.Query("guest"); enc != "" {
			if gid, err := utils.DecryptGuestID(enc, h.GuestKey); err == nil {
				userID = gid
			}
		}
	}
	if userID == "" {
		log.Println("WebSocket: no identity, closing")
		c.Close()
		return
	}

	isOperator := role == string(models.RoleSupport) || role == string(models.RoleAdmin)

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: models.NormalizeID(userID),
		Role:   role,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: client %s disconnected\n", client.ID)
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	for {
		var cmd wsCommand
		if err := c.ReadJSON(&cmd); err != nil {
			log.Printf("WebSocket read error for client %s: %v\n", client.ID, err)
			break
		}

		switch cmd.Action {
		case "subscribe":
			if !h.maySubscribe(client, isOperator, cmd.Channel) {
				log.Printf("WebSocket: client %s denied channel %s\n", client.ID, cmd.Channel)
				continue
			}
			h.Hub.Subscribe(client, cmd.Channel)
		case "unsubscribe":
			h.Hub.Unsubscribe(client, cmd.Channel)
		case "ping":
			// keepalive only
		}
	}
}

func (h *ChatHandler) maySubscribe(client *realtime.Client, isOperator bool, channel string) bool {
	if channel == chatsync.ChannelAdmin {
		return isOperator
	}
	if !strings.HasPrefix(channel, "chat-") {
		return false
	}
	if isOperator {
		return true
	}

	convID, err := uuid.Parse(strings.TrimPrefix(channel, "chat-"))
	if err != nil {
		return false
	}
	var count int64
	if err := h.DB.Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", convID, client.UserID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// publishConversationUpdated is shared by the admin mutations; ctx is the
// request context of the mutation.
func (h *ChatHandler) publishConversationUpdated(ctx context.Context, conv *models.Conversation) {
	patch := map[string]interface{}{
		"id":     models.NormalizeID(conv.ID.String()),
		"status": conv.Status,
	}
	if conv.SupportID != nil {
		patch["supportId"] = conv.SupportID.String()
	}
	if conv.SupportName != nil {
		patch["supportName"] = *conv.SupportName
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		log.Println("Error encoding conversation patch:", err)
		return
	}
	var payload json.RawMessage = raw

	h.Gateway.Publish(ctx, chatsync.ChannelAdmin, chatsync.EventConversationUpdated, payload)
	h.Gateway.Publish(ctx, chatsync.ChatChannel(conv.ID.String()), chatsync.EventConversationUpdated, payload)
}
