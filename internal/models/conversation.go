package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	StatusOpen       ConversationStatus = "open"
	StatusInProgress ConversationStatus = "in_progress"
	StatusWaiting    ConversationStatus = "waiting"
	StatusResolved   ConversationStatus = "resolved"
	StatusClosed     ConversationStatus = "closed"
	StatusDeleted    ConversationStatus = "deleted"
)

type ConversationCategory string

const (
	CategoryBug        ConversationCategory = "bug"
	CategoryQuestion   ConversationCategory = "question"
	CategoryComplaint  ConversationCategory = "complaint"
	CategorySuggestion ConversationCategory = "suggestion"
	CategoryOther      ConversationCategory = "other"
	// CategoryBlocked marks an appeal; it never mixes with the other
	// categories in any list view.
	CategoryBlocked ConversationCategory = "blocked"
)

type ConversationPriority string

const (
	PriorityLow    ConversationPriority = "low"
	PriorityMedium ConversationPriority = "medium"
	PriorityHigh   ConversationPriority = "high"
)

type UserType string

const (
	UserTypeIndividual UserType = "individual"
	UserTypeBusiness   UserType = "business"
)

type SenderType string

const (
	SenderUser    SenderType = "user"
	SenderSupport SenderType = "support"
	SenderBot     SenderType = "bot"
)

// Conversation is a support thread between an end user and the support team.
// The user identity is denormalized so widget guests work without an account.
type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Subject  string               `gorm:"type:text;not null" json:"subject"`
	Category ConversationCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Status   ConversationStatus   `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Priority ConversationPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	UserID     string   `gorm:"type:varchar(64);index" json:"userId"`
	UserName   string   `gorm:"type:varchar(120)" json:"userName"`
	UserEmail  string   `gorm:"type:varchar(160);index" json:"userEmail"`
	UserType   UserType `gorm:"type:varchar(20);default:'individual'" json:"userType"`
	UserAvatar string   `gorm:"type:text" json:"userAvatar,omitempty"`

	SupportID   *uuid.UUID `gorm:"type:uuid;index" json:"supportId"`
	SupportName *string    `gorm:"type:varchar(120)" json:"supportName"`

	LastMessageAt time.Time  `json:"lastMessageAt"`
	LastMessageBy SenderType `gorm:"type:varchar(10);default:'user'" json:"lastMessageBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// IsAppeal reports whether the conversation belongs to the appeals tab.
func (c *Conversation) IsAppeal() bool {
	return c.Category == CategoryBlocked
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageGif   MessageType = "gif"
)

// Message is a single entry in a conversation thread. Messages are never
// edited or removed; only their read state changes.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index" json:"conversationId"`

	SenderID   string      `gorm:"type:varchar(64);index" json:"senderId"`
	SenderType SenderType  `gorm:"type:varchar(10);not null" json:"senderType"`
	SenderName string      `gorm:"type:varchar(120)" json:"senderName"`
	Type       MessageType `gorm:"type:varchar(10);default:'text'" json:"type"`

	Body    string `gorm:"column:message;type:text" json:"message"`
	FileURL string `gorm:"type:text" json:"fileUrl,omitempty"`
	GifURL  string `gorm:"type:text" json:"gifUrl,omitempty"`

	Read   bool       `gorm:"default:false" json:"read"`
	ReadAt *time.Time `json:"readAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeID puts an identifier into its canonical form: every id in the
// system is compared as a trimmed lowercase string.
func NormalizeID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
