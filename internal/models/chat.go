package models

import (
	"strings"
	"time"
)

// Chat is a WhatsApp conversation, keyed by the provider chat ID. The
// provider may address the same contact by phone number or by an opaque
// linked ID ("lid"); the normalizer merges duplicates so at most one chat
// row persists per underlying phone number.
type Chat struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	Name          string     `json:"name"`
	PhoneNumber   *string    `gorm:"size:32;index" json:"phone_number"`
	LID           *string    `gorm:"column:lid;size:64" json:"lid"`
	IsGroup       bool       `gorm:"default:false" json:"is_group"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Messages []ChatMessage `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

// TableName specifies the table name for Chat
func (Chat) TableName() string {
	return "whatsapp_chats"
}

// GroupChatSuffix marks provider chat IDs that belong to group conversations.
const GroupChatSuffix = "@g.us"

// IsGroupChatID reports whether a provider chat identifier is a group chat.
func IsGroupChatID(chatID string) bool {
	return strings.HasSuffix(chatID, GroupChatSuffix)
}

// ChatMessage is a single WhatsApp message, keyed by the provider
// message ID and always owned by exactly one chat.
type ChatMessage struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	ChatID     string    `gorm:"size:64;not null;index" json:"chat_id"`
	Direction  string    `gorm:"size:10;not null" json:"direction"` // inbound, outbound
	Body       string    `gorm:"type:text" json:"body"`
	HasMedia   bool      `gorm:"default:false" json:"has_media"`
	SenderName string    `json:"sender_name"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	AckStatus  string    `gorm:"size:20" json:"ack_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	Chat *Chat `gorm:"foreignKey:ChatID" json:"-"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "whatsapp_messages"
}

// Message direction constants
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// WebhookEvent stores every raw provider delivery before any processing,
// as an audit trail. Persistence failures here are logged but never abort
// webhook handling.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Provider  string    `gorm:"size:20;not null;index" json:"provider"` // whapi, facebook
	EventName string    `gorm:"size:100;index" json:"event_name"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for WebhookEvent
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Webhook provider constants
const (
	ProviderWhapi    = "whapi"
	ProviderFacebook = "facebook"
)
