package repository

import (
	"context"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for WhatsApp chat data access
type ChatRepository interface {
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	// FindByPhoneNumber looks up a chat by resolved phone number,
	// excluding the given chat ID. Used by the identity merge.
	FindByPhoneNumber(ctx context.Context, phone string, excludeID string) (*models.Chat, error)
	Upsert(ctx context.Context, chat *models.Chat) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query *ListQuery) ([]models.Chat, int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByPhoneNumber(ctx context.Context, phone string, excludeID string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND id <> ?", phone, excludeID).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Upsert inserts or updates a chat row keyed by provider chat ID.
func (r *chatRepository) Upsert(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "phone_number", "lid", "is_group", "last_message_at", "updated_at",
			}),
		}).
		Create(chat).Error
}

func (r *chatRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Chat{}).Error
}

func (r *chatRepository) List(ctx context.Context, query *ListQuery) ([]models.Chat, int64, error) {
	var chats []models.Chat
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Chat{})
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR phone_number ILIKE ?", search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("last_message_at DESC NULLS LAST").
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&chats).Error
	return chats, total, err
}

// MessageRepository defines the interface for WhatsApp message data access
type MessageRepository interface {
	FindByID(ctx context.Context, id string) (*models.ChatMessage, error)
	FindByChatID(ctx context.Context, chatID string, query *ListQuery) ([]models.ChatMessage, int64, error)
	Upsert(ctx context.Context, message *models.ChatMessage) error
	// Reassign moves every message from one chat to another. Part of the
	// identity merge: the duplicate chat's history survives under the
	// surviving chat ID.
	Reassign(ctx context.Context, fromChatID, toChatID string) error
	UpdateAckStatus(ctx context.Context, messageID, ackStatus string) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByChatID(ctx context.Context, chatID string, query *ListQuery) ([]models.ChatMessage, int64, error) {
	var messages []models.ChatMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ChatMessage{}).Where("chat_id = ?", chatID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("timestamp DESC").
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&messages).Error
	return messages, total, err
}

// Upsert inserts or updates a message keyed by provider message ID.
func (r *messageRepository) Upsert(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"chat_id", "direction", "body", "has_media", "sender_name", "timestamp", "updated_at",
			}),
		}).
		Create(message).Error
}

func (r *messageRepository) Reassign(ctx context.Context, fromChatID, toChatID string) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("chat_id = ?", fromChatID).
		Update("chat_id", toChatID).Error
}

func (r *messageRepository) UpdateAckStatus(ctx context.Context, messageID, ackStatus string) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("id = ?", messageID).
		Update("ack_status", ackStatus).Error
}
