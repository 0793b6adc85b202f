package repositories

import (
	"errors"
	"time"

	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type ChatRepository interface {
	CreateConversation(conversation *models.Conversation) error
	FindConversationByID(id string) (*models.Conversation, error)
	FindUserConversations(userID string, limit, offset int) ([]models.Conversation, int64, error)
	FindAllConversations(limit, offset int) ([]models.Conversation, int64, error)

	AssignAdmin(conversationID, adminID string) error

	CreateMessage(message *models.Message) error
	FindMessageByID(id string) (*models.Message, error)
	FindConversationMessages(conversationID string, limit, offset int) ([]models.Message, int64, error)
	MarkMessageAsRead(messageID string) error
	TouchConversation(conversationID string, at time.Time) error
}

type ChatRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

func (r *ChatRepositoryImpl) CreateConversation(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *ChatRepositoryImpl) FindConversationByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *ChatRepositoryImpl) FindUserConversations(userID string, limit, offset int) ([]models.Conversation, int64, error) {
	var conversations []models.Conversation
	query := r.db.Model(&models.Conversation{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_message_at DESC NULLS LAST").Limit(limit).Offset(offset).Find(&conversations).Error
	return conversations, total, err
}

func (r *ChatRepositoryImpl) FindAllConversations(limit, offset int) ([]models.Conversation, int64, error) {
	var conversations []models.Conversation

	var total int64
	if err := r.db.Model(&models.Conversation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("last_message_at DESC NULLS LAST").Limit(limit).Offset(offset).Find(&conversations).Error
	return conversations, total, err
}

// AssignAdmin pins the first responding admin to the conversation. Later
// admins do not take it over.
func (r *ChatRepositoryImpl) AssignAdmin(conversationID, adminID string) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ? AND admin_id IS NULL", conversationID).
		Update("admin_id", adminID).Error
}

func (r *ChatRepositoryImpl) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *ChatRepositoryImpl) FindMessageByID(id string) (*models.Message, error) {
	var message models.Message
	err := r.db.First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *ChatRepositoryImpl) FindConversationMessages(conversationID string, limit, offset int) ([]models.Message, int64, error) {
	var messages []models.Message
	query := r.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, total, err
}

func (r *ChatRepositoryImpl) MarkMessageAsRead(messageID string) error {
	now := time.Now()
	result := r.db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *ChatRepositoryImpl) TouchConversation(conversationID string, at time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_at": at,
			"updated_at":      at,
		}).Error
}
