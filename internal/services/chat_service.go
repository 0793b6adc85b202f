package services

import (
	"time"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"
)

type ChatService interface {
	StartConversation(userID string, req *dto.CreateConversationRequest) (*models.Conversation, error)
	ListConversations(userID, role string, page, pageSize int) ([]models.Conversation, int64, error)
	GetConversation(userID, role, conversationID string) (*models.Conversation, error)
	GetMessages(userID, role, conversationID string, page, pageSize int) ([]models.Message, int64, error)
	SendMessage(senderID, role string, req *dto.SendMessageRequest) (*models.Message, error)
	MarkMessageRead(userID, role, messageID string) error
}

type ChatServiceImpl struct {
	chatRepo         repositories.ChatRepository
	notificationRepo repositories.NotificationRepository
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	notificationRepo repositories.NotificationRepository,
) ChatService {
	return &ChatServiceImpl{
		chatRepo:         chatRepo,
		notificationRepo: notificationRepo,
	}
}

// StartConversation opens a support thread with its first message.
func (s *ChatServiceImpl) StartConversation(userID string, req *dto.CreateConversationRequest) (*models.Conversation, error) {
	now := time.Now()
	conversation := &models.Conversation{
		UserID:        userID,
		Subject:       req.Subject,
		LastMessageAt: &now,
	}

	if err := s.chatRepo.CreateConversation(conversation); err != nil {
		return nil, apperrors.InternalError(err)
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Content:        req.Message,
	}
	if err := s.chatRepo.CreateMessage(message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return conversation, nil
}

// ListConversations returns the caller's threads; admins see all of them.
func (s *ChatServiceImpl) ListConversations(userID, role string, page, pageSize int) ([]models.Conversation, int64, error) {
	limit, offset := pageToRange(page, pageSize)

	var (
		conversations []models.Conversation
		total         int64
		err           error
	)
	if role == string(models.UserRoleAdmin) {
		conversations, total, err = s.chatRepo.FindAllConversations(limit, offset)
	} else {
		conversations, total, err = s.chatRepo.FindUserConversations(userID, limit, offset)
	}
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return conversations, total, nil
}

func (s *ChatServiceImpl) GetConversation(userID, role, conversationID string) (*models.Conversation, error) {
	return s.authorizeConversation(userID, role, conversationID)
}

func (s *ChatServiceImpl) GetMessages(userID, role, conversationID string, page, pageSize int) ([]models.Message, int64, error) {
	if _, err := s.authorizeConversation(userID, role, conversationID); err != nil {
		return nil, 0, err
	}

	limit, offset := pageToRange(page, pageSize)
	messages, total, err := s.chatRepo.FindConversationMessages(conversationID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return messages, total, nil
}

// SendMessage posts into a conversation and notifies the other side.
func (s *ChatServiceImpl) SendMessage(senderID, role string, req *dto.SendMessageRequest) (*models.Message, error) {
	conversation, err := s.authorizeConversation(senderID, role, req.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        req.Content,
	}
	if err := s.chatRepo.CreateMessage(message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.chatRepo.TouchConversation(conversation.ID, time.Now()); err != nil {
		logger.Warn("failed to update conversation timestamp", "conversation_id", conversation.ID, "error", err)
	}

	s.notifyRecipient(conversation, senderID, role)
	return message, nil
}

// MarkMessageRead flags a message as read by a conversation participant.
func (s *ChatServiceImpl) MarkMessageRead(userID, role, messageID string) error {
	message, err := s.chatRepo.FindMessageByID(messageID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.InternalError(err)
	}

	if _, err := s.authorizeConversation(userID, role, message.ConversationID); err != nil {
		return err
	}

	if err := s.chatRepo.MarkMessageAsRead(messageID); err != nil {
		if apperrors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ChatServiceImpl) authorizeConversation(userID, role, conversationID string) (*models.Conversation, error) {
	conversation, err := s.chatRepo.FindConversationByID(conversationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if conversation.UserID != userID && role != string(models.UserRoleAdmin) {
		return nil, apperrors.ErrConversationAccessDenied
	}
	return conversation, nil
}

func (s *ChatServiceImpl) notifyRecipient(conversation *models.Conversation, senderID, role string) {
	if role == string(models.UserRoleAdmin) && senderID != conversation.UserID {
		if err := s.chatRepo.AssignAdmin(conversation.ID, senderID); err != nil {
			logger.Warn("failed to assign conversation admin", "conversation_id", conversation.ID, "error", err)
		}
		if err := s.notificationRepo.CreateNewMessageNotification(conversation.UserID, conversation.ID); err != nil {
			logger.Warn("failed to create message notification", "conversation_id", conversation.ID, "error", err)
		}
		return
	}

	if conversation.AdminID != nil {
		if err := s.notificationRepo.CreateNewMessageNotification(*conversation.AdminID, conversation.ID); err != nil {
			logger.Warn("failed to create message notification", "conversation_id", conversation.ID, "error", err)
		}
	}
}
