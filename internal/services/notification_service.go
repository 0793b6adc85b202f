package services

import (
	"encoding/json"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type NotificationService interface {
	List(userID string, criteria *dto.NotificationCriteria) ([]models.Notification, int64, error)
	UnreadCount(userID string) (int64, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	Create(userID string, req *dto.CreateNotificationRequest) (*models.Notification, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *NotificationServiceImpl) List(userID string, criteria *dto.NotificationCriteria) ([]models.Notification, int64, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(userID, repositories.NotificationCriteria{
		UnreadOnly: criteria.UnreadOnly,
		Type:       criteria.Type,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
	})
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return notifications, total, nil
}

func (s *NotificationServiceImpl) UnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) MarkAsRead(userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(userID, notificationID); err != nil {
		if apperrors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notification", "Notification not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// Create lets admins push an arbitrary notification to a user.
func (s *NotificationServiceImpl) Create(userID string, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	var data datatypes.JSON
	if req.Data != nil {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, apperrors.ValidationError("data must be JSON serializable")
		}
		data = datatypes.JSON(raw)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Data:    data,
	}

	if err := s.notificationRepo.CreateNotification(notification); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return notification, nil
}
