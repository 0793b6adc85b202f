package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradewizard_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification types.
const (
	NotificationTypePaymentResolved     = "payment_resolved"
	NotificationTypeRequestStatus       = "request_status"
	NotificationTypeSubscriptionExpired = "subscription_expired"
	NotificationTypeNewMessage          = "new_message"
)

type NotificationCriteria struct {
	UnreadOnly bool
	Type       string
	Page       int
	PageSize   int
}

type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	FindNotificationByID(id string) (*models.Notification, error)
	FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	GetUnreadCount(userID string) (int64, error)

	// Factory methods for common notification types
	CreatePaymentResolvedNotification(userID, transactionID string, status models.TransactionStatus) error
	CreateRequestStatusNotification(userID, requestID string, status models.RobotRequestStatus) error
	CreateSubscriptionExpiredNotification(userID, transactionID string) error
	CreateNewMessageNotification(recipientID, conversationID string) error
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindNotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if criteria.UnreadOnly {
		query = query.Where("is_read = false")
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := (criteria.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(userID, notificationID string) error {
	now := time.Now()
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(userID string) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		}).Error
}

func (r *NotificationRepositoryImpl) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

// --- Factory methods ---

func (r *NotificationRepositoryImpl) CreatePaymentResolvedNotification(userID, transactionID string, status models.TransactionStatus) error {
	data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})

	title := "Payment failed"
	message := "Your payment could not be completed. Please try again."
	if status == models.TransactionStatusCompleted || status == models.TransactionStatusActive {
		title = "Payment successful"
		message = "Your payment was completed successfully."
	}

	return r.CreateNotification(&models.Notification{
		UserID:  userID,
		Type:    NotificationTypePaymentResolved,
		Title:   title,
		Message: message,
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateRequestStatusNotification(userID, requestID string, status models.RobotRequestStatus) error {
	data, _ := json.Marshal(map[string]string{"request_id": requestID})

	return r.CreateNotification(&models.Notification{
		UserID:  userID,
		Type:    NotificationTypeRequestStatus,
		Title:   "Robot request updated",
		Message: fmt.Sprintf("Your custom robot request is now %s.", status),
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateSubscriptionExpiredNotification(userID, transactionID string) error {
	data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})

	return r.CreateNotification(&models.Notification{
		UserID:  userID,
		Type:    NotificationTypeSubscriptionExpired,
		Title:   "Subscription expired",
		Message: "Your subscription has expired. Renew to keep access to premium robots.",
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateNewMessageNotification(recipientID, conversationID string) error {
	data, _ := json.Marshal(map[string]string{"conversation_id": conversationID})

	return r.CreateNotification(&models.Notification{
		UserID:  recipientID,
		Type:    NotificationTypeNewMessage,
		Title:   "New message",
		Message: "You have a new message from support.",
		Data:    datatypes.JSON(data),
	})
}
