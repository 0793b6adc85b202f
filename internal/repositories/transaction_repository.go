package repositories

import (
	"errors"
	"time"

	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ResolutionUpdate describes the terminal state applied when a pending
// transaction is reconciled.
type ResolutionUpdate struct {
	Status     models.TransactionStatus
	ResultDesc string

	// Subscription activation fields, nil for purchases.
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

type TransactionRepository interface {
	Create(tx *models.Transaction) error
	FindByID(id string) (*models.Transaction, error)
	FindByCorrelationID(correlationID string) (*models.Transaction, error)
	FindByUser(userID string, kind models.TransactionKind, limit, offset int) ([]models.Transaction, int64, error)

	// ResolvePendingByCorrelationID applies the update only when the row is
	// still pending. Returns false when no pending row matched, which callers
	// treat as "already resolved or unknown".
	ResolvePendingByCorrelationID(correlationID string, update ResolutionUpdate) (bool, error)

	// CancelActiveSubscription moves an active subscription to cancelled.
	// Returns false when the row was not an active subscription of that user.
	CancelActiveSubscription(id, userID string) (bool, error)

	FindActiveSubscription(userID, planID string) (*models.Transaction, error)
	FindUserSubscriptions(userID string, limit, offset int) ([]models.Transaction, int64, error)
}

type TransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (r *TransactionRepositoryImpl) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepositoryImpl) FindByID(id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepositoryImpl) FindByCorrelationID(correlationID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.First(&tx, "checkout_request_id = ?", correlationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepositoryImpl) FindByUser(userID string, kind models.TransactionKind, limit, offset int) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	query := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, total, err
}

// ResolvePendingByCorrelationID is the only write path out of "pending".
// The WHERE clause on status makes concurrent resolutions (poller vs
// callback) race safely: whoever commits first wins, the loser updates
// zero rows.
func (r *TransactionRepositoryImpl) ResolvePendingByCorrelationID(correlationID string, update ResolutionUpdate) (bool, error) {
	now := time.Now()
	fields := map[string]interface{}{
		"status":      update.Status,
		"result_desc": update.ResultDesc,
		"resolved_at": now,
		"updated_at":  now,
	}
	if update.StartDate != nil {
		fields["start_date"] = update.StartDate
	}
	if update.EndDate != nil {
		fields["end_date"] = update.EndDate
	}
	if update.IsActive != nil {
		fields["is_active"] = update.IsActive
	}

	result := r.db.Model(&models.Transaction{}).
		Where("checkout_request_id = ? AND status = ?", correlationID, models.TransactionStatusPending).
		Updates(fields)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepositoryImpl) CancelActiveSubscription(id, userID string) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ? AND kind = ? AND status = ?",
			id, userID, models.TransactionKindSubscription, models.TransactionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCancelled,
			"is_active":    false,
			"cancelled_at": now,
			"updated_at":   now,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepositoryImpl) FindActiveSubscription(userID, planID string) (*models.Transaction, error) {
	var tx models.Transaction
	query := r.db.Where("user_id = ? AND kind = ? AND status = ? AND is_active = true",
		userID, models.TransactionKindSubscription, models.TransactionStatusActive)
	if planID != "" {
		query = query.Where("item_id = ?", planID)
	}

	err := query.Order("end_date DESC").First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepositoryImpl) FindUserSubscriptions(userID string, limit, offset int) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	query := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND kind = ?", userID, models.TransactionKindSubscription)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, total, err
}
