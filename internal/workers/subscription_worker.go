package workers

import (
	"context"
	"time"

	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// SubscriptionWorker expires lapsed subscriptions on a schedule.
type SubscriptionWorker struct {
	db               *gorm.DB
	notificationRepo repositories.NotificationRepository
	sched            gocron.Scheduler
}

func NewSubscriptionWorker(db *gorm.DB, notificationRepo repositories.NotificationRepository) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:               db,
		notificationRepo: notificationRepo,
	}
}

// Start registers the expiry sweep with the scheduler and runs it until the
// context is cancelled.
func (w *SubscriptionWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	w.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(w.sweepExpired),
	)
	if err != nil {
		return err
	}

	sched.Start()
	logger.Info("subscription expiry worker started", "interval", "1h")

	go func() {
		<-ctx.Done()
		if err := w.sched.Shutdown(); err != nil {
			logger.Error("subscription worker shutdown error", "error", err)
			return
		}
		logger.Info("subscription worker stopped")
	}()

	return nil
}

// sweepExpired deactivates active subscriptions past their end date and
// notifies their owners. The status stays "active" with is_active false so
// the history remains readable.
func (w *SubscriptionWorker) sweepExpired() {
	var expired []models.Transaction
	err := w.db.
		Where("kind = ? AND status = ? AND is_active = true AND end_date < NOW()",
			models.TransactionKindSubscription, models.TransactionStatusActive).
		Find(&expired).Error
	if err != nil {
		logger.WorkerLog("subscription_worker", "find_expired", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	result := w.db.Exec(`
		UPDATE transactions
		SET is_active = false, updated_at = NOW()
		WHERE kind = 'subscription'
		AND status = 'active'
		AND is_active = true
		AND end_date < NOW()
	`)
	if result.Error != nil {
		logger.WorkerLog("subscription_worker", "expire", result.Error)
		return
	}

	logger.Info("expired subscriptions", "count", result.RowsAffected)

	for _, tx := range expired {
		if err := w.notificationRepo.CreateSubscriptionExpiredNotification(tx.UserID, tx.ID); err != nil {
			logger.WorkerLog("subscription_worker", "notify", err)
		}
	}
}
