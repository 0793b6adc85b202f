package repositories

import (
	"errors"
	"time"

	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPlanNotFound = errors.New("subscription plan not found")

type SubscriptionPlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	FindByID(id string) (*models.SubscriptionPlan, error)
	FindAll(activeOnly bool) ([]models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Deactivate(id string) error
}

type SubscriptionPlanRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionPlanRepository(db *gorm.DB) SubscriptionPlanRepository {
	return &SubscriptionPlanRepositoryImpl{db: db}
}

func (r *SubscriptionPlanRepositoryImpl) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *SubscriptionPlanRepositoryImpl) FindByID(id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionPlanRepositoryImpl) FindAll(activeOnly bool) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	query := r.db.Order("price ASC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	err := query.Find(&plans).Error
	return plans, err
}

func (r *SubscriptionPlanRepositoryImpl) Update(plan *models.SubscriptionPlan) error {
	result := r.db.Save(plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *SubscriptionPlanRepositoryImpl) Deactivate(id string) error {
	result := r.db.Model(&models.SubscriptionPlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
