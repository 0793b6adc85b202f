package repositories

import (
	"errors"
	"time"

	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRobotRequestNotFound = errors.New("robot request not found")

type RobotRequestRepository interface {
	Create(request *models.RobotRequest) error
	FindByID(id string) (*models.RobotRequest, error)
	FindByUser(userID string, limit, offset int) ([]models.RobotRequest, int64, error)
	FindAll(limit, offset int) ([]models.RobotRequest, int64, error)
	UpdateStatus(id string, status models.RobotRequestStatus) error
}

type RobotRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewRobotRequestRepository(db *gorm.DB) RobotRequestRepository {
	return &RobotRequestRepositoryImpl{db: db}
}

func (r *RobotRequestRepositoryImpl) Create(request *models.RobotRequest) error {
	return r.db.Create(request).Error
}

func (r *RobotRequestRepositoryImpl) FindByID(id string) (*models.RobotRequest, error) {
	var request models.RobotRequest
	err := r.db.First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRobotRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RobotRequestRepositoryImpl) FindByUser(userID string, limit, offset int) ([]models.RobotRequest, int64, error) {
	var requests []models.RobotRequest
	query := r.db.Model(&models.RobotRequest{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&requests).Error
	return requests, total, err
}

func (r *RobotRequestRepositoryImpl) FindAll(limit, offset int) ([]models.RobotRequest, int64, error) {
	var requests []models.RobotRequest

	var total int64
	if err := r.db.Model(&models.RobotRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&requests).Error
	return requests, total, err
}

func (r *RobotRequestRepositoryImpl) UpdateStatus(id string, status models.RobotRequestStatus) error {
	result := r.db.Model(&models.RobotRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRobotRequestNotFound
	}
	return nil
}
