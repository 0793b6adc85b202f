package repositories

import (
	"errors"

	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRobotNotFound = errors.New("robot not found")

type RobotFilter struct {
	Type     string
	Category string
	Search   string
	Page     int
	PageSize int
}

type RobotRepository interface {
	Create(robot *models.Robot) error
	FindByID(id string) (*models.Robot, error)
	FindAll(criteria RobotFilter) ([]models.Robot, int64, error)
	Update(robot *models.Robot) error
	Delete(id string) error
}

type RobotRepositoryImpl struct {
	db *gorm.DB
}

func NewRobotRepository(db *gorm.DB) RobotRepository {
	return &RobotRepositoryImpl{db: db}
}

func (r *RobotRepositoryImpl) Create(robot *models.Robot) error {
	return r.db.Create(robot).Error
}

func (r *RobotRepositoryImpl) FindByID(id string) (*models.Robot, error) {
	var robot models.Robot
	err := r.db.First(&robot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRobotNotFound
		}
		return nil, err
	}
	return &robot, nil
}

func (r *RobotRepositoryImpl) FindAll(criteria RobotFilter) ([]models.Robot, int64, error) {
	var robots []models.Robot
	query := r.db.Model(&models.Robot{})

	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&robots).Error
	return robots, total, err
}

func (r *RobotRepositoryImpl) Update(robot *models.Robot) error {
	result := r.db.Save(robot)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRobotNotFound
	}
	return nil
}

func (r *RobotRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Robot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRobotNotFound
	}
	return nil
}
