package services

import (
	"context"
	"encoding/json"

	"tradewizard_backend/internal/cache"
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type RobotService interface {
	List(ctx context.Context, filter repositories.RobotFilter) ([]models.Robot, int64, error)
	GetByID(id string) (*models.Robot, error)
	Create(ctx context.Context, req *dto.CreateRobotRequest) (*models.Robot, error)
	Update(ctx context.Context, id string, req *dto.UpdateRobotRequest) (*models.Robot, error)
	Delete(ctx context.Context, id string) error
}

type RobotServiceImpl struct {
	robotRepo repositories.RobotRepository
	cache     *cache.RobotCache
}

func NewRobotService(robotRepo repositories.RobotRepository, robotCache *cache.RobotCache) RobotService {
	return &RobotServiceImpl{
		robotRepo: robotRepo,
		cache:     robotCache,
	}
}

// List serves the catalog, preferring the redis cache for repeated listings.
func (s *RobotServiceImpl) List(ctx context.Context, filter repositories.RobotFilter) ([]models.Robot, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if robots, total, ok := s.cache.GetList(ctx, filter.Type, filter.Category, filter.Search, filter.Page, filter.PageSize); ok {
		return robots, total, nil
	}

	robots, total, err := s.robotRepo.FindAll(filter)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	s.cache.SetList(ctx, filter.Type, filter.Category, filter.Search, filter.Page, filter.PageSize, robots, total)
	return robots, total, nil
}

func (s *RobotServiceImpl) GetByID(id string) (*models.Robot, error) {
	robot, err := s.robotRepo.FindByID(id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRobotNotFound) {
			return nil, apperrors.ErrRobotNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return robot, nil
}

func (s *RobotServiceImpl) Create(ctx context.Context, req *dto.CreateRobotRequest) (*models.Robot, error) {
	robot := &models.Robot{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		Features:    marshalFeatures(req.Features),
		ImageURL:    req.ImageURL,
		DownloadURL: req.DownloadURL,
	}
	if robot.Currency == "" {
		robot.Currency = "KES"
	}

	if err := s.robotRepo.Create(robot); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.cache.Invalidate(ctx)
	return robot, nil
}

func (s *RobotServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateRobotRequest) (*models.Robot, error) {
	robot, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		robot.Name = *req.Name
	}
	if req.Description != nil {
		robot.Description = *req.Description
	}
	if req.Type != nil {
		robot.Type = *req.Type
	}
	if req.Category != nil {
		robot.Category = *req.Category
	}
	if req.Price != nil {
		robot.Price = *req.Price
	}
	if req.Features != nil {
		robot.Features = marshalFeatures(req.Features)
	}
	if req.ImageURL != nil {
		robot.ImageURL = *req.ImageURL
	}
	if req.DownloadURL != nil {
		robot.DownloadURL = *req.DownloadURL
	}

	if err := s.robotRepo.Update(robot); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.cache.Invalidate(ctx)
	return robot, nil
}

func (s *RobotServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.robotRepo.Delete(id); err != nil {
		if apperrors.Is(err, repositories.ErrRobotNotFound) {
			return apperrors.ErrRobotNotFound
		}
		return apperrors.InternalError(err)
	}

	s.cache.Invalidate(ctx)
	return nil
}

func marshalFeatures(features []string) datatypes.JSON {
	if features == nil {
		features = []string{}
	}
	raw, _ := json.Marshal(features)
	return datatypes.JSON(raw)
}
