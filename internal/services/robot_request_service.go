package services

import (
	"encoding/json"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type RobotRequestService interface {
	Create(userID string, req *dto.CreateRobotRequestRequest) (*models.RobotRequest, error)
	GetByID(userID, role, requestID string) (*models.RobotRequest, error)
	ListByUser(userID string, page, pageSize int) ([]models.RobotRequest, int64, error)
	ListAll(page, pageSize int) ([]models.RobotRequest, int64, error)
	UpdateStatus(requestID string, req *dto.UpdateRobotRequestStatusRequest) (*models.RobotRequest, error)
}

type RobotRequestServiceImpl struct {
	requestRepo      repositories.RobotRequestRepository
	notificationRepo repositories.NotificationRepository
}

func NewRobotRequestService(
	requestRepo repositories.RobotRequestRepository,
	notificationRepo repositories.NotificationRepository,
) RobotRequestService {
	return &RobotRequestServiceImpl{
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *RobotRequestServiceImpl) Create(userID string, req *dto.CreateRobotRequestRequest) (*models.RobotRequest, error) {
	pairs, _ := json.Marshal(req.TradingPairs)

	request := &models.RobotRequest{
		UserID:       userID,
		RobotType:    req.RobotType,
		TradingPairs: datatypes.JSON(pairs),
		Timeframe:    req.Timeframe,
		RiskLevel:    req.RiskLevel,
		Notes:        req.Notes,
		Status:       models.RobotRequestStatusPending,
	}

	if err := s.requestRepo.Create(request); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return request, nil
}

// GetByID returns the request if the caller owns it or is an admin.
func (s *RobotRequestServiceImpl) GetByID(userID, role, requestID string) (*models.RobotRequest, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRobotRequestNotFound) {
			return nil, apperrors.ErrRobotRequestNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if request.UserID != userID && role != string(models.UserRoleAdmin) {
		return nil, apperrors.ErrRobotRequestNotFound
	}
	return request, nil
}

func (s *RobotRequestServiceImpl) ListByUser(userID string, page, pageSize int) ([]models.RobotRequest, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	requests, total, err := s.requestRepo.FindByUser(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return requests, total, nil
}

func (s *RobotRequestServiceImpl) ListAll(page, pageSize int) ([]models.RobotRequest, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	requests, total, err := s.requestRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return requests, total, nil
}

// UpdateStatus moves a request through review and notifies its owner.
func (s *RobotRequestServiceImpl) UpdateStatus(requestID string, req *dto.UpdateRobotRequestStatusRequest) (*models.RobotRequest, error) {
	status := models.RobotRequestStatus(req.Status)

	if err := s.requestRepo.UpdateStatus(requestID, status); err != nil {
		if apperrors.Is(err, repositories.ErrRobotRequestNotFound) {
			return nil, apperrors.ErrRobotRequestNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.notificationRepo.CreateRequestStatusNotification(request.UserID, request.ID, status); err != nil {
		logger.Warn("failed to create request status notification", "request_id", requestID, "error", err)
	}
	return request, nil
}

func pageToRange(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
