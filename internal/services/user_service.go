package services

import (
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"
)

type UserService interface {
	GetByID(userID string) (*dto.UserResponse, error)
	Update(userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	List(page, pageSize int) ([]dto.UserResponse, int64, error)
	Delete(userID string) error
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetByID(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return toUserResponse(user), nil
}

func (s *UserServiceImpl) Update(userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toUserResponse(user), nil
}

func (s *UserServiceImpl) List(page, pageSize int) ([]dto.UserResponse, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	users, err := s.userRepo.FindAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toUserResponse(&users[i]))
	}
	return out, total, nil
}

func (s *UserServiceImpl) Delete(userID string) error {
	if err := s.userRepo.Delete(userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "User not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func toUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
