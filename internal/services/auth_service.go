package services

import (
	"tradewizard_backend/internal/auth"
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/email"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	emailProvider email.Provider
}

func NewAuthService(userRepo repositories.UserRepository, emailProvider email.Provider) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		emailProvider: emailProvider,
	}
}

// Register creates an account and logs the new user straight in.
func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendWelcomeEmail(user)

	return s.buildAuthResponse(user)
}

// Login verifies credentials and issues a JWT.
func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthServiceImpl) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) sendWelcomeEmail(user *models.User) {
	if s.emailProvider == nil {
		return
	}

	go func() {
		err := s.emailProvider.SendWithTemplate(email.TemplateWelcome,
			email.TemplateData{"Name": user.Name},
			&email.Email{To: []string{user.Email}, Subject: "Welcome to TradeWizard"},
		)
		if err != nil {
			logger.Warn("failed to send welcome email", "error", err)
		}
	}()
}
