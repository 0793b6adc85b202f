package services

import (
	"context"
	"encoding/json"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type SubscriptionService interface {
	ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error)
	GetPlan(planID string) (*models.SubscriptionPlan, error)
	CreatePlan(req *dto.CreatePlanRequest) (*models.SubscriptionPlan, error)
	UpdatePlan(planID string, req *dto.UpdatePlanRequest) (*models.SubscriptionPlan, error)
	DeactivatePlan(planID string) error

	// Subscribe starts the payment leg for a plan. The subscription only
	// becomes active when the payment resolves successfully.
	Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.PaymentInitResponse, error)
	Cancel(userID, transactionID string) error
	Status(userID, planID string) (*dto.SubscriptionStatusResponse, error)
	ListUserSubscriptions(userID string, page, pageSize int) ([]models.Transaction, int64, error)
}

type SubscriptionServiceImpl struct {
	planRepo       repositories.SubscriptionPlanRepository
	txRepo         repositories.TransactionRepository
	paymentService PaymentService
}

func NewSubscriptionService(
	planRepo repositories.SubscriptionPlanRepository,
	txRepo repositories.TransactionRepository,
	paymentService PaymentService,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		planRepo:       planRepo,
		txRepo:         txRepo,
		paymentService: paymentService,
	}
}

func (s *SubscriptionServiceImpl) ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error) {
	plans, err := s.planRepo.FindAll(activeOnly)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plans, nil
}

func (s *SubscriptionServiceImpl) GetPlan(planID string) (*models.SubscriptionPlan, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return plan, nil
}

func (s *SubscriptionServiceImpl) CreatePlan(req *dto.CreatePlanRequest) (*models.SubscriptionPlan, error) {
	plan := &models.SubscriptionPlan{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Interval:    models.PlanInterval(req.Interval),
		Features:    marshalPlanFeatures(req.Features),
		IsActive:    true,
	}
	if plan.Currency == "" {
		plan.Currency = "KES"
	}

	if err := s.planRepo.Create(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plan, nil
}

func (s *SubscriptionServiceImpl) UpdatePlan(planID string, req *dto.UpdatePlanRequest) (*models.SubscriptionPlan, error) {
	plan, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Interval != nil {
		plan.Interval = models.PlanInterval(*req.Interval)
	}
	if req.Features != nil {
		plan.Features = marshalPlanFeatures(req.Features)
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.planRepo.Update(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plan, nil
}

func (s *SubscriptionServiceImpl) DeactivatePlan(planID string) error {
	if err := s.planRepo.Deactivate(planID); err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return apperrors.ErrPlanNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SubscriptionServiceImpl) Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.PaymentInitResponse, error) {
	plan, err := s.GetPlan(req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperrors.ErrInvalidOperation("subscription", "Plan is no longer available")
	}

	if existing, err := s.txRepo.FindActiveSubscription(userID, plan.ID); err == nil && existing != nil {
		return nil, apperrors.ErrConflict(nil, "subscription", "Plan is already active for this user")
	}

	switch models.PaymentMethod(req.PaymentMethod) {
	case models.PaymentMethodMpesa:
		if req.PhoneNumber == "" {
			return nil, apperrors.ErrInvalidPhoneNumber
		}
		return s.paymentService.InitiateMpesaPayment(ctx, userID, &dto.MpesaInitiateRequest{
			PhoneNumber: req.PhoneNumber,
			Amount:      plan.Price,
			Kind:        string(models.TransactionKindSubscription),
			ItemID:      plan.ID,
		})
	case models.PaymentMethodCard:
		return nil, apperrors.ErrInvalidOperation("subscription",
			"Card subscriptions are charged through the card payment endpoint")
	default:
		return nil, apperrors.ErrInvalidOperation("subscription", "Unknown payment method")
	}
}

// Cancel moves an active subscription to cancelled. The conditional update
// in the repository decides the outcome; on a miss the transaction is loaded
// again only to say why.
func (s *SubscriptionServiceImpl) Cancel(userID, transactionID string) error {
	cancelled, err := s.txRepo.CancelActiveSubscription(transactionID, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if cancelled {
		return nil
	}

	tx, err := s.txRepo.FindByID(transactionID)
	if err != nil {
		return apperrors.ErrSubscriptionNotFound
	}
	if tx.UserID != userID || !tx.IsSubscription() {
		return apperrors.ErrSubscriptionNotFound
	}
	if tx.Status == models.TransactionStatusCancelled {
		return apperrors.ErrSubscriptionCancelled
	}
	return apperrors.ErrSubscriptionNotActive
}

func (s *SubscriptionServiceImpl) Status(userID, planID string) (*dto.SubscriptionStatusResponse, error) {
	_, err := s.txRepo.FindActiveSubscription(userID, planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTransactionNotFound) {
			return &dto.SubscriptionStatusResponse{PlanID: planID, HasActive: false}, nil
		}
		return nil, apperrors.InternalError(err)
	}
	return &dto.SubscriptionStatusResponse{PlanID: planID, HasActive: true}, nil
}

func (s *SubscriptionServiceImpl) ListUserSubscriptions(userID string, page, pageSize int) ([]models.Transaction, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	txs, total, err := s.txRepo.FindUserSubscriptions(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return txs, total, nil
}

func marshalPlanFeatures(features []string) datatypes.JSON {
	if features == nil {
		features = []string{}
	}
	raw, _ := json.Marshal(features)
	return datatypes.JSON(raw)
}
