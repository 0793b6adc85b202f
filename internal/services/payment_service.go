package services

import (
	"context"
	"fmt"
	"time"

	"tradewizard_backend/internal/config"
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/email"
	"tradewizard_backend/internal/gateway"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/internal/workers"
	"tradewizard_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// syntheticCorrelationPrefix marks correlation ids minted locally when the
// gateway call failed at initiation. The transaction still gets a unique
// handle and stays pending until reconciled or manually reviewed.
const syntheticCorrelationPrefix = "LOCAL-"

type PaymentService interface {
	InitiateMpesaPayment(ctx context.Context, userID string, req *dto.MpesaInitiateRequest) (*dto.PaymentInitResponse, error)
	ProcessCardPayment(ctx context.Context, userID string, req *dto.CardPaymentRequest) (*dto.PaymentStatusResponse, error)

	// VerifyPayment is read only: it reports the current status and never
	// advances the transaction.
	VerifyPayment(userID, role, transactionID string) (*dto.PaymentStatusResponse, error)
	VerifyByCorrelationID(userID, role, checkoutRequestID string) (*dto.PaymentStatusResponse, error)

	// HandleMpesaCallback processes the asynchronous provider callback.
	// Malformed or unknown callbacks never produce an error; the handler
	// acknowledges with HTTP 200 regardless.
	HandleMpesaCallback(ctx context.Context, cb *dto.MpesaStkCallback)

	ListUserTransactions(userID string, kind models.TransactionKind, page, pageSize int) ([]models.Transaction, int64, error)
}

type PaymentServiceImpl struct {
	txRepo           repositories.TransactionRepository
	robotRepo        repositories.RobotRepository
	planRepo         repositories.SubscriptionPlanRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	mpesa            gateway.Client
	card             *gateway.CardClient
	emailProvider    email.Provider
	supervisor       *workers.Supervisor
	cfg              config.PaymentsConfig
}

func NewPaymentService(
	txRepo repositories.TransactionRepository,
	robotRepo repositories.RobotRepository,
	planRepo repositories.SubscriptionPlanRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	mpesa gateway.Client,
	card *gateway.CardClient,
	emailProvider email.Provider,
	supervisor *workers.Supervisor,
	cfg config.PaymentsConfig,
) PaymentService {
	return &PaymentServiceImpl{
		txRepo:           txRepo,
		robotRepo:        robotRepo,
		planRepo:         planRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mpesa:            mpesa,
		card:             card,
		emailProvider:    emailProvider,
		supervisor:       supervisor,
		cfg:              cfg,
	}
}

// InitiateMpesaPayment starts an STK push and returns while the transaction
// is still pending. A background poller picks up the outcome if the provider
// callback never arrives.
func (s *PaymentServiceImpl) InitiateMpesaPayment(ctx context.Context, userID string, req *dto.MpesaInitiateRequest) (*dto.PaymentInitResponse, error) {
	kind := models.TransactionKind(req.Kind)
	itemName, err := s.resolveItemName(kind, req.ItemID)
	if err != nil {
		return nil, err
	}

	phone := gateway.NormalizePhone(req.PhoneNumber)

	correlationID := ""
	customerMessage := ""
	checkout, err := s.mpesa.InitiateCheckout(ctx, &gateway.CheckoutRequest{
		PhoneNumber:      phone,
		Amount:           req.Amount,
		AccountReference: itemName,
		Description:      fmt.Sprintf("TradeWizard %s", kind),
	})
	if err != nil {
		// The push may or may not have reached the customer. Record the
		// attempt under a synthetic id so it can still be reconciled.
		correlationID = syntheticCorrelationPrefix + uuid.NewString()
		logger.CtxWithError(ctx, "stk push failed, recording transaction with synthetic correlation id", err,
			"correlation_id", correlationID)
	} else {
		correlationID = checkout.CheckoutRequestID
		customerMessage = checkout.CustomerMessage
	}

	tx := &models.Transaction{
		UserID:            userID,
		Kind:              kind,
		ItemID:            req.ItemID,
		Amount:            req.Amount,
		Currency:          "KES",
		PaymentMethod:     models.PaymentMethodMpesa,
		Status:            models.TransactionStatusPending,
		CheckoutRequestID: &correlationID,
		PhoneNumber:       phone,
	}
	if err := s.txRepo.Create(tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.schedulePoll(ctx, correlationID)

	return &dto.PaymentInitResponse{
		TransactionID:     tx.ID,
		CheckoutRequestID: correlationID,
		Status:            string(tx.Status),
		CustomerMessage:   customerMessage,
	}, nil
}

// ProcessCardPayment charges the card provider and resolves synchronously.
// The resolution still flows through the same conditional update as the
// asynchronous M-Pesa legs.
func (s *PaymentServiceImpl) ProcessCardPayment(ctx context.Context, userID string, req *dto.CardPaymentRequest) (*dto.PaymentStatusResponse, error) {
	kind := models.TransactionKind(req.Kind)
	if _, err := s.resolveItemName(kind, req.ItemID); err != nil {
		return nil, err
	}

	paymentID, err := s.card.Charge(ctx, &gateway.CardDetails{
		Number:         req.CardNumber,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		CardholderName: req.CardholderName,
	}, req.Amount)
	if err != nil {
		if apperrors.Is(err, gateway.ErrInvalidCard) {
			return nil, apperrors.ErrInvalidCardDetails
		}
		return nil, apperrors.ErrPaymentGatewayError
	}

	tx := &models.Transaction{
		UserID:            userID,
		Kind:              kind,
		ItemID:            req.ItemID,
		Amount:            req.Amount,
		Currency:          "KES",
		PaymentMethod:     models.PaymentMethodCard,
		Status:            models.TransactionStatusPending,
		CheckoutRequestID: &paymentID,
	}
	if err := s.txRepo.Create(tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.reconcileByCorrelationID(ctx, paymentID, true, "Card payment processed successfully")

	resolved, err := s.txRepo.FindByID(tx.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPaymentStatusResponse(resolved), nil
}

func (s *PaymentServiceImpl) VerifyPayment(userID, role, transactionID string) (*dto.PaymentStatusResponse, error) {
	tx, err := s.txRepo.FindByID(transactionID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return s.authorizeStatusRead(tx, userID, role)
}

func (s *PaymentServiceImpl) VerifyByCorrelationID(userID, role, checkoutRequestID string) (*dto.PaymentStatusResponse, error) {
	tx, err := s.txRepo.FindByCorrelationID(checkoutRequestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return s.authorizeStatusRead(tx, userID, role)
}

func (s *PaymentServiceImpl) authorizeStatusRead(tx *models.Transaction, userID, role string) (*dto.PaymentStatusResponse, error) {
	if tx.UserID != userID && role != string(models.UserRoleAdmin) {
		return nil, apperrors.ErrTransactionAccessDenied
	}
	return toPaymentStatusResponse(tx), nil
}

func (s *PaymentServiceImpl) HandleMpesaCallback(ctx context.Context, cb *dto.MpesaStkCallback) {
	logger.CtxInfo(ctx, "mpesa callback received",
		"correlation_id", cb.CheckoutRequestID,
		"result_code", cb.ResultCode,
	)

	success := cb.ResultCode == 0
	desc := cb.ResultDesc
	if desc == "" {
		desc = fmt.Sprintf("ResultCode %d", cb.ResultCode)
	}

	s.reconcileByCorrelationID(ctx, cb.CheckoutRequestID, success, desc)
}

func (s *PaymentServiceImpl) ListUserTransactions(userID string, kind models.TransactionKind, page, pageSize int) ([]models.Transaction, int64, error) {
	limit, offset := pageToRange(page, pageSize)
	txs, total, err := s.txRepo.FindByUser(userID, kind, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return txs, total, nil
}

// reconcileByCorrelationID is the single entry point that moves a transaction
// out of "pending". Both the callback and the poller land here; the
// conditional update in the repository makes the first caller win and turns
// every later call into a no-op.
func (s *PaymentServiceImpl) reconcileByCorrelationID(ctx context.Context, correlationID string, success bool, resultDesc string) {
	tx, err := s.txRepo.FindByCorrelationID(correlationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTransactionNotFound) {
			logger.CtxWarn(ctx, "reconcile skipped, unknown correlation id", "correlation_id", correlationID)
			return
		}
		logger.CtxWithError(ctx, "reconcile lookup failed", err, "correlation_id", correlationID)
		return
	}

	update, err := s.buildResolution(tx, success, resultDesc)
	if err != nil {
		logger.CtxWithError(ctx, "reconcile could not build resolution", err, "correlation_id", correlationID)
		return
	}

	updated, err := s.txRepo.ResolvePendingByCorrelationID(correlationID, *update)
	if err != nil {
		logger.CtxWithError(ctx, "reconcile update failed", err, "correlation_id", correlationID)
		return
	}
	if !updated {
		// Already resolved by the other leg. Nothing to do.
		return
	}

	logger.CtxInfo(ctx, "transaction reconciled",
		"correlation_id", correlationID,
		"transaction_id", tx.ID,
		"status", update.Status,
	)

	s.supervisor.Go(context.WithoutCancel(ctx), "payment-notify", func(ctx context.Context) error {
		return s.notifyResolution(tx, update.Status)
	})
}

// buildResolution maps a gateway outcome onto the terminal state for the
// transaction kind. Successful subscriptions become "active" with a period
// derived from the plan interval; successful purchases become "completed".
func (s *PaymentServiceImpl) buildResolution(tx *models.Transaction, success bool, resultDesc string) (*repositories.ResolutionUpdate, error) {
	if !success {
		return &repositories.ResolutionUpdate{
			Status:     models.TransactionStatusFailed,
			ResultDesc: resultDesc,
		}, nil
	}

	if !tx.IsSubscription() {
		return &repositories.ResolutionUpdate{
			Status:     models.TransactionStatusCompleted,
			ResultDesc: resultDesc,
		}, nil
	}

	plan, err := s.planRepo.FindByID(tx.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", tx.ItemID, err)
	}

	start := time.Now()
	end := start.AddDate(0, 1, 0)
	if plan.Interval == models.PlanIntervalYearly {
		end = start.AddDate(1, 0, 0)
	}
	active := true

	return &repositories.ResolutionUpdate{
		Status:     models.TransactionStatusActive,
		ResultDesc: resultDesc,
		StartDate:  &start,
		EndDate:    &end,
		IsActive:   &active,
	}, nil
}

// schedulePoll starts the bounded status poller for a pending transaction.
// The poller is a safety net for lost callbacks, not the primary path.
func (s *PaymentServiceImpl) schedulePoll(ctx context.Context, correlationID string) {
	s.supervisor.Go(context.WithoutCancel(ctx), "mpesa-status-poll", func(ctx context.Context) error {
		return s.pollUntilResolved(ctx, correlationID)
	})
}

// pollUntilResolved queries the gateway on a fixed interval for a bounded
// number of attempts. Gateway errors and indeterminate answers count as
// unresolved. When the attempts run out the transaction is left pending:
// guessing an outcome here would race the real one arriving later.
func (s *PaymentServiceImpl) pollUntilResolved(ctx context.Context, correlationID string) error {
	interval := s.cfg.PollInterval()
	attempts := s.cfg.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		tx, err := s.txRepo.FindByCorrelationID(correlationID)
		if err != nil {
			logger.CtxWithError(ctx, "poll lookup failed", err, "correlation_id", correlationID)
			continue
		}
		if tx.Status != models.TransactionStatusPending {
			// The callback got there first.
			return nil
		}

		status, err := s.mpesa.QueryStatus(ctx, correlationID)
		if err != nil {
			logger.CtxWarn(ctx, "poll query failed, retrying",
				"correlation_id", correlationID,
				"attempt", attempt,
				"error", err.Error(),
			)
			continue
		}
		if !status.Resolved {
			continue
		}

		s.reconcileByCorrelationID(ctx, correlationID, status.Success, status.ResultDesc)
		return nil
	}

	logger.CtxWarn(ctx, "payment unresolved after polling, leaving pending",
		"correlation_id", correlationID,
		"attempts", attempts,
	)
	return nil
}

// notifyResolution records an in-app notification and, on success, sends a
// receipt email. Failures here never affect the reconciled transaction.
func (s *PaymentServiceImpl) notifyResolution(tx *models.Transaction, status models.TransactionStatus) error {
	if err := s.notificationRepo.CreatePaymentResolvedNotification(tx.UserID, tx.ID, status); err != nil {
		return fmt.Errorf("create payment notification: %w", err)
	}

	if status != models.TransactionStatusCompleted && status != models.TransactionStatusActive {
		return nil
	}
	if s.emailProvider == nil {
		return nil
	}

	user, err := s.userRepo.FindByID(tx.UserID)
	if err != nil {
		return fmt.Errorf("load user for receipt: %w", err)
	}

	reference := tx.ID
	if tx.CheckoutRequestID != nil {
		reference = *tx.CheckoutRequestID
	}

	return s.emailProvider.SendWithTemplate(email.TemplatePaymentReceipt,
		email.TemplateData{
			"Name":      user.Name,
			"Amount":    tx.Amount,
			"Currency":  tx.Currency,
			"Reference": reference,
		},
		&email.Email{To: []string{user.Email}, Subject: "Your TradeWizard payment receipt"},
	)
}

// resolveItemName checks that the purchased item exists and returns a short
// label for the gateway account reference.
func (s *PaymentServiceImpl) resolveItemName(kind models.TransactionKind, itemID string) (string, error) {
	switch kind {
	case models.TransactionKindPurchase:
		robot, err := s.robotRepo.FindByID(itemID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrRobotNotFound) {
				return "", apperrors.ErrRobotNotFound
			}
			return "", apperrors.InternalError(err)
		}
		return robot.Name, nil
	case models.TransactionKindSubscription:
		plan, err := s.planRepo.FindByID(itemID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrPlanNotFound) {
				return "", apperrors.ErrPlanNotFound
			}
			return "", apperrors.InternalError(err)
		}
		return plan.Name, nil
	default:
		return "", apperrors.ErrInvalidOperation("payment", "Unknown transaction kind")
	}
}

func toPaymentStatusResponse(tx *models.Transaction) *dto.PaymentStatusResponse {
	resp := &dto.PaymentStatusResponse{
		TransactionID: tx.ID,
		Kind:          string(tx.Kind),
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		ResultDesc:    tx.ResultDesc,
		ResolvedAt:    tx.ResolvedAt,
	}
	if tx.CheckoutRequestID != nil {
		resp.CheckoutRequestID = *tx.CheckoutRequestID
	}
	return resp
}
