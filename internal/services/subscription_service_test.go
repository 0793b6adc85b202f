package services

import (
	"context"
	"testing"
	"time"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPaymentService captures the initiation request Subscribe builds.
type recordingPaymentService struct {
	lastInitiate *dto.MpesaInitiateRequest
}

func (p *recordingPaymentService) InitiateMpesaPayment(ctx context.Context, userID string, req *dto.MpesaInitiateRequest) (*dto.PaymentInitResponse, error) {
	p.lastInitiate = req
	return &dto.PaymentInitResponse{TransactionID: "tx-sub", Status: string(models.TransactionStatusPending)}, nil
}

func (p *recordingPaymentService) ProcessCardPayment(ctx context.Context, userID string, req *dto.CardPaymentRequest) (*dto.PaymentStatusResponse, error) {
	return nil, nil
}

func (p *recordingPaymentService) VerifyPayment(userID, role, transactionID string) (*dto.PaymentStatusResponse, error) {
	return nil, nil
}

func (p *recordingPaymentService) VerifyByCorrelationID(userID, role, checkoutRequestID string) (*dto.PaymentStatusResponse, error) {
	return nil, nil
}

func (p *recordingPaymentService) HandleMpesaCallback(ctx context.Context, cb *dto.MpesaStkCallback) {}

func (p *recordingPaymentService) ListUserTransactions(userID string, kind models.TransactionKind, page, pageSize int) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}

func newSubscriptionFixture() (*fakeTransactionRepo, *recordingPaymentService, SubscriptionService) {
	txRepo := newFakeTransactionRepo()
	payments := &recordingPaymentService{}
	planRepo := &fakePlanRepo{plans: map[string]*models.SubscriptionPlan{
		testPlanID: {
			BaseModel: models.BaseModel{ID: testPlanID},
			Name:      "Premium",
			Price:     1500,
			Interval:  models.PlanIntervalMonthly,
			IsActive:  true,
		},
	}}
	return txRepo, payments, NewSubscriptionService(planRepo, txRepo, payments)
}

func seedSubscription(t *testing.T, txRepo *fakeTransactionRepo, status models.TransactionStatus) string {
	t.Helper()

	active := status == models.TransactionStatusActive
	now := time.Now()
	tx := &models.Transaction{
		UserID:    testUserID,
		Kind:      models.TransactionKindSubscription,
		ItemID:    testPlanID,
		Amount:    1500,
		Status:    status,
		StartDate: &now,
		IsActive:  &active,
	}
	require.NoError(t, txRepo.Create(tx))
	return tx.ID
}

func TestSubscribeDelegatesToPaymentInitiation(t *testing.T) {
	_, payments, svc := newSubscriptionFixture()

	resp, err := svc.Subscribe(context.Background(), testUserID, &dto.SubscribeRequest{
		PlanID:        testPlanID,
		PaymentMethod: "mpesa",
		PhoneNumber:   "0712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.TransactionStatusPending), resp.Status)

	require.NotNil(t, payments.lastInitiate)
	assert.Equal(t, testPlanID, payments.lastInitiate.ItemID)
	assert.Equal(t, string(models.TransactionKindSubscription), payments.lastInitiate.Kind)
	assert.Equal(t, float64(1500), payments.lastInitiate.Amount)
}

func TestSubscribeRejectsDuplicateActivePlan(t *testing.T) {
	txRepo, _, svc := newSubscriptionFixture()
	seedSubscription(t, txRepo, models.TransactionStatusActive)

	_, err := svc.Subscribe(context.Background(), testUserID, &dto.SubscribeRequest{
		PlanID:        testPlanID,
		PaymentMethod: "mpesa",
		PhoneNumber:   "0712345678",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPCode)
}

func TestSubscribeMpesaRequiresPhone(t *testing.T) {
	_, _, svc := newSubscriptionFixture()

	_, err := svc.Subscribe(context.Background(), testUserID, &dto.SubscribeRequest{
		PlanID:        testPlanID,
		PaymentMethod: "mpesa",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhoneNumber)
}

func TestSubscribeRejectsCardMethod(t *testing.T) {
	_, _, svc := newSubscriptionFixture()

	_, err := svc.Subscribe(context.Background(), testUserID, &dto.SubscribeRequest{
		PlanID:        testPlanID,
		PaymentMethod: "card",
	})
	assert.Error(t, err)
}

func TestSubscribeUnknownPlan(t *testing.T) {
	_, _, svc := newSubscriptionFixture()

	_, err := svc.Subscribe(context.Background(), testUserID, &dto.SubscribeRequest{
		PlanID:        "1f000000-0000-0000-0000-000000000000",
		PaymentMethod: "mpesa",
		PhoneNumber:   "0712345678",
	})
	assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
}

func TestCancelActiveSubscription(t *testing.T) {
	txRepo, _, svc := newSubscriptionFixture()
	id := seedSubscription(t, txRepo, models.TransactionStatusActive)

	require.NoError(t, svc.Cancel(testUserID, id))

	tx, err := txRepo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCancelled, tx.Status)
	require.NotNil(t, tx.IsActive)
	assert.False(t, *tx.IsActive)
	assert.NotNil(t, tx.CancelledAt)
}

func TestCancelOnlySucceedsFromActive(t *testing.T) {
	txRepo, _, svc := newSubscriptionFixture()

	pendingID := seedSubscription(t, txRepo, models.TransactionStatusPending)
	assert.ErrorIs(t, svc.Cancel(testUserID, pendingID), apperrors.ErrSubscriptionNotActive)

	activeID := seedSubscription(t, txRepo, models.TransactionStatusActive)
	require.NoError(t, svc.Cancel(testUserID, activeID))
	assert.ErrorIs(t, svc.Cancel(testUserID, activeID), apperrors.ErrSubscriptionCancelled)
}

func TestCancelForeignSubscriptionNotFound(t *testing.T) {
	txRepo, _, svc := newSubscriptionFixture()
	id := seedSubscription(t, txRepo, models.TransactionStatusActive)

	assert.ErrorIs(t, svc.Cancel(otherUserID, id), apperrors.ErrSubscriptionNotFound)
	assert.ErrorIs(t, svc.Cancel(testUserID, "2f000000-0000-0000-0000-000000000000"), apperrors.ErrSubscriptionNotFound)
}

func TestSubscriptionStatus(t *testing.T) {
	txRepo, _, svc := newSubscriptionFixture()

	status, err := svc.Status(testUserID, testPlanID)
	require.NoError(t, err)
	assert.False(t, status.HasActive)

	seedSubscription(t, txRepo, models.TransactionStatusActive)

	status, err = svc.Status(testUserID, testPlanID)
	require.NoError(t, err)
	assert.True(t, status.HasActive)
}
