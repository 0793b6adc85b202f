package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tradewizard_backend/internal/config"
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/gateway"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/internal/workers"
	"tradewizard_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

type fakeTransactionRepo struct {
	mu  sync.Mutex
	txs map[string]*models.Transaction // keyed by id
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[string]*models.Transaction)}
}

func (r *fakeTransactionRepo) Create(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TransactionStatusPending
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) FindByID(id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTransactionRepo) FindByCorrelationID(correlationID string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.CheckoutRequestID != nil && *tx.CheckoutRequestID == correlationID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByUser(userID string, kind models.TransactionKind, limit, offset int) ([]models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, tx := range r.txs {
		if tx.UserID == userID && (kind == "" || tx.Kind == kind) {
			out = append(out, *tx)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ResolvePendingByCorrelationID(correlationID string, update repositories.ResolutionUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.CheckoutRequestID == nil || *tx.CheckoutRequestID != correlationID {
			continue
		}
		if tx.Status != models.TransactionStatusPending {
			return false, nil
		}
		now := time.Now()
		tx.Status = update.Status
		tx.ResultDesc = update.ResultDesc
		tx.ResolvedAt = &now
		tx.StartDate = update.StartDate
		tx.EndDate = update.EndDate
		tx.IsActive = update.IsActive
		return true, nil
	}
	return false, nil
}

func (r *fakeTransactionRepo) CancelActiveSubscription(id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.UserID != userID || tx.Kind != models.TransactionKindSubscription ||
		tx.Status != models.TransactionStatusActive {
		return false, nil
	}
	now := time.Now()
	active := false
	tx.Status = models.TransactionStatusCancelled
	tx.IsActive = &active
	tx.CancelledAt = &now
	return true, nil
}

func (r *fakeTransactionRepo) FindActiveSubscription(userID, planID string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.UserID == userID && tx.Kind == models.TransactionKindSubscription &&
			tx.Status == models.TransactionStatusActive && (planID == "" || tx.ItemID == planID) {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindUserSubscriptions(userID string, limit, offset int) ([]models.Transaction, int64, error) {
	return r.FindByUser(userID, models.TransactionKindSubscription, limit, offset)
}

type fakeGateway struct {
	mu sync.Mutex

	initiateErr  error
	checkoutID   string
	statusResult *gateway.StatusResult
	statusErr    error
	queryCalls   int
}

func (g *fakeGateway) InitiateCheckout(ctx context.Context, req *gateway.CheckoutRequest) (*gateway.CheckoutResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	return &gateway.CheckoutResponse{
		CheckoutRequestID: g.checkoutID,
		ResponseCode:      "0",
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

func (g *fakeGateway) QueryStatus(ctx context.Context, checkoutRequestID string) (*gateway.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queryCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	if g.statusResult == nil {
		return &gateway.StatusResult{Resolved: false}, nil
	}
	return g.statusResult, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queryCalls
}

type fakeNotificationRepo struct {
	mu       sync.Mutex
	resolved []models.TransactionStatus
}

func (r *fakeNotificationRepo) CreateNotification(n *models.Notification) error { return nil }
func (r *fakeNotificationRepo) FindNotificationByID(id string) (*models.Notification, error) {
	return nil, repositories.ErrNotificationNotFound
}
func (r *fakeNotificationRepo) FindUserNotifications(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (r *fakeNotificationRepo) MarkAsRead(userID, notificationID string) error { return nil }
func (r *fakeNotificationRepo) MarkAllAsRead(userID string) error              { return nil }
func (r *fakeNotificationRepo) GetUnreadCount(userID string) (int64, error)    { return 0, nil }
func (r *fakeNotificationRepo) CreatePaymentResolvedNotification(userID, transactionID string, status models.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, status)
	return nil
}
func (r *fakeNotificationRepo) CreateRequestStatusNotification(userID, requestID string, status models.RobotRequestStatus) error {
	return nil
}
func (r *fakeNotificationRepo) CreateSubscriptionExpiredNotification(userID, transactionID string) error {
	return nil
}
func (r *fakeNotificationRepo) CreateNewMessageNotification(recipientID, conversationID string) error {
	return nil
}

type fakeRobotRepo struct {
	robots map[string]*models.Robot
}

func (r *fakeRobotRepo) Create(robot *models.Robot) error { return nil }
func (r *fakeRobotRepo) FindByID(id string) (*models.Robot, error) {
	robot, ok := r.robots[id]
	if !ok {
		return nil, repositories.ErrRobotNotFound
	}
	return robot, nil
}
func (r *fakeRobotRepo) FindAll(criteria repositories.RobotFilter) ([]models.Robot, int64, error) {
	return nil, 0, nil
}
func (r *fakeRobotRepo) Update(robot *models.Robot) error { return nil }
func (r *fakeRobotRepo) Delete(id string) error           { return nil }

type fakePlanRepo struct {
	plans map[string]*models.SubscriptionPlan
}

func (r *fakePlanRepo) Create(plan *models.SubscriptionPlan) error { return nil }
func (r *fakePlanRepo) FindByID(id string) (*models.SubscriptionPlan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	return plan, nil
}
func (r *fakePlanRepo) FindAll(activeOnly bool) ([]models.SubscriptionPlan, error) { return nil, nil }
func (r *fakePlanRepo) Update(plan *models.SubscriptionPlan) error                 { return nil }
func (r *fakePlanRepo) Deactivate(id string) error                                 { return nil }

type fakeUserRepo struct{}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	return &models.User{Name: "Test User", Email: "test@example.com"}, nil
}
func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (r *fakeUserRepo) Create(user *models.User) error          { return nil }
func (r *fakeUserRepo) Update(user *models.User) error          { return nil }
func (r *fakeUserRepo) Delete(userID string) error              { return nil }
func (r *fakeUserRepo) FindAll(limit, offset int) ([]models.User, error) { return nil, nil }
func (r *fakeUserRepo) CountAll() (int64, error)                { return 0, nil }

// --- Fixture ---

type paymentFixture struct {
	txRepo     *fakeTransactionRepo
	gw         *fakeGateway
	notifs     *fakeNotificationRepo
	supervisor *workers.Supervisor
	service    PaymentService
}

func newPaymentFixture(t *testing.T, cfg config.PaymentsConfig) *paymentFixture {
	t.Helper()

	txRepo := newFakeTransactionRepo()
	gw := &fakeGateway{checkoutID: "ws_CO_123456"}
	notifs := &fakeNotificationRepo{}
	sup := workers.NewSupervisor()

	robotID := "6f1e1d88-9a13-4b47-9f51-02a2f1a7d001"
	planID := "6f1e1d88-9a13-4b47-9f51-02a2f1a7d002"

	svc := NewPaymentService(
		txRepo,
		&fakeRobotRepo{robots: map[string]*models.Robot{
			robotID: {Name: "Scalper Pro", Price: 4999},
		}},
		&fakePlanRepo{plans: map[string]*models.SubscriptionPlan{
			planID: {Name: "Premium", Price: 1500, Interval: models.PlanIntervalMonthly},
		}},
		&fakeUserRepo{},
		notifs,
		gw,
		gateway.NewCardClient(),
		nil,
		sup,
		cfg,
	)

	return &paymentFixture{txRepo: txRepo, gw: gw, notifs: notifs, supervisor: sup, service: svc}
}

const (
	testRobotID = "6f1e1d88-9a13-4b47-9f51-02a2f1a7d001"
	testPlanID  = "6f1e1d88-9a13-4b47-9f51-02a2f1a7d002"
	testUserID  = "aaaaaaaa-0000-0000-0000-000000000001"
	otherUserID = "aaaaaaaa-0000-0000-0000-000000000002"
)

// pollOff keeps the background poller effectively idle during a test.
var pollOff = config.PaymentsConfig{PollIntervalSeconds: 3600, MaxPollAttempts: 1}

func initiateTestPayment(t *testing.T, f *paymentFixture) *dto.PaymentInitResponse {
	t.Helper()
	resp, err := f.service.InitiateMpesaPayment(context.Background(), testUserID, &dto.MpesaInitiateRequest{
		PhoneNumber: "0712345678",
		Amount:      4999,
		Kind:        string(models.TransactionKindPurchase),
		ItemID:      testRobotID,
	})
	require.NoError(t, err)
	return resp
}

// --- Tests ---

func TestInitiateMpesaPaymentCreatesPending(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	resp := initiateTestPayment(t, f)

	assert.Equal(t, "ws_CO_123456", resp.CheckoutRequestID)
	assert.Equal(t, string(models.TransactionStatusPending), resp.Status)

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, "254712345678", tx.PhoneNumber)
}

func TestInitiateMpesaPaymentGatewayDownStillRecords(t *testing.T) {
	f := newPaymentFixture(t, pollOff)
	f.gw.initiateErr = gateway.ErrGatewayUnavailable

	resp, err := f.service.InitiateMpesaPayment(context.Background(), testUserID, &dto.MpesaInitiateRequest{
		PhoneNumber: "0712345678",
		Amount:      4999,
		Kind:        string(models.TransactionKindPurchase),
		ItemID:      testRobotID,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.CheckoutRequestID, "LOCAL-"))
	assert.Equal(t, string(models.TransactionStatusPending), resp.Status)
}

func TestInitiateMpesaPaymentUnknownRobot(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	_, err := f.service.InitiateMpesaPayment(context.Background(), testUserID, &dto.MpesaInitiateRequest{
		PhoneNumber: "0712345678",
		Amount:      4999,
		Kind:        string(models.TransactionKindPurchase),
		ItemID:      "6f1e1d88-9a13-4b47-9f51-02a2f1a7dfff",
	})
	assert.ErrorIs(t, err, apperrors.ErrRobotNotFound)
}

func TestCallbackSuccessCompletesPurchase(t *testing.T) {
	f := newPaymentFixture(t, pollOff)
	resp := initiateTestPayment(t, f)

	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
	})
	f.supervisor.Shutdown()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.NotNil(t, tx.ResolvedAt)
	assert.Equal(t, []models.TransactionStatus{models.TransactionStatusCompleted}, f.notifs.resolved)
}

func TestCallbackFailureMarksFailed(t *testing.T) {
	f := newPaymentFixture(t, pollOff)
	resp := initiateTestPayment(t, f)

	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	})
	f.supervisor.Shutdown()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
	assert.Equal(t, "Request cancelled by user", tx.ResultDesc)
}

func TestReconcileIsMonotonic(t *testing.T) {
	f := newPaymentFixture(t, pollOff)
	resp := initiateTestPayment(t, f)

	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        0,
	})
	// A contradicting late callback must be a no-op.
	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        1,
		ResultDesc:        "late failure",
	})
	f.supervisor.Shutdown()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Len(t, f.notifs.resolved, 1)
}

func TestCallbackUnknownCorrelationIDIsNoOp(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: "ws_CO_unknown",
		ResultCode:        0,
	})
	f.supervisor.Shutdown()

	assert.Empty(t, f.notifs.resolved)
}

func TestCallbackActivatesSubscription(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	resp, err := f.service.InitiateMpesaPayment(context.Background(), testUserID, &dto.MpesaInitiateRequest{
		PhoneNumber: "0712345678",
		Amount:      1500,
		Kind:        string(models.TransactionKindSubscription),
		ItemID:      testPlanID,
	})
	require.NoError(t, err)

	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        0,
	})
	f.supervisor.Shutdown()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusActive, tx.Status)
	require.NotNil(t, tx.StartDate)
	require.NotNil(t, tx.EndDate)
	require.NotNil(t, tx.IsActive)
	assert.True(t, *tx.IsActive)
	assert.WithinDuration(t, tx.StartDate.AddDate(0, 1, 0), *tx.EndDate, time.Minute)
}

func TestVerifyPayment(t *testing.T) {
	f := newPaymentFixture(t, pollOff)
	resp := initiateTestPayment(t, f)

	status, err := f.service.VerifyPayment(testUserID, string(models.UserRoleUser), resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, string(models.TransactionStatusPending), status.Status)

	_, err = f.service.VerifyPayment(otherUserID, string(models.UserRoleUser), resp.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrTransactionAccessDenied)

	_, err = f.service.VerifyPayment(testUserID, string(models.UserRoleUser), "aaaaaaaa-0000-0000-0000-00000000ffff")
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	// Admins may inspect any transaction.
	_, err = f.service.VerifyPayment(otherUserID, string(models.UserRoleAdmin), resp.TransactionID)
	assert.NoError(t, err)
}

func TestPollReconcilesWhenGatewayResolves(t *testing.T) {
	f := newPaymentFixture(t, config.PaymentsConfig{PollIntervalSeconds: 1, MaxPollAttempts: 3})
	f.gw.statusResult = &gateway.StatusResult{
		Resolved:   true,
		Success:    true,
		ResultDesc: "The service request is processed successfully.",
	}

	resp := initiateTestPayment(t, f)
	f.supervisor.Wait()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, 1, f.gw.calls())
}

func TestPollExhaustionLeavesPending(t *testing.T) {
	f := newPaymentFixture(t, config.PaymentsConfig{PollIntervalSeconds: 1, MaxPollAttempts: 2})
	f.gw.statusErr = errors.New("timeout talking to daraja")

	resp := initiateTestPayment(t, f)
	f.supervisor.Wait()

	// Errors count as unresolved; after the attempt budget the transaction
	// must stay pending rather than being guessed into a terminal state.
	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, 2, f.gw.calls())
}

func TestPollStopsWhenCallbackWins(t *testing.T) {
	f := newPaymentFixture(t, config.PaymentsConfig{PollIntervalSeconds: 1, MaxPollAttempts: 5})

	resp := initiateTestPayment(t, f)
	f.service.HandleMpesaCallback(context.Background(), &dto.MpesaStkCallback{
		CheckoutRequestID: resp.CheckoutRequestID,
		ResultCode:        0,
	})
	f.supervisor.Wait()

	tx, err := f.txRepo.FindByID(resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	// The poller notices the resolved row and exits without querying.
	assert.Equal(t, 0, f.gw.calls())
}

func TestProcessCardPaymentResolvesSynchronously(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	resp, err := f.service.ProcessCardPayment(context.Background(), testUserID, &dto.CardPaymentRequest{
		CardNumber:     "4242424242424242",
		ExpiryMonth:    12,
		ExpiryYear:     time.Now().Year() + 1,
		CVV:            "123",
		CardholderName: "Test User",
		Amount:         4999,
		Kind:           string(models.TransactionKindPurchase),
		ItemID:         testRobotID,
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.TransactionStatusCompleted), resp.Status)
	assert.True(t, strings.HasPrefix(resp.CheckoutRequestID, "CARD-"))
}

func TestProcessCardPaymentRejectsBadCard(t *testing.T) {
	f := newPaymentFixture(t, pollOff)

	_, err := f.service.ProcessCardPayment(context.Background(), testUserID, &dto.CardPaymentRequest{
		CardNumber:     "4242",
		ExpiryMonth:    12,
		ExpiryYear:     time.Now().Year() + 1,
		CVV:            "123",
		CardholderName: "Test User",
		Amount:         4999,
		Kind:           string(models.TransactionKindPurchase),
		ItemID:         testRobotID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCardDetails)
}
