package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tradewizard_backend/internal/auth"
	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPaymentService records calls and answers from canned responses.
type stubPaymentService struct {
	initResp  *dto.PaymentInitResponse
	initErr   error
	callbacks []*dto.MpesaStkCallback
}

func (s *stubPaymentService) InitiateMpesaPayment(ctx context.Context, userID string, req *dto.MpesaInitiateRequest) (*dto.PaymentInitResponse, error) {
	return s.initResp, s.initErr
}

func (s *stubPaymentService) ProcessCardPayment(ctx context.Context, userID string, req *dto.CardPaymentRequest) (*dto.PaymentStatusResponse, error) {
	return &dto.PaymentStatusResponse{TransactionID: "tx-card", Status: "completed"}, nil
}

func (s *stubPaymentService) VerifyPayment(userID, role, transactionID string) (*dto.PaymentStatusResponse, error) {
	return &dto.PaymentStatusResponse{TransactionID: transactionID, Status: "pending"}, nil
}

func (s *stubPaymentService) VerifyByCorrelationID(userID, role, checkoutRequestID string) (*dto.PaymentStatusResponse, error) {
	return &dto.PaymentStatusResponse{CheckoutRequestID: checkoutRequestID, Status: "pending"}, nil
}

func (s *stubPaymentService) HandleMpesaCallback(ctx context.Context, cb *dto.MpesaStkCallback) {
	s.callbacks = append(s.callbacks, cb)
}

func (s *stubPaymentService) ListUserTransactions(userID string, kind models.TransactionKind, page, pageSize int) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}

func newPaymentTestRouter(t *testing.T, svc *stubPaymentService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	handler := NewPaymentHandler(NewBaseHandler(validator.New()), svc)
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAck(t *testing.T, w *httptest.ResponseRecorder) dto.MpesaAck {
	t.Helper()
	var ack dto.MpesaAck
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&ack))
	return ack
}

func TestMpesaCallbackAcceptsValidPayload(t *testing.T) {
	svc := &stubPaymentService{}
	r := newPaymentTestRouter(t, svc)

	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully."
			}
		}
	}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/callback", body, "")

	assert.Equal(t, http.StatusOK, w.Code)
	ack := decodeAck(t, w)
	assert.Equal(t, 0, ack.ResultCode)

	require.Len(t, svc.callbacks, 1)
	assert.Equal(t, "ws_CO_191220191020363925", svc.callbacks[0].CheckoutRequestID)
	assert.Equal(t, 0, svc.callbacks[0].ResultCode)
}

func TestMpesaCallbackRejectsGarbageWithOK(t *testing.T) {
	svc := &stubPaymentService{}
	r := newPaymentTestRouter(t, svc)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/callback", `{not json`, "")

	// The provider only understands 200; rejection travels in the ack body.
	assert.Equal(t, http.StatusOK, w.Code)
	ack := decodeAck(t, w)
	assert.Equal(t, 1, ack.ResultCode)
	assert.Empty(t, svc.callbacks)
}

func TestMpesaCallbackRejectsMissingCheckoutID(t *testing.T) {
	svc := &stubPaymentService{}
	r := newPaymentTestRouter(t, svc)

	body := `{"Body": {"stkCallback": {"ResultCode": 0}}}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/callback", body, "")

	assert.Equal(t, http.StatusOK, w.Code)
	ack := decodeAck(t, w)
	assert.Equal(t, 1, ack.ResultCode)
	assert.Empty(t, svc.callbacks)
}

func TestInitiateMpesaRequiresAuth(t *testing.T) {
	r := newPaymentTestRouter(t, &stubPaymentService{})

	body := `{"phone_number":"0712345678","amount":100,"kind":"purchase","item_id":"0d4cdc29-6ab5-4c26-a2d7-4048ec3f1c86"}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/initiate", body, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInitiateMpesaReturnsAccepted(t *testing.T) {
	auth.Init("handler-test-secret", 60)
	token, err := auth.GenerateToken("4f9c3a2e-8d71-4e9b-9f51-0aa51f7de1cd", "user")
	require.NoError(t, err)

	svc := &stubPaymentService{
		initResp: &dto.PaymentInitResponse{
			TransactionID:     "tx-1",
			CheckoutRequestID: "ws_CO_123",
			Status:            "pending",
		},
	}
	r := newPaymentTestRouter(t, svc)

	body := `{"phone_number":"0712345678","amount":100,"kind":"purchase","item_id":"0d4cdc29-6ab5-4c26-a2d7-4048ec3f1c86"}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/initiate", body, token)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.PaymentInitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "ws_CO_123", resp.CheckoutRequestID)
}

func TestInitiateMpesaRejectsBadPhone(t *testing.T) {
	auth.Init("handler-test-secret", 60)
	token, err := auth.GenerateToken("4f9c3a2e-8d71-4e9b-9f51-0aa51f7de1cd", "user")
	require.NoError(t, err)

	r := newPaymentTestRouter(t, &stubPaymentService{})

	body := `{"phone_number":"12345","amount":100,"kind":"purchase","item_id":"0d4cdc29-6ab5-4c26-a2d7-4048ec3f1c86"}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/mpesa/initiate", body, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
