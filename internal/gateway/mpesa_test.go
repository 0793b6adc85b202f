package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradewizard_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"0712345678", "254712345678"},
		{"0112345678", "254112345678"},
		{"712345678", "254712345678"},
		{" 0712345678 ", "254712345678"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func newTestMpesaServer(t *testing.T, stkHandler, queryHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	if stkHandler != nil {
		mux.HandleFunc("/mpesa/stkpush/v1/processrequest", stkHandler)
	}
	if queryHandler != nil {
		mux.HandleFunc("/mpesa/stkpushquery/v1/query", queryHandler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testMpesaConfig(baseURL string) config.MpesaConfig {
	return config.MpesaConfig{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/api/v1/payments/mpesa/callback",
	}
}

func TestInitiateCheckout(t *testing.T) {
	srv := newTestMpesaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "174379", payload["BusinessShortCode"])
		assert.Equal(t, "254712345678", payload["PhoneNumber"])
		assert.Equal(t, "CustomerPayBillOnline", payload["TransactionType"])

		json.NewEncoder(w).Encode(map[string]string{
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResponseCode":      "0",
			"CustomerMessage":   "Success. Request accepted for processing",
		})
	}, nil)

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	resp, err := client.InitiateCheckout(context.Background(), &CheckoutRequest{
		PhoneNumber:      "0712345678",
		Amount:           100,
		AccountReference: "Scalper Pro",
		Description:      "TradeWizard purchase",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
}

func TestInitiateCheckoutRejectedResponseCode(t *testing.T) {
	srv := newTestMpesaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"ResponseCode":        "1",
			"ResponseDescription": "Insufficient balance",
		})
	}, nil)

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	_, err := client.InitiateCheckout(context.Background(), &CheckoutRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
	})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestInitiateCheckoutServerError(t *testing.T) {
	srv := newTestMpesaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	_, err := client.InitiateCheckout(context.Background(), &CheckoutRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
	})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestQueryStatusResolved(t *testing.T) {
	srv := newTestMpesaServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"ResponseCode": "0",
			"ResultCode":   "0",
			"ResultDesc":   "The service request is processed successfully.",
		})
	})

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	status, err := client.QueryStatus(context.Background(), "ws_CO_123")
	require.NoError(t, err)
	assert.True(t, status.Resolved)
	assert.True(t, status.Success)
	assert.Equal(t, 0, status.ResultCode)
}

func TestQueryStatusFailedOutcome(t *testing.T) {
	srv := newTestMpesaServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"ResponseCode": "0",
			"ResultCode":   "1032",
			"ResultDesc":   "Request cancelled by user",
		})
	})

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	status, err := client.QueryStatus(context.Background(), "ws_CO_123")
	require.NoError(t, err)
	assert.True(t, status.Resolved)
	assert.False(t, status.Success)
	assert.Equal(t, 1032, status.ResultCode)
}

func TestQueryStatusStillProcessing(t *testing.T) {
	// While the customer has not acted, the API answers without a ResultCode.
	srv := newTestMpesaServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"errorCode":    "500.001.1001",
			"errorMessage": "The transaction is being processed",
		})
	})

	client := NewMpesaClient(testMpesaConfig(srv.URL))
	status, err := client.QueryStatus(context.Background(), "ws_CO_123")
	require.NoError(t, err)
	assert.False(t, status.Resolved)
}
