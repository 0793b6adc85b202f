package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradewizard_backend/internal/config"
	"tradewizard_backend/internal/logger"
)

const mpesaTimestampLayout = "20060102150405"

// MpesaClient talks to the Daraja STK push API.
type MpesaClient struct {
	cfg  config.MpesaConfig
	http *http.Client
}

func NewMpesaClient(cfg config.MpesaConfig) *MpesaClient {
	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &MpesaClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// NormalizePhone maps local Kenyan number forms to the 254 international
// prefix the API requires: 07XXXXXXXX and 7XXXXXXXX become 2547XXXXXXXX.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")

	switch {
	case strings.HasPrefix(phone, "254"):
		return phone
	case strings.HasPrefix(phone, "0"):
		return "254" + phone[1:]
	default:
		return "254" + phone
	}
}

// password builds the base64(shortcode+passkey+timestamp) API credential.
func (c *MpesaClient) password(timestamp string) string {
	raw := c.cfg.ShortCode + c.cfg.Passkey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func (c *MpesaClient) accessToken(ctx context.Context) (string, error) {
	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return body.AccessToken, nil
}

// InitiateCheckout issues the STK push request. The returned
// CheckoutRequestID is the correlation id used for callbacks and polling.
func (c *MpesaClient) InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(mpesaTimestampLayout)
	phone := NormalizePhone(req.PhoneNumber)

	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.ShortCode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int(req.Amount),
		"PartyA":            phone,
		"PartyB":            c.cfg.ShortCode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  req.AccountReference,
		"TransactionDesc":   req.Description,
	}

	var resp struct {
		MerchantRequestID   string `json:"MerchantRequestID"`
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		CustomerMessage     string `json:"CustomerMessage"`
	}
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", token, payload, &resp); err != nil {
		return nil, err
	}

	if resp.ResponseCode != "0" {
		logger.CtxWarn(ctx, "stk push rejected",
			"response_code", resp.ResponseCode,
			"description", resp.ResponseDescription,
		)
		return nil, fmt.Errorf("%w: response code %s", ErrGatewayUnavailable, resp.ResponseCode)
	}

	return &CheckoutResponse{
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		ResponseCode:      resp.ResponseCode,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

// QueryStatus asks Daraja for the outcome of an STK push. While the customer
// has not acted yet the API answers with an error payload; that is reported
// as unresolved, not as failure.
func (c *MpesaClient) QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(mpesaTimestampLayout)
	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.ShortCode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}

	var resp struct {
		ResponseCode string `json:"ResponseCode"`
		ResultCode   string `json:"ResultCode"`
		ResultDesc   string `json:"ResultDesc"`
	}
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", token, payload, &resp); err != nil {
		return nil, err
	}

	if resp.ResultCode == "" {
		return &StatusResult{Resolved: false}, nil
	}

	code, err := strconv.Atoi(resp.ResultCode)
	if err != nil {
		return &StatusResult{Resolved: false}, nil
	}

	return &StatusResult{
		Resolved:   true,
		Success:    code == 0,
		ResultCode: code,
		ResultDesc: resp.ResultDesc,
	}, nil
}

func (c *MpesaClient) post(ctx context.Context, path, token string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s returned %d", ErrGatewayUnavailable, path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
