package gateway

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable is returned when the provider cannot be reached.
// Initiation survives it: the payment service records the transaction with
// a synthetic correlation id and lets the poller retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// CheckoutRequest asks the provider to start a customer-facing payment.
type CheckoutRequest struct {
	PhoneNumber      string
	Amount           float64
	AccountReference string
	Description      string
}

// CheckoutResponse carries the provider correlation id for the checkout.
type CheckoutResponse struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResponseCode      string
	CustomerMessage   string
}

// StatusResult is the outcome of a status query. Resolved is false while the
// provider still considers the payment in flight.
type StatusResult struct {
	Resolved   bool
	Success    bool
	ResultCode int
	ResultDesc string
}

// Client is the payment provider abstraction the reconciler polls against.
type Client interface {
	InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)
	QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error)
}
