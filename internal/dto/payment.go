package dto

import "time"

// MpesaInitiateRequest starts an STK push payment. Kind selects whether the
// resulting transaction is a robot purchase or a plan subscription.
type MpesaInitiateRequest struct {
	PhoneNumber string  `json:"phone_number" validate:"required,kenyan_phone"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Kind        string  `json:"kind" validate:"required,oneof=purchase subscription"`
	ItemID      string  `json:"item_id" validate:"required,uuid4"`
}

// MpesaVerifyRequest asks for the current status of a checkout.
type MpesaVerifyRequest struct {
	CheckoutRequestID string `json:"checkout_request_id" validate:"required"`
}

type CardPaymentRequest struct {
	CardNumber     string  `json:"card_number" validate:"required,min=13,max=19"`
	ExpiryMonth    int     `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear     int     `json:"expiry_year" validate:"required,min=2000"`
	CVV            string  `json:"cvv" validate:"required,min=3,max=4"`
	CardholderName string  `json:"cardholder_name" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Kind           string  `json:"kind" validate:"required,oneof=purchase subscription"`
	ItemID         string  `json:"item_id" validate:"required,uuid4"`
}

// PaymentInitResponse is returned immediately after initiation, while the
// transaction is still pending.
type PaymentInitResponse struct {
	TransactionID     string `json:"transaction_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	Status            string `json:"status"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

type PaymentStatusResponse struct {
	TransactionID     string     `json:"transaction_id"`
	CheckoutRequestID string     `json:"checkout_request_id,omitempty"`
	Kind              string     `json:"kind"`
	Status            string     `json:"status"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	ResultDesc        string     `json:"result_desc,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}

// MpesaCallbackEnvelope is the Daraja stkCallback payload.
type MpesaCallbackEnvelope struct {
	Body struct {
		StkCallback MpesaStkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type MpesaStkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []MpesaCallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type MpesaCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// MpesaAck is the acknowledgement body the provider expects. The HTTP status
// is always 200; ResultCode signals acceptance.
type MpesaAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
