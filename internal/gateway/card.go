package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var ErrInvalidCard = errors.New("invalid card details")

// CardDetails is what the mock provider validates before "charging".
type CardDetails struct {
	Number         string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	CardholderName string
}

// CardClient is a stand-in card processor. It validates the card shape and
// resolves synchronously; there is no asynchronous leg to poll.
type CardClient struct{}

func NewCardClient() *CardClient {
	return &CardClient{}
}

// Charge validates the card and returns a provider payment id. The id goes
// into the same correlation-id column the M-Pesa checkout id uses.
func (c *CardClient) Charge(ctx context.Context, card *CardDetails, amount float64) (string, error) {
	if err := ValidateCard(card); err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: non-positive amount", ErrInvalidCard)
	}

	return "CARD-" + uuid.NewString(), nil
}

// QueryStatus satisfies the Client poll contract: card charges resolve at
// Charge time, so any queried charge is already successful.
func (c *CardClient) QueryStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	return &StatusResult{
		Resolved:   true,
		Success:    true,
		ResultCode: 0,
		ResultDesc: "The service request is processed successfully.",
	}, nil
}

// ValidateCard applies the basic shape checks: digit-only number of 13-19
// characters, a future expiry and a 3-4 digit CVV.
func ValidateCard(card *CardDetails) error {
	number := strings.ReplaceAll(card.Number, " ", "")
	if len(number) < 13 || len(number) > 19 {
		return fmt.Errorf("%w: card number length", ErrInvalidCard)
	}
	for _, r := range number {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: card number must be digits", ErrInvalidCard)
		}
	}

	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month", ErrInvalidCard)
	}

	now := time.Now()
	endOfExpiry := time.Date(card.ExpiryYear, time.Month(card.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !endOfExpiry.After(now) {
		return fmt.Errorf("%w: card expired", ErrInvalidCard)
	}

	if len(card.CVV) < 3 || len(card.CVV) > 4 {
		return fmt.Errorf("%w: cvv length", ErrInvalidCard)
	}
	for _, r := range card.CVV {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: cvv must be digits", ErrInvalidCard)
		}
	}

	if strings.TrimSpace(card.CardholderName) == "" {
		return fmt.Errorf("%w: cardholder name required", ErrInvalidCard)
	}

	return nil
}
