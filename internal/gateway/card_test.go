package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestCard() *CardDetails {
	return &CardDetails{
		Number:         "4242 4242 4242 4242",
		ExpiryMonth:    12,
		ExpiryYear:     time.Now().Year() + 2,
		CVV:            "123",
		CardholderName: "Jane Wanjiku",
	}
}

func TestChargeReturnsProviderID(t *testing.T) {
	client := NewCardClient()

	id, err := client.Charge(context.Background(), validTestCard(), 2500)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "CARD-"))

	other, err := client.Charge(context.Background(), validTestCard(), 2500)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	client := NewCardClient()

	_, err := client.Charge(context.Background(), validTestCard(), 0)
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestCardQueryStatusAlwaysResolved(t *testing.T) {
	client := NewCardClient()

	status, err := client.QueryStatus(context.Background(), "CARD-123")
	require.NoError(t, err)
	assert.True(t, status.Resolved)
	assert.True(t, status.Success)
}

func TestValidateCard(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CardDetails)
		ok     bool
	}{
		{"valid", func(c *CardDetails) {}, true},
		{"valid with spaces", func(c *CardDetails) { c.Number = "4242 4242 4242 4242" }, true},
		{"too short", func(c *CardDetails) { c.Number = "42424242" }, false},
		{"letters in number", func(c *CardDetails) { c.Number = "4242abcd42424242" }, false},
		{"bad month", func(c *CardDetails) { c.ExpiryMonth = 13 }, false},
		{"expired", func(c *CardDetails) { c.ExpiryYear = 2020 }, false},
		{"expires this month", func(c *CardDetails) {
			now := time.Now()
			c.ExpiryMonth = int(now.Month())
			c.ExpiryYear = now.Year()
		}, true},
		{"cvv too long", func(c *CardDetails) { c.CVV = "12345" }, false},
		{"cvv letters", func(c *CardDetails) { c.CVV = "12a" }, false},
		{"missing name", func(c *CardDetails) { c.CardholderName = "  " }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validTestCard()
			tc.mutate(card)

			err := ValidateCard(card)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCard)
			}
		})
	}
}
