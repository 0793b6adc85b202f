package models

import "time"

// Transaction is the single payment ledger record for both robot purchases
// and plan subscriptions. Kind selects which extension fields apply.
// Rows are never deleted; failed and cancelled attempts stay for audit.
type Transaction struct {
	BaseModel
	UserID        string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind          TransactionKind   `gorm:"type:varchar(20);not null" json:"kind"`
	ItemID        string            `gorm:"type:uuid;not null;index" json:"item_id"` // robot or plan id
	Amount        float64           `gorm:"not null" json:"amount"`
	Currency      string            `gorm:"type:varchar(8);default:'KES'" json:"currency"`
	PaymentMethod PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Provider correlation id. For M-Pesa this is the CheckoutRequestID;
	// for card payments the provider payment id; when the gateway call
	// fails at initiation a synthetic LOCAL-prefixed id is stored so the
	// record still has a unique handle.
	CheckoutRequestID *string `gorm:"uniqueIndex" json:"checkout_request_id,omitempty"`

	PhoneNumber string     `json:"phone_number,omitempty"`
	ResultDesc  string     `json:"result_desc,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`

	// Subscription extension fields, nil for purchases.
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// IsSubscription reports whether the subscription extension fields apply.
func (t *Transaction) IsSubscription() bool {
	return t.Kind == TransactionKindSubscription
}
