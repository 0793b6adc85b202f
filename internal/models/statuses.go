package models

type UserRole string
type TransactionStatus string
type TransactionKind string
type PaymentMethod string
type RobotRequestStatus string
type PlanInterval string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusActive    TransactionStatus = "active"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"

	TransactionKindPurchase     TransactionKind = "purchase"
	TransactionKindSubscription TransactionKind = "subscription"

	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCard  PaymentMethod = "card"

	RobotRequestStatusPending  RobotRequestStatus = "pending"
	RobotRequestStatusApproved RobotRequestStatus = "approved"
	RobotRequestStatusRejected RobotRequestStatus = "rejected"

	PlanIntervalMonthly PlanInterval = "monthly"
	PlanIntervalYearly  PlanInterval = "yearly"
)

// IsFinal reports whether a transaction may never leave this status again.
// "active" is the one exception: an active subscription can still be cancelled.
func (s TransactionStatus) IsFinal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	default:
		return false
	}
}
