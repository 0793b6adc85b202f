package apperrors

import (
	"net/http"
)

// Factories and predefined variables for domain-level errors.

// ErrNotFound converts a repository "not found" error into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict is the generic 409 factory.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation builds a 400 for operations not allowed by business rules.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus builds a 400 for state-machine violations.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Payments & Transactions ---

var ErrTransactionNotFound = New(
	CodeNotFound,
	"payment",
	"Transaction not found",
	http.StatusNotFound,
)

// ErrTransactionAccessDenied is returned when a user verifies someone
// else's transaction.
var ErrTransactionAccessDenied = New(
	CodeForbidden,
	"payment",
	"Access to transaction denied",
	http.StatusForbidden,
)

var ErrPaymentGatewayError = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusServiceUnavailable,
)

var ErrInvalidCardDetails = New(
	CodeValidationFailed,
	"payment",
	"Invalid card details",
	http.StatusBadRequest,
)

var ErrInvalidPhoneNumber = New(
	CodeValidationFailed,
	"payment",
	"Invalid phone number",
	http.StatusBadRequest,
)

// --- Subscriptions ---

var ErrSubscriptionNotFound = New(
	CodeNotFound,
	"subscription",
	"Subscription not found",
	http.StatusNotFound,
)

var ErrSubscriptionNotActive = New(
	CodeInvalidStatus,
	"subscription",
	"Subscription is not active",
	http.StatusBadRequest,
)

var ErrSubscriptionCancelled = New(
	CodeInvalidOperation,
	"subscription",
	"Subscription is already cancelled",
	http.StatusBadRequest,
)

var ErrPlanNotFound = New(
	CodeNotFound,
	"subscription",
	"Subscription plan not found",
	http.StatusNotFound,
)

// --- Catalog ---

var ErrRobotNotFound = New(
	CodeNotFound,
	"robot",
	"Robot not found",
	http.StatusNotFound,
)

var ErrRobotRequestNotFound = New(
	CodeNotFound,
	"robot_request",
	"Robot request not found",
	http.StatusNotFound,
)

// --- Chat ---

var ErrConversationNotFound = New(
	CodeNotFound,
	"chat",
	"Conversation not found",
	http.StatusNotFound,
)

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"chat",
	"Access to conversation denied",
	http.StatusForbidden,
)

var ErrMessageNotFound = New(
	CodeNotFound,
	"chat",
	"Message not found",
	http.StatusNotFound,
)
