package validator

import (
	"log"
	"strings"
	"unicode"

	"tradewizard_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules installs the custom validation functions.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Startup-time error: refuse to run with a broken rule set.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-transaction-status", validateTransactionStatus)
	mustRegister("is-plan-interval", validatePlanInterval)
	mustRegister("is-payment-method", validatePaymentMethod)
	mustRegister("kenyan_phone", validateKenyanPhone)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empty values
	}

	switch models.UserRole(value) {
	case models.UserRoleUser, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.TransactionStatus(value) {
	case models.TransactionStatusPending, models.TransactionStatusCompleted,
		models.TransactionStatusActive, models.TransactionStatusFailed,
		models.TransactionStatusCancelled:
		return true
	default:
		return false
	}
}

func validatePlanInterval(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PlanInterval(value) {
	case models.PlanIntervalMonthly, models.PlanIntervalYearly:
		return true
	default:
		return false
	}
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PaymentMethod(value) {
	case models.PaymentMethodMpesa, models.PaymentMethodCard:
		return true
	default:
		return false
	}
}

// validateKenyanPhone accepts the forms the gateway can normalize:
// 07XXXXXXXX, 7XXXXXXXX, 2547XXXXXXXX and the +254 variant.
func validateKenyanPhone(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}

	value = strings.TrimPrefix(value, "+")
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	switch {
	case strings.HasPrefix(value, "254"):
		return len(value) == 12
	case strings.HasPrefix(value, "0"):
		return len(value) == 10
	case strings.HasPrefix(value, "7") || strings.HasPrefix(value, "1"):
		return len(value) == 9
	default:
		return false
	}
}
