package services

import (
	"tradewizard_backend/internal/email"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	RobotService        RobotService
	RobotRequestService RobotRequestService
	PaymentService      PaymentService
	SubscriptionService SubscriptionService
	NotificationService NotificationService
	ChatService         ChatService
	EmailProvider       email.Provider
}
