package handlers

// AppHandlers collects every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	RobotHandler        *RobotHandler
	RobotRequestHandler *RobotRequestHandler
	PaymentHandler      *PaymentHandler
	SubscriptionHandler *SubscriptionHandler
	NotificationHandler *NotificationHandler
	ChatHandler         *ChatHandler
}
