package dto

type CreatePlanRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Interval    string   `json:"interval" validate:"required,is-plan-interval"`
	Features    []string `json:"features"`
}

type UpdatePlanRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Interval    *string  `json:"interval,omitempty" validate:"omitempty,is-plan-interval"`
	Features    []string `json:"features,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type SubscribeRequest struct {
	PlanID        string `json:"plan_id" validate:"required,uuid4"`
	PaymentMethod string `json:"payment_method" validate:"required,is-payment-method"`
	PhoneNumber   string `json:"phone_number" validate:"omitempty,kenyan_phone"`
}

type SubscriptionStatusResponse struct {
	PlanID    string `json:"plan_id"`
	HasActive bool   `json:"has_active"`
}
