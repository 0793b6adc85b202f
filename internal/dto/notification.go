package dto

type CreateNotificationRequest struct {
	Type    string                 `json:"type" validate:"required"`
	Title   string                 `json:"title" validate:"required"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type NotificationCriteria struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}
