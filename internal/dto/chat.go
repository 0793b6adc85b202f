package dto

type CreateConversationRequest struct {
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=1"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"required,uuid4"`
	Content        string `json:"content" validate:"required,min=1"`
}
