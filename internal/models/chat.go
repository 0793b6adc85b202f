package models

import "time"

// Conversation is a support thread between a user and the platform team.
type Conversation struct {
	BaseModel
	UserID        string     `gorm:"type:uuid;not null;index" json:"user_id"`
	AdminID       *string    `gorm:"type:uuid" json:"admin_id,omitempty"`
	Subject       string     `json:"subject"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

type Message struct {
	BaseModel
	ConversationID string     `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       string     `gorm:"type:uuid;not null" json:"sender_id"`
	Content        string     `gorm:"not null" json:"content"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}
