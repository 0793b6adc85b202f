package models

import "gorm.io/datatypes"

type SubscriptionPlan struct {
	BaseModel
	Name        string         `gorm:"not null;uniqueIndex" json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Currency    string         `gorm:"type:varchar(8);default:'KES'" json:"currency"`
	Interval    PlanInterval   `gorm:"type:varchar(20);not null;default:'monthly'" json:"interval"`
	Features    datatypes.JSON `gorm:"type:jsonb" json:"features"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
}
