package models

import "gorm.io/datatypes"

// Robot is a catalog item: a packaged trading robot available for purchase.
type Robot struct {
	BaseModel
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Type        string         `gorm:"not null" json:"type"` // "scalper", "trend", "grid"
	Category    string         `json:"category"`
	Price       float64        `gorm:"not null" json:"price"`
	Currency    string         `gorm:"type:varchar(8);default:'KES'" json:"currency"`
	Features    datatypes.JSON `gorm:"type:jsonb" json:"features"` // ["MT5", "backtested", ...]
	ImageURL    string         `json:"image_url"`
	DownloadURL string         `json:"-"` // exposed only after purchase
}
