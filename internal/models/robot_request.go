package models

import "gorm.io/datatypes"

// RobotRequest is a user's request for a custom-built robot.
type RobotRequest struct {
	BaseModel
	UserID       string             `gorm:"type:uuid;not null;index" json:"user_id"`
	RobotType    string             `gorm:"not null" json:"robot_type"`
	TradingPairs datatypes.JSON     `gorm:"type:jsonb" json:"trading_pairs"` // ["EURUSD", "GBPJPY"]
	Timeframe    string             `json:"timeframe"`
	RiskLevel    string             `json:"risk_level"` // "low", "medium", "high"
	Notes        string             `json:"notes"`
	Status       RobotRequestStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
