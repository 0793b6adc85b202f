package dto

type CreateRobotRequestRequest struct {
	RobotType    string   `json:"robot_type" validate:"required"`
	TradingPairs []string `json:"trading_pairs" validate:"required,min=1"`
	Timeframe    string   `json:"timeframe" validate:"required"`
	RiskLevel    string   `json:"risk_level" validate:"required,oneof=low medium high"`
	Notes        string   `json:"notes"`
}

type UpdateRobotRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}
