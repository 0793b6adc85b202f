package dto

type CreateRobotRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required"`
	Category    string   `json:"category"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Features    []string `json:"features"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	DownloadURL string   `json:"download_url" validate:"omitempty,url"`
}

type UpdateRobotRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Features    []string `json:"features,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	DownloadURL *string  `json:"download_url,omitempty" validate:"omitempty,url"`
}
