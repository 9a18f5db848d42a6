package dto

// Request DTOs

// ReferenceRequest creates or replaces a lookup row. CityID applies to
// districts and CategoryID to services.
type ReferenceRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	CityID      *uint  `json:"city_id" validate:"omitempty"`
	CategoryID  *uint  `json:"category_id" validate:"omitempty"`
}

// Response DTOs

type ReferenceResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CityID      *uint  `json:"city_id,omitempty"`
	CategoryID  *uint  `json:"category_id,omitempty"`
}
