package dto

import "time"

// Request DTOs

// UpdateMasterRequest is a partial profile update; nil fields are left unchanged.
type UpdateMasterRequest struct {
	FullName           *string `json:"full_name" validate:"omitempty,max=50,az_letters"`
	Birthday           *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Gender             *string `json:"gender" validate:"omitempty,oneof=male female"`
	ProfessionCategory *uint   `json:"profession_category" validate:"omitempty"`
	ProfessionService  *uint   `json:"profession_service" validate:"omitempty"`
	CustomProfession   *string `json:"custom_profession" validate:"omitempty,max=100"`
	Experience         *int    `json:"experience" validate:"omitempty,gte=0,lte=80"`
	Cities             *[]uint `json:"cities" validate:"omitempty,min=1"`
	Districts          *[]uint `json:"districts" validate:"omitempty"`
	Education          *uint   `json:"education" validate:"omitempty"`
	EducationDetail    *string `json:"education_detail" validate:"omitempty,max=50"`
	Languages          *[]uint `json:"languages" validate:"omitempty,min=1"`
	FacebookURL        *string `json:"facebook_url" validate:"omitempty,max=255,social=facebook"`
	InstagramURL       *string `json:"instagram_url" validate:"omitempty,max=255,social=instagram"`
	TiktokURL          *string `json:"tiktok_url" validate:"omitempty,max=255,social=tiktok"`
	LinkedinURL        *string `json:"linkedin_url" validate:"omitempty,max=255,social=linkedin"`
	YoutubeURL         *string `json:"youtube_url" validate:"omitempty,max=255,social=youtube"`
	Note               *string `json:"note" validate:"omitempty,max=1500"`
}

// Response DTOs

type MasterResponse struct {
	ID                 uint                `json:"id"`
	FullName           string              `json:"full_name"`
	Birthday           *string             `json:"birthday"`
	PhoneNumber        string              `json:"phone_number"`
	Gender             string              `json:"gender"`
	ProfessionCategory *ReferenceResponse  `json:"profession_category"`
	ProfessionService  *ReferenceResponse  `json:"profession_service"`
	CustomProfession   string              `json:"custom_profession,omitempty"`
	Experience         *int                `json:"experience"`
	Cities             []ReferenceResponse `json:"cities"`
	Districts          []ReferenceResponse `json:"districts"`
	Education          *ReferenceResponse  `json:"education"`
	EducationDetail    string              `json:"education_detail,omitempty"`
	Languages          []ReferenceResponse `json:"languages"`
	FacebookURL        string              `json:"facebook_url,omitempty"`
	InstagramURL       string              `json:"instagram_url,omitempty"`
	TiktokURL          string              `json:"tiktok_url,omitempty"`
	LinkedinURL        string              `json:"linkedin_url,omitempty"`
	YoutubeURL         string              `json:"youtube_url,omitempty"`
	Note               string              `json:"note,omitempty"`
	IsActiveOnMainPage bool                `json:"is_active_on_main_page"`
	Slug               string              `json:"slug"`
	AverageRating      *float64            `json:"average_rating"`
	ReviewCount        int64               `json:"review_count"`
	CreatedAt          time.Time           `json:"created_at"`
}
