package dto

import "time"

// SubScores are the optional per-quality ratings of a review.
type SubScores struct {
	Responsible    *int `json:"responsible" validate:"omitempty,gte=1,lte=5"`
	Neat           *int `json:"neat" validate:"omitempty,gte=1,lte=5"`
	TimeManagement *int `json:"time_management" validate:"omitempty,gte=1,lte=5"`
	Communicative  *int `json:"communicative" validate:"omitempty,gte=1,lte=5"`
	Punctual       *int `json:"punctual" validate:"omitempty,gte=1,lte=5"`
	Professional   *int `json:"professional" validate:"omitempty,gte=1,lte=5"`
	Experienced    *int `json:"experienced" validate:"omitempty,gte=1,lte=5"`
	Efficient      *int `json:"efficient" validate:"omitempty,gte=1,lte=5"`
	Agile          *int `json:"agile" validate:"omitempty,gte=1,lte=5"`
	Patient        *int `json:"patient" validate:"omitempty,gte=1,lte=5"`
}

// Request DTOs

type CreateReviewRequest struct {
	Username string `json:"username" validate:"omitempty,max=20,az_letters"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment" validate:"required,max=1000,not_blank,az_text"`
	SubScores
}

type UpdateReviewRequest struct {
	Username *string `json:"username" validate:"omitempty,max=20,az_letters"`
	Rating   *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment  *string `json:"comment" validate:"omitempty,max=1000,not_blank,az_text"`
	SubScores
}

// Response DTOs

type ReviewResponse struct {
	ID       uint   `json:"id"`
	MasterID uint   `json:"master"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	SubScores
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
