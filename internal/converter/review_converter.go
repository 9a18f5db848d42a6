package converter

import (
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
)

// ReviewToResponse converts a Review entity to ReviewResponse DTO
func ReviewToResponse(review *entity.Review) *dto.ReviewResponse {
	if review == nil {
		return nil
	}

	return &dto.ReviewResponse{
		ID:       review.ID,
		MasterID: review.MasterID,
		Username: review.Username,
		Rating:   review.Rating,
		Comment:  review.Comment,
		SubScores: dto.SubScores{
			Responsible:    review.Responsible,
			Neat:           review.Neat,
			TimeManagement: review.TimeManagement,
			Communicative:  review.Communicative,
			Punctual:       review.Punctual,
			Professional:   review.Professional,
			Experienced:    review.Experienced,
			Efficient:      review.Efficient,
			Agile:          review.Agile,
			Patient:        review.Patient,
		},
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

// ReviewsToResponses converts a slice of Review entities to slice of ReviewResponse DTOs
func ReviewsToResponses(reviews []entity.Review) []dto.ReviewResponse {
	responses := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		responses[i] = *ReviewToResponse(&reviews[i])
	}
	return responses
}

// ApplySubScores copies request sub-scores onto the review. Nil values clear nothing.
func ApplySubScores(review *entity.Review, s dto.SubScores) {
	set := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	set(&review.Responsible, s.Responsible)
	set(&review.Neat, s.Neat)
	set(&review.TimeManagement, s.TimeManagement)
	set(&review.Communicative, s.Communicative)
	set(&review.Punctual, s.Punctual)
	set(&review.Professional, s.Professional)
	set(&review.Experienced, s.Experienced)
	set(&review.Efficient, s.Efficient)
	set(&review.Agile, s.Agile)
	set(&review.Patient, s.Patient)
}
