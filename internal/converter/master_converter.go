package converter

import (
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// MasterToResponse converts a Master entity with its rating to MasterResponse DTO
func MasterToResponse(master *entity.Master, rating entity.Rating) *dto.MasterResponse {
	if master == nil {
		return nil
	}

	resp := &dto.MasterResponse{
		ID:                 master.ID,
		FullName:           master.FullName,
		PhoneNumber:        master.PhoneNumber,
		Gender:             master.Gender,
		CustomProfession:   master.CustomProfession,
		Experience:         master.Experience,
		Cities:             make([]dto.ReferenceResponse, len(master.Cities)),
		Districts:          make([]dto.ReferenceResponse, len(master.Districts)),
		EducationDetail:    master.EducationDetail,
		Languages:          make([]dto.ReferenceResponse, len(master.Languages)),
		FacebookURL:        master.FacebookURL,
		InstagramURL:       master.InstagramURL,
		TiktokURL:          master.TiktokURL,
		LinkedinURL:        master.LinkedinURL,
		YoutubeURL:         master.YoutubeURL,
		Note:               master.Note,
		IsActiveOnMainPage: master.IsActiveOnMainPage,
		Slug:               master.Slug,
		AverageRating:      rating.Average,
		ReviewCount:        rating.Count,
		CreatedAt:          master.CreatedAt,
	}

	if master.Birthday != nil {
		birthday := master.Birthday.Format(dateLayout)
		resp.Birthday = &birthday
	}
	if master.ProfessionCategory != nil {
		resp.ProfessionCategory = referencePtr(entity.KindCategory, master.ProfessionCategory.Reference())
	}
	if master.ProfessionService != nil {
		resp.ProfessionService = referencePtr(entity.KindService, master.ProfessionService.Reference())
	}
	if master.Education != nil {
		resp.Education = referencePtr(entity.KindEducation, master.Education.Reference())
	}
	for i, c := range master.Cities {
		resp.Cities[i] = ReferenceToResponse(entity.KindCity, c.Reference())
	}
	for i, d := range master.Districts {
		resp.Districts[i] = ReferenceToResponse(entity.KindDistrict, d.Reference())
	}
	for i, l := range master.Languages {
		resp.Languages[i] = ReferenceToResponse(entity.KindLanguage, l.Reference())
	}

	return resp
}

// MastersToResponses pairs each master with its stats; masters missing from stats are unrated.
func MastersToResponses(masters []entity.Master, stats map[uint]entity.RatingStats) []dto.MasterResponse {
	responses := make([]dto.MasterResponse, len(masters))
	for i := range masters {
		var rating entity.Rating
		if s, ok := stats[masters[i].ID]; ok {
			rating = entity.RatingFromStats(&s)
		}
		responses[i] = *MasterToResponse(&masters[i], rating)
	}
	return responses
}

// MasterToAccount converts a Master entity to the compact AccountResponse DTO
func MasterToAccount(master *entity.Master) dto.AccountResponse {
	return dto.AccountResponse{
		ID:                 master.ID,
		FullName:           master.FullName,
		PhoneNumber:        master.PhoneNumber,
		UserRole:           string(master.UserRole),
		IsStaff:            master.IsStaff,
		IsActiveOnMainPage: master.IsActiveOnMainPage,
		Slug:               master.Slug,
	}
}
