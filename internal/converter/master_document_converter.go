package converter

import (
	"sort"

	"masters-marketplace/internal/domain/entity"
)

// MasterToDocument builds the search document for a master. It depends only on
// its arguments: collections are sorted by id and never nil, timestamps are UTC.
func MasterToDocument(master *entity.Master, rating entity.Rating) *entity.MasterDocument {
	doc := &entity.MasterDocument{
		ID:                 master.ID,
		FullName:           master.FullName,
		CustomProfession:   optional(master.CustomProfession),
		EducationDetail:    optional(master.EducationDetail),
		PhoneNumber:        master.PhoneNumber,
		Gender:             master.Gender,
		IsActiveOnMainPage: master.IsActiveOnMainPage,
		Note:               optional(master.Note),
		Experience:         master.Experience,
		FacebookURL:        optional(master.FacebookURL),
		InstagramURL:       optional(master.InstagramURL),
		TiktokURL:          optional(master.TiktokURL),
		LinkedinURL:        optional(master.LinkedinURL),
		YoutubeURL:         optional(master.YoutubeURL),
		CreatedAt:          master.CreatedAt.UTC(),
		Slug:               master.Slug,
		Cities:             make([]entity.DocumentRef, 0, len(master.Cities)),
		Districts:          make([]entity.DocumentRef, 0, len(master.Districts)),
		AverageRating:      rating.Average,
		ReviewCount:        rating.Count,
	}

	if master.Birthday != nil {
		birthday := master.Birthday.Format(dateLayout)
		doc.Birthday = &birthday
	}
	if master.ProfessionCategory != nil {
		doc.ProfessionCategory = documentRef(master.ProfessionCategory.Reference())
	}
	if master.ProfessionService != nil {
		doc.ProfessionService = documentRef(master.ProfessionService.Reference())
	}
	for _, c := range master.Cities {
		doc.Cities = append(doc.Cities, *documentRef(c.Reference()))
	}
	for _, d := range master.Districts {
		doc.Districts = append(doc.Districts, *documentRef(d.Reference()))
	}
	sortRefs(doc.Cities)
	sortRefs(doc.Districts)

	return doc
}

func documentRef(ref entity.Reference) *entity.DocumentRef {
	return &entity.DocumentRef{ID: ref.ID, Name: ref.Name, DisplayName: ref.DisplayName}
}

func sortRefs(refs []entity.DocumentRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
