package converter

import (
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
)

// ReferenceToResponse converts a flattened lookup row; ParentID is exposed under the kind's parent field.
func ReferenceToResponse(kind entity.EntityKind, ref entity.Reference) dto.ReferenceResponse {
	resp := dto.ReferenceResponse{
		ID:          ref.ID,
		Name:        ref.Name,
		DisplayName: ref.DisplayName,
	}

	switch kind {
	case entity.KindDistrict:
		resp.CityID = ref.ParentID
	case entity.KindService:
		resp.CategoryID = ref.ParentID
	}
	return resp
}

func ReferencesToResponses(kind entity.EntityKind, refs []entity.Reference) []dto.ReferenceResponse {
	responses := make([]dto.ReferenceResponse, len(refs))
	for i, ref := range refs {
		responses[i] = ReferenceToResponse(kind, ref)
	}
	return responses
}

func referencePtr(kind entity.EntityKind, ref entity.Reference) *dto.ReferenceResponse {
	resp := ReferenceToResponse(kind, ref)
	return &resp
}
