package handler

import (
	"net/http"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/response"
	"masters-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

// referencePaths maps the plural path segment of the admin routes to a kind.
var referencePaths = map[string]entity.EntityKind{
	"cities":     entity.KindCity,
	"districts":  entity.KindDistrict,
	"educations": entity.KindEducation,
	"languages":  entity.KindLanguage,
	"categories": entity.KindCategory,
	"services":   entity.KindService,
}

type ReferenceHandler struct {
	referenceUsecase usecase.ReferenceUsecase
	validator        *validator.CustomValidator
}

func NewReferenceHandler(referenceUsecase usecase.ReferenceUsecase, validator *validator.CustomValidator) *ReferenceHandler {
	return &ReferenceHandler{
		referenceUsecase: referenceUsecase,
		validator:        validator,
	}
}

// List returns a handler listing every row of one lookup table.
func (h *ReferenceHandler) List(kind entity.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refs, err := h.referenceUsecase.List(r.Context(), kind)
		if err != nil {
			response.InternalServerError(w, "Failed to get "+string(kind)+" list")
			return
		}

		response.Success(w, http.StatusOK, "Data retrieved successfully", refs)
	}
}

// GetServicesByCategory lists the services of one category
// @Summary List category services
// @Tags References
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id}/services/ [get]
func (h *ReferenceHandler) GetServicesByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid category ID")
	if !ok {
		return
	}

	services, err := h.referenceUsecase.ListServicesForCategory(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrCategoryNotFound:
			response.NotFound(w, "Category not found")
		default:
			response.InternalServerError(w, "Failed to get services")
		}
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

// Create adds a lookup row
// @Summary Create reference
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param kind path string true "cities, districts, educations, languages, categories or services"
// @Param request body dto.ReferenceRequest true "Reference Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/{kind}/ [post]
func (h *ReferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var req dto.ReferenceRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	ref, err := h.referenceUsecase.Create(r.Context(), kind, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create "+string(kind))
		return
	}

	response.Success(w, http.StatusCreated, "Created successfully", ref)
}

func (h *ReferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "Invalid ID")
	if !ok {
		return
	}

	var req dto.ReferenceRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	ref, err := h.referenceUsecase.Update(r.Context(), kind, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update "+string(kind))
		return
	}

	response.Success(w, http.StatusOK, "Updated successfully", ref)
}

func (h *ReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "Invalid ID")
	if !ok {
		return
	}

	if err := h.referenceUsecase.Delete(r.Context(), kind, id); err != nil {
		h.writeError(w, err, "Failed to delete "+string(kind))
		return
	}

	response.Success(w, http.StatusOK, "Deleted successfully", nil)
}

func (h *ReferenceHandler) kind(w http.ResponseWriter, r *http.Request) (entity.EntityKind, bool) {
	kind, ok := referencePaths[mux.Vars(r)["kind"]]
	if !ok {
		response.NotFound(w, "Unknown reference type")
		return "", false
	}
	return kind, true
}

func (h *ReferenceHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeFieldError(w, err) {
		return
	}

	switch err {
	case usecase.ErrReferenceNotFound:
		response.NotFound(w, "Not found")
	case usecase.ErrReferenceAlreadyExists:
		response.Conflict(w, "An entry with this name already exists")
	default:
		response.InternalServerError(w, fallback)
	}
}
