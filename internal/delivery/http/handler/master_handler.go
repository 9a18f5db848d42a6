package handler

import (
	"context"
	"net/http"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/pagination"
	"masters-marketplace/pkg/response"
	"masters-marketplace/pkg/validator"
)

type MasterHandler struct {
	masterUsecase usecase.MasterUsecase
	validator     *validator.CustomValidator
}

func NewMasterHandler(masterUsecase usecase.MasterUsecase, validator *validator.CustomValidator) *MasterHandler {
	return &MasterHandler{
		masterUsecase: masterUsecase,
		validator:     validator,
	}
}

type masterLister func(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error)

func (h *MasterHandler) writeList(w http.ResponseWriter, r *http.Request, pageSize int, list masterLister) {
	page := pagination.FromQuery(r.URL.Query(), pageSize)

	masters, total, err := list(r.Context(), page)
	if err != nil {
		switch err {
		case usecase.ErrCategoryNotFound:
			response.NotFound(w, "Category not found")
		case usecase.ErrServiceNotFound:
			response.NotFound(w, "Service not found")
		default:
			response.InternalServerError(w, "Failed to get masters")
		}
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Masters retrieved successfully", masters, pagination.Meta(page, total))
}

// GetAllMasters lists active masters
// @Summary List masters
// @Tags Masters
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Response
// @Router /masters/ [get]
func (h *MasterHandler) GetAllMasters(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, pagination.DefaultPageSize, h.masterUsecase.ListMasters)
}

// GetTopRatedMasters lists main page masters ordered by rating
// @Summary List top rated masters
// @Tags Masters
// @Produce json
// @Success 200 {object} response.Response
// @Router /masters/top/ [get]
func (h *MasterHandler) GetTopRatedMasters(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, pagination.MainPageSize, h.masterUsecase.ListTopRated)
}

func (h *MasterHandler) GetMastersByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid category ID")
	if !ok {
		return
	}

	h.writeList(w, r, pagination.DefaultPageSize, func(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error) {
		return h.masterUsecase.ListByCategory(ctx, id, page)
	})
}

func (h *MasterHandler) GetMastersByService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid service ID")
	if !ok {
		return
	}

	h.writeList(w, r, pagination.DefaultPageSize, func(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error) {
		return h.masterUsecase.ListByService(ctx, id, page)
	})
}

// GetMaster returns one master profile
// @Summary Get master
// @Tags Masters
// @Produce json
// @Param id path int true "Master ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /masters/{id}/ [get]
func (h *MasterHandler) GetMaster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}

	master, err := h.masterUsecase.GetMaster(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrMasterNotFound:
			response.NotFound(w, "Master not found")
		default:
			response.InternalServerError(w, "Failed to get master")
		}
		return
	}

	response.Success(w, http.StatusOK, "Master retrieved successfully", master)
}

// UpdateMaster applies a partial profile update
// @Summary Update master
// @Tags Masters
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Master ID"
// @Param request body dto.UpdateMasterRequest true "Update Master Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /masters/{id}/ [patch]
func (h *MasterHandler) UpdateMaster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}

	var req dto.UpdateMasterRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	master, err := h.masterUsecase.UpdateMaster(r.Context(), id, &req)
	if err != nil {
		if writeFieldError(w, err) {
			return
		}
		switch err {
		case usecase.ErrMasterNotFound:
			response.NotFound(w, "Master not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "You can only edit your own profile")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to update master")
		}
		return
	}

	response.Success(w, http.StatusOK, "Master updated successfully", master)
}

// DeleteMaster removes a master account
// @Summary Delete master
// @Tags Masters
// @Security BearerAuth
// @Param id path int true "Master ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /masters/{id}/ [delete]
func (h *MasterHandler) DeleteMaster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}

	if err := h.masterUsecase.DeleteMaster(r.Context(), id); err != nil {
		switch err {
		case usecase.ErrMasterNotFound:
			response.NotFound(w, "Master not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "You can only delete your own profile")
		default:
			response.InternalServerError(w, "Failed to delete master")
		}
		return
	}

	response.Success(w, http.StatusOK, "Master deleted successfully", nil)
}
