package handler

import (
	"net/http"

	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/pagination"
	"masters-marketplace/pkg/response"
)

type SearchHandler struct {
	searchUsecase usecase.SearchUsecase
}

func NewSearchHandler(searchUsecase usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{searchUsecase: searchUsecase}
}

// SearchMasters runs a full-text search over the master index
// @Summary Search masters
// @Tags Masters
// @Produce json
// @Param search query string false "Free text"
// @Param profession_category_id query int false "Category ID"
// @Param profession_service_id query int false "Service ID"
// @Param city_id query int false "City ID"
// @Param district_id query int false "District ID"
// @Param experience query int false "Years of experience (exact)"
// @Param ordering query string false "One sortable field, prefix with - for descending"
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /masters/search/ [get]
func (h *SearchHandler) SearchMasters(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ParseSearchFilter(r.URL.Query())

	result, err := h.searchUsecase.SearchMasters(r.Context(), filter)
	if err != nil {
		switch err {
		case usecase.ErrSearchUnavailable:
			response.ServiceUnavailable(w, "Search is temporarily unavailable")
		default:
			response.InternalServerError(w, "Failed to search masters")
		}
		return
	}

	page := pagination.Params{Page: filter.Page, PageSize: filter.PageSize}
	response.SuccessWithMeta(w, http.StatusOK, "Masters retrieved successfully", result.Documents, pagination.Meta(page, result.Total))
}
