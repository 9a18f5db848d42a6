package handler

import (
	"net/http"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/pagination"
	"masters-marketplace/pkg/response"
	"masters-marketplace/pkg/validator"
)

const reviewOrderParam = "order"

type ReviewHandler struct {
	reviewUsecase usecase.ReviewUsecase
	validator     *validator.CustomValidator
}

func NewReviewHandler(reviewUsecase usecase.ReviewUsecase, validator *validator.CustomValidator) *ReviewHandler {
	return &ReviewHandler{
		reviewUsecase: reviewUsecase,
		validator:     validator,
	}
}

// GetReviews lists the reviews of a master
// @Summary List reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Master ID"
// @Param order query string false "newest or oldest"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /masters/{id}/reviews/ [get]
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}

	q := r.URL.Query()
	page := pagination.FromQuery(q, pagination.ReviewPageSize)
	order := entity.ParseReviewOrder(q.Get(reviewOrderParam))

	reviews, total, err := h.reviewUsecase.ListReviews(r.Context(), masterID, order, page)
	if err != nil {
		switch err {
		case usecase.ErrMasterNotFound:
			response.NotFound(w, "Master not found")
		default:
			response.InternalServerError(w, "Failed to get reviews")
		}
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Reviews retrieved successfully", reviews, pagination.Meta(page, total))
}

// CreateReview adds the caller's review of a master
// @Summary Create review
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Master ID"
// @Param request body dto.CreateReviewRequest true "Create Review Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /masters/{id}/reviews/ [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	review, err := h.reviewUsecase.CreateReview(r.Context(), masterID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create review")
		return
	}

	response.Success(w, http.StatusCreated, "Review created successfully", review)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewId", "Invalid review ID")
	if !ok {
		return
	}

	var req dto.UpdateReviewRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	review, err := h.reviewUsecase.UpdateReview(r.Context(), masterID, reviewID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update review")
		return
	}

	response.Success(w, http.StatusOK, "Review updated successfully", review)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathID(w, r, "id", "Invalid master ID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewId", "Invalid review ID")
	if !ok {
		return
	}

	if err := h.reviewUsecase.DeleteReview(r.Context(), masterID, reviewID); err != nil {
		h.writeError(w, err, "Failed to delete review")
		return
	}

	response.Success(w, http.StatusOK, "Review deleted successfully", nil)
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeFieldError(w, err) {
		return
	}

	switch err {
	case usecase.ErrMasterNotFound:
		response.NotFound(w, "Master not found")
	case usecase.ErrReviewNotFound:
		response.NotFound(w, "Review not found")
	case usecase.ErrSelfReview:
		response.Forbidden(w, "You cannot review yourself")
	case usecase.ErrForbidden:
		response.Forbidden(w, "You can only change your own reviews")
	default:
		response.InternalServerError(w, fallback)
	}
}
