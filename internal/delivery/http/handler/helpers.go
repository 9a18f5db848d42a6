package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/response"
	"masters-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

// decodeRequest reads a JSON body into req and validates it. On failure the
// response is already written.
func decodeRequest(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

// pathID parses a numeric path variable.
func pathID(w http.ResponseWriter, r *http.Request, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, message, nil)
		return 0, false
	}
	return uint(id), true
}

// writeFieldError renders business rule violations like validation errors.
func writeFieldError(w http.ResponseWriter, err error) bool {
	fieldErr, ok := usecase.AsFieldError(err)
	if !ok {
		return false
	}
	response.ValidationError(w, map[string]string{fieldErr.Field: fieldErr.Message})
	return true
}
