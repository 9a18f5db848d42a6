package handler

import (
	"net/http"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/response"
	"masters-marketplace/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// RegisterPersonal handles the first registration step
// @Summary Register an account
// @Description Create an account from personal data and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPersonalRequest true "Register Personal Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /register/personal/ [post]
func (h *AuthHandler) RegisterPersonal(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPersonalRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	result, err := h.authUsecase.RegisterPersonal(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPhoneAlreadyExists:
			response.Conflict(w, "Phone number already exists")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", result)
}

// RegisterProfession handles the second registration step
// @Summary Set profession and locations
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RegisterProfessionRequest true "Register Profession Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /register/profession/ [post]
func (h *AuthHandler) RegisterProfession(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterProfessionRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	account, err := h.authUsecase.RegisterProfession(r.Context(), &req)
	if err != nil {
		h.writeRegistrationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Profession saved successfully", account)
}

// RegisterAdditional handles the last registration step
// @Summary Set education, languages and links
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RegisterAdditionalRequest true "Register Additional Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /register/additional/ [post]
func (h *AuthHandler) RegisterAdditional(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAdditionalRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	account, err := h.authUsecase.RegisterAdditional(r.Context(), &req)
	if err != nil {
		h.writeRegistrationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Registration completed successfully", account)
}

func (h *AuthHandler) writeRegistrationError(w http.ResponseWriter, err error) {
	if writeFieldError(w, err) {
		return
	}

	switch err {
	case usecase.ErrNotMaster:
		response.Forbidden(w, "Only masters can complete a profile")
	case usecase.ErrRegistrationCompleted, usecase.ErrUserNotFound:
		response.NotFound(w, "No pending registration found")
	default:
		response.InternalServerError(w, "Failed to save registration")
	}
}

// Login handles user login
// @Summary Login user
// @Description Login with phone number and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /login/ [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	result, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidCredentials:
			response.Unauthorized(w, "Invalid phone number or password")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", result)
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout and revoke tokens
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /logout/ [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Refresh token in the body is optional
	var req dto.LogoutRequest
	if r.ContentLength > 0 {
		if !decodeRequest(w, r, h.validator, &req) {
			return
		}
	}

	if err := h.authUsecase.Logout(r.Context(), req.RefreshToken); err != nil {
		switch err {
		case usecase.ErrInvalidToken:
			response.Unauthorized(w, "Invalid token")
		default:
			response.InternalServerError(w, "Failed to logout")
		}
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /token/refresh/ [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidToken, usecase.ErrTokenRevoked:
			response.Unauthorized(w, "Invalid or expired refresh token")
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser returns the authenticated account
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /me/ [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.authUsecase.GetCurrentUser(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", account)
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.RequestPasswordReset(r.Context(), &req); err != nil {
		if writeFieldError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to send verification code")
		return
	}

	response.Success(w, http.StatusOK, "Verification code sent", nil)
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ConfirmPasswordReset(r.Context(), &req); err != nil {
		if writeFieldError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to reset password")
		return
	}

	response.Success(w, http.StatusOK, "Password has been reset", nil)
}
