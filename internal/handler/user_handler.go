package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mfbrokers/internal/errors"
	"mfbrokers/internal/model"
	"mfbrokers/internal/service"
)

// UserHandler handles account lifecycle endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// SignupRequest represents a signup request.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// VerifyOTPRequest represents an OTP verification request.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the user shape returned by lifecycle endpoints.
type UserSummary struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// SignupResponse represents a successful signup.
type SignupResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// AuthResponse represents a response carrying an access token.
type AuthResponse struct {
	Message     string      `json:"message"`
	User        UserSummary `json:"user"`
	AccessToken string      `json:"access_token"`
}

func toUserSummary(user *model.User) UserSummary {
	return UserSummary{ID: user.ID, Email: user.Email}
}

// Signup godoc
// @Summary Register a new user and send an OTP email
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(validationMessage(err))
	}

	user, err := h.users.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created successfully. Please check your email for OTP.",
		User:    toUserSummary(user),
	})
}

// VerifyOTP godoc
// @Summary Verify the OTP sent at signup and issue an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verification data"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/verify-otp [post]
func (h *UserHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(validationMessage(err))
	}

	user, token, err := h.users.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message:     "Email verified successfully",
		User:        toUserSummary(user),
		AccessToken: token,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(validationMessage(err))
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message:     "Login successful",
		User:        toUserSummary(user),
		AccessToken: token,
	})
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
