package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mfbrokers/internal/auth"
	"mfbrokers/internal/errors"
	"mfbrokers/internal/model"
	"mfbrokers/internal/service"
)

// InvestmentHandler handles scheme browsing and holding endpoints.
type InvestmentHandler struct {
	investments service.InvestmentService
}

// NewInvestmentHandler creates a new investment handler.
func NewInvestmentHandler(investments service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

// CreateInvestmentRequest represents a buy request.
type CreateInvestmentRequest struct {
	SchemeCode int `json:"scheme_code" validate:"required,gt=0"`
	Units      int `json:"units" validate:"required,gt=0"`
}

// ListSchemes godoc
// @Summary List open-ended schemes of a fund family
// @Tags mutual-funds
// @Produce json
// @Security BearerAuth
// @Param fund_family query string true "Fund family name"
// @Success 200 {array} mfapi.Scheme
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /mutual-funds [get]
func (h *InvestmentHandler) ListSchemes(c echo.Context) error {
	family := c.QueryParam("fund_family")
	if family == "" {
		return badRequest("fund_family is required")
	}

	schemes, err := h.investments.SchemesByFamily(c.Request().Context(), family)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, schemes)
}

// ListInvestments godoc
// @Summary List the user's holdings with profit/loss
// @Tags mutual-funds
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Portfolio
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /mutual-funds/investments [get]
func (h *InvestmentHandler) ListInvestments(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	portfolio, err := h.investments.List(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, portfolio)
}

// CreateInvestment godoc
// @Summary Buy units of a mutual fund scheme
// @Tags mutual-funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvestmentRequest true "Buy data"
// @Success 201 {object} model.Investment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /mutual-funds/investments [post]
func (h *InvestmentHandler) CreateInvestment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(validationMessage(err))
	}

	investment, err := h.investments.Create(c.Request().Context(), user.ID, req.SchemeCode, req.Units)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, investment)
}

func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(auth.ContextUserKey).(*model.User)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "Invalid authentication credentials",
		})
	}
	return user, nil
}
