package router

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"mfbrokers/internal/auth"
	"mfbrokers/internal/errors"
	"mfbrokers/internal/handler"
	"mfbrokers/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	tokens *auth.TokenService,
	userRepo repository.UserRepository,
	userHandler *handler.UserHandler,
	investmentHandler *handler.InvestmentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = httpErrorHandler

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Welcome to Mutual Fund Broker Application!",
			"status":  "running",
		})
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	users := e.Group("/users")
	users.POST("/signup", userHandler.Signup)
	users.POST("/verify-otp", userHandler.VerifyOTP)
	users.POST("/login", userHandler.Login)

	// Secured routes (require a bearer token for a verified account)
	secured := e.Group("/mutual-funds", auth.JWTMiddleware(tokens), auth.RequireVerified(userRepo))
	secured.GET("", investmentHandler.ListSchemes)
	secured.GET("/investments", investmentHandler.ListInvestments)
	secured.POST("/investments", investmentHandler.CreateInvestment)
}

// httpErrorHandler normalizes every error crossing the HTTP boundary to the
// {code, message} body, including framework-generated 404/405s.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case errors.ErrorResponse:
			_ = c.JSON(code, m)
			return
		case string:
			message = m
		default:
			message = http.StatusText(code)
		}
	}

	_ = c.JSON(code, errors.ErrorResponse{Code: code, Message: message})
}
