package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"mfbrokers/internal/errors"
	"mfbrokers/internal/repository"
)

// ContextUserKey is where the authenticated user record is stashed on the
// request context.
const ContextUserKey = "current_user"

// JWTMiddleware extracts and verifies the bearer token. Any failure,
// including an absent token, maps to the same generic 401.
func JWTMiddleware(tokens *TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return tokens.Validate(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized("Invalid authentication credentials")
		},
	})
}

// RequireVerified reloads the user behind the token and rejects requests
// when the record is gone, the email no longer matches, or the account is
// unverified. The live re-check means de-verifying a user cuts access
// immediately even though issued tokens remain valid for their TTL.
func RequireVerified(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*Claims)
			if !ok {
				return unauthorized("Invalid authentication credentials")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil || user == nil || user.Email != claims.Subject {
				return unauthorized("Invalid authentication credentials")
			}
			if !user.IsVerified {
				return unauthorized("Email not verified")
			}

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}
