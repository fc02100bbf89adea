package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edusoma/academia/core/user"
)

// roleMiddleware gates a surface to one role. A mismatch never surfaces data:
// the request is bounced to the login page with an access-denied message.
func roleMiddleware(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return redirectLogin(ctx)
			}
			if claims.UserRole() != role {
				return redirectWith(ctx, "/login", "error", accessDeniedMessage(role))
			}
			return next(ctx)
		}
	}
}

func accessDeniedMessage(role user.Role) string {
	return "Access denied. " + titleCase(role.String()) + " privileges required."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
