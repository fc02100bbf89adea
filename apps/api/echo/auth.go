package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/user"
)

const (
	sessionCookieName = "academia_session"
	tokenContextKey   = "userToken"
)

// Claims is the authorization context carried in the session cookie. It is
// populated once at login and verified on every request; handlers never
// consult mutable server-side session state.
type Claims struct {
	jwt.StandardClaims
	UserID      int    `json:"uid"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

func (c Claims) UserRole() user.Role { return user.Role(c.Role) }

type authHelper struct {
	conf   *core.Config
	secret []byte
}

func newAuthHelper(conf *core.Config) *authHelper {
	return &authHelper{
		conf:   conf,
		secret: []byte(conf.SecretKey),
	}
}

// middleware returns the JWT auth middleware; the token is read from the
// session cookie and a missing or invalid one redirects to the login page.
func (a *authHelper) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    a.secret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		TokenLookup:   "cookie:" + sessionCookieName,
		Claims:        new(Claims),
		ErrorHandlerWithContext: func(err error, ctx echo.Context) error {
			return redirectLogin(ctx)
		},
	})
}

func (a *authHelper) newClaims(usr user.User, displayName string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    a.conf.AppName,
			Subject:   usr.Username,
			ExpiresAt: now.Add(a.conf.Server.SessionExpiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:      usr.ID,
		Username:    usr.Username,
		Role:        usr.Role.String(),
		DisplayName: displayName,
	}
}

// generateToken signs the claims into a compact JWT string.
func (a *authHelper) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString(a.secret)
	return ss, errors.Wrap(err, "signing token")
}

func (a *authHelper) setSessionCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.conf.Server.SessionExpiration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authHelper) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errors.New("claims not found in context")
}
