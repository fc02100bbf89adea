package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
	"github.com/edusoma/academia/core/user"
)

type handlers struct {
	auth       *authHelper
	usrSvc     user.Service
	acadSvc    academic.Service
	gradeSvc   grade.Service
	validate   *validator.Validate
	translator ut.Translator
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *handlers) home(ctx echo.Context) error {
	return redirectLogin(ctx)
}

// loginPage echoes the transient flags back so the client can render them.
func (h *handlers) loginPage(ctx echo.Context) error {
	resp := echo.Map{}
	if msg := ctx.QueryParam("error"); msg != "" {
		resp["error"] = msg
	} else if _, ok := ctx.QueryParams()["error"]; ok {
		resp["error"] = "Invalid username or password."
	}
	if _, ok := ctx.QueryParams()["logout"]; ok {
		resp["logout"] = "You have been logged out."
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (h *handlers) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return redirectWith(ctx, "/login", "error", "Invalid username or password.")
	}

	usr, err := h.usrSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return redirectWith(ctx, "/login", "error", "Invalid username or password.")
		}
		return errors.Wrap(err, "authenticating")
	}

	displayName := h.usrSvc.DisplayName(ctx.Request().Context(), usr)
	token, err := h.auth.generateToken(h.auth.newClaims(usr, displayName))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	h.auth.setSessionCookie(ctx, token)

	return ctx.Redirect(http.StatusSeeOther, user.DashboardPath(usr))
}

func (h *handlers) logout(ctx echo.Context) error {
	h.auth.clearSessionCookie(ctx)
	return redirectWith(ctx, "/login", "logout", "")
}

func (h *handlers) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}
	return ctx.Redirect(http.StatusSeeOther, user.DashboardPath(user.User{Role: claims.UserRole()}))
}
