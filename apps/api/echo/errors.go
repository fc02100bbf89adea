package echoapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
)

// flashRedirectError carries a failed mutation back to its originating
// listing page; the message travels as a transient query parameter and is
// displayed once on the next page load.
type flashRedirectError struct {
	target string
	err    error
}

func (e *flashRedirectError) Error() string { return e.err.Error() }
func (e *flashRedirectError) Cause() error  { return e.err }

func flashError(target string, err error) error {
	return &flashRedirectError{target: target, err: err}
}

func redirectLogin(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func redirectWith(ctx echo.Context, target, param, msg string) error {
	v := make(url.Values)
	v.Set(param, msg)
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return ctx.Redirect(http.StatusSeeOther, target+sep+v.Encode())
}

func redirectSuccess(ctx echo.Context, target, msg string) error {
	return redirectWith(ctx, target, "success", msg)
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. signalShutdown is called in order to gracefully
// shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if fErr, ok := err.(*flashRedirectError); ok {
			if !ctx.Response().Committed {
				if rErr := redirectWith(ctx, fErr.target, "error", userMessage(fErr.err)); rErr != nil {
					ctx.Echo().Logger.Error(rErr)
				}
			}
			return
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing || origErr.Code == http.StatusUnauthorized {
				if !ctx.Response().Committed {
					if rErr := redirectLogin(ctx); rErr != nil {
						ctx.Echo().Logger.Error(rErr)
					}
				}
				return
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if core.IsAuthorization(err) {
				code = http.StatusForbidden
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// userMessage flattens a domain error into the single line shown to the user
// after a redirect.
func userMessage(err error) string {
	switch origErr := errors.Cause(err).(type) {
	case *core.ValidationError:
		if origErr.Fields != nil {
			msgs := make([]string, 0, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				msgs = append(msgs, fErr.Field+": "+fErr.Error)
			}
			return strings.Join(msgs, "; ")
		}
		return origErr.Error()
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(origErr))
		for _, vErr := range origErr {
			msgs = append(msgs, vErr.Field()+" is invalid")
		}
		return strings.Join(msgs, "; ")
	default:
		return origErr.Error()
	}
}
