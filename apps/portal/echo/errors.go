package echoportal

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/apps/portal/views"
	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
)

// errorCode maps an error to its HTTP status code.
func errorCode(err error) int {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code
	case *core.ValidationError, *core.RuleError:
		return http.StatusBadRequest
	}

	switch errors.Cause(err) {
	case portal.ErrNotAuthenticated:
		return http.StatusUnauthorized
	case portal.ErrForbidden:
		return http.StatusForbidden
	case portal.ErrUnknownSection, portal.ErrUnknownList, portal.ErrNotFound:
		return http.StatusNotFound
	case portal.ErrNoPendingPrompt:
		return http.StatusConflict
	default: // any other error is a server error
		return http.StatusInternalServerError
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that re-renders the session's page with the
// error's status code: field errors & notifications are already part of the App state.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, renderer *views.Renderer, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := errorCode(err)
		app, appErr := getContextApp(ctx)

		if code == http.StatusInternalServerError {
			msg := http.StatusText(code)
			args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Request().URL.Path,
			}}
			if sid, ok := ctx.Get(contextSessionKey).(string); ok {
				args = append(args, core.SessionID(sid))
			}
			if appErr == nil {
				if usr, ok := app.CurrentUser(); ok {
					args = append(args, usr)
				}
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead { // Issue #608
			if err = ctx.NoContent(code); err != nil {
				ctx.Echo().Logger.Error(err)
			}
			return
		}

		if appErr == nil {
			var buff bytes.Buffer
			page := views.Page{ViewModel: app.View(time.Now()), CSRFToken: csrfToken(ctx)}
			if rErr := renderer.Render(&buff, page); rErr == nil {
				err = ctx.HTMLBlob(code, buff.Bytes())
			} else {
				logger.Error("rendering error page", rErr)
				err = ctx.String(code, http.StatusText(code))
			}
		} else {
			message := http.StatusText(code)
			if ctx.Echo().Debug {
				message = err.Error()
			}
			err = ctx.String(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
