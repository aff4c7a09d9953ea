package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/submission"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps the
// application's error taxonomy onto status codes. signalShutdown is called
// whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
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
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
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
		case *core.TxRevertedError:
			code = http.StatusUnprocessableEntity
			message = origErr.Reason
		case *core.FetchError:
			code = http.StatusBadGateway
			message = origErr.Error()
		case *core.NetworkSwitchError:
			code = http.StatusBadGateway
			message = origErr.Error()
		default:
			switch {
			case errors.Is(err, core.ErrNotConnected):
				code = http.StatusUnauthorized
				message = core.ErrNotConnected.Error()
			case errors.Is(err, core.ErrNotAuthorized):
				code = http.StatusForbidden
				message = core.ErrNotAuthorized.Error()
			case errors.Is(err, core.ErrNoProvider):
				code = http.StatusServiceUnavailable
				message = core.ErrNoProvider.Error()
			case errors.Is(err, core.ErrUserRejected):
				code = http.StatusBadRequest
				message = core.ErrUserRejected.Error()
			case errors.Is(err, core.ErrTxPending):
				code = http.StatusConflict
				message = core.ErrTxPending.Error()
			case errors.Is(err, submission.ErrNotFound):
				code = http.StatusNotFound
				message = submission.ErrNotFound.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
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
