package http_api

import (
	"fmt"
	"net/http"

	. "github.com/labstack/echo/v4"

	cs "github.com/qash-finance/qash-sub002/client/api/http_api/context_service"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
)

func contextServiceMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx Context) error {
		return next(cs.New(ctx))
	}
}

// Custom error handler
func customHTTPErrorHandler(l logger.Logger) HTTPErrorHandler {
	return func(err error, c Context) {
		code := http.StatusInternalServerError
		csError, ok := err.(*cs.CSErrorResp)
		if ok {
			if csError.Code != 0 {
				code = csError.Code
			}
		} else if he, ok := err.(*HTTPError); ok {
			code = he.Code
			csError = &cs.CSErrorResp{
				Result:       struct{}{},
				ErrorMessage: fmt.Sprintf("%v", he.Message),
			}
		} else {
			csError = cs.NewErrorResp(err)
			code = csError.Code
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, csError)
			}
			if err != nil {
				l.Error("Failed to send error response: %v", err)
			}
		}
	}
}
