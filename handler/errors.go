package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bizsite/domain"
	"bizsite/store"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// HTTPErrorHandler maps handler errors onto JSON responses. Validation
// failures are 400 with field details; unexpected errors are 500 without
// internals and get logged and reported.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorResponse{Error: "internal server error"}

	var (
		verr *domain.ValidationError
		he   *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		code = http.StatusBadRequest
		body = errorResponse{Error: "validation failed", Fields: verr.Fields}
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
		body.Error = "not found"
	case errors.As(err, &he):
		code = he.Code
		body.Error = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		sentry.CaptureException(err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, body)
	}
	if writeErr != nil {
		h.Log.Error("write error response", zap.Error(writeErr))
	}
}
