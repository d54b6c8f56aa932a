package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/common"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeHTTP     = "HTTP_ERROR"
	codeTooLarge = "PAYLOAD_TOO_LARGE"
)

// HTTPStatus maps an application error code onto an HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeInvalidInput:
		return http.StatusBadRequest
	case common.CodeConfig:
		return http.StatusServiceUnavailable
	case common.CodeUpstream:
		return http.StatusBadGateway
	case codeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders errors as ErrorBody. Internal errors are logged
// with the request ID and their cause is never sent to the client.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			common.LoggerFrom(c.Request().Context(), logger).Error("http.error",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func render(err error) (int, ErrorBody) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := codeHTTP
		switch he.Code {
		case http.StatusNotFound:
			code = common.CodeNotFound
		case http.StatusBadRequest:
			code = common.CodeInvalidInput
		case http.StatusRequestEntityTooLarge:
			code = codeTooLarge
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}}
	}
	code := common.CodeOf(err)
	return HTTPStatus(code), ErrorBody{Error: ErrorDetail{Code: code, Message: common.MessageOf(err)}}
}

func tooLarge(limit int64) error {
	return common.NewAppError(codeTooLarge, "upload exceeds "+humanBytes(limit), common.ErrInvalidInput)
}
