package server

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/common"
)

const headerRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a fresh one,
// echoes it on the response and stores it on the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(headerRequestID))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Response().Header().Set(headerRequestID, id)
			ctx := common.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}
			req := c.Request()
			common.LoggerFrom(req.Context(), logger).Info("http.request",
				"method", req.Method,
				"route", c.Path(),
				"status", c.Response().Status,
				"bytes_out", c.Response().Size,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// OrgScope validates the :org path parameter and stores it on the context.
func OrgScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			org := strings.TrimSpace(c.Param("org"))
			if org == "" || strings.Contains(org, ":") || len(org) > 128 {
				return common.InvalidInput("invalid organization id %q", org)
			}
			ctx := common.WithOrgID(c.Request().Context(), org)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
