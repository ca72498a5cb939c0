// Package middleware provides echo middleware for request logging and panic recovery.
package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.Info("HTTP request",
				logfields.Method(req.Method),
				logfields.Path(req.URL.Path),
				logfields.Status(c.Response().Status),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
			return nil
		}
	}
}

// Recover turns handler panics into classified internal errors.
func Recover(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					req := c.Request()
					logger.Error("HTTP handler panic",
						slog.Any("panic", r),
						logfields.Path(req.URL.Path),
						logfields.Method(req.Method))
					err = ferrors.InternalError("internal server error").
						WithCause(fmt.Errorf("panic: %v", r)).
						WithContext("path", req.URL.Path).
						Build()
				}
			}()
			return next(c)
		}
	}
}
