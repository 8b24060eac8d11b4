package server

import (
	"time"

	"github.com/emrgen/graphbase/internal/module"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestTimeMiddleware logs how long each request took.
func RequestTimeMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			reqTime := time.Since(start)
			logrus.Infof("request time: %v %v: %v", c.Request().Method, c.Request().URL.Path, reqTime)
			return err
		}
	}
}

// ActorMiddleware resolves the acting user from the request header and
// injects it into the request context. Requests without the header stay
// anonymous.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if actor, ok := module.ParseActor(c.Request().Header.Get(module.ActorHeader)); ok {
				ctx := module.WithActor(c.Request().Context(), actor)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
