package handlers

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/middleware"
)

type RouterConfig struct {
	AppName           string
	AllowOrigins      []string
	AllowMethods      []string
	MetricsEnabled    bool
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
}

type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

// NewRouter builds the echo instance shared by the API and UI servers and
// registers every registrar on it. Nil registrars are skipped.
func NewRouter(cfg RouterConfig, logger ectologger.Logger, registrars ...RouteRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = cfg.IdleTimeout
	e.Server.ReadHeaderTimeout = cfg.ReadHeaderTimeout
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(echomiddleware.Recover())
	if len(cfg.AllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: cfg.AllowMethods,
		}))
	}
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	if cfg.MetricsEnabled {
		metrics.RegisterRoutes(e)
	}

	for _, r := range registrars {
		if r == nil {
			continue
		}
		r.RegisterRoutes(e)
	}

	return e
}
