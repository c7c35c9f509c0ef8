package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/handler"
)

func RegisterRoutes(e *echo.Echo, opts Options, hs Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, handler.ErrorResponse{Error: "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	// アップロード画像など
	e.Static("/static", opts.Config.Shop.StaticDir)

	hs.Products.RegisterRoutes(e)
	hs.Cart.RegisterRoutes(e)
	hs.Checkout.RegisterRoutes(e)
	hs.Admin.RegisterRoutes(e)
}
