package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Admin    *handler.AdminHandler
}

type Options struct {
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// /healthz で呼ぶ（nilなら常にok）
	HealthCheck func(ctx context.Context) error
}

// New はミドルウェアとルートを組んだechoを返す
func New(opts Options, hs Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.Metrics(opts.Metrics))
	e.Use(middleware.Session(middleware.SessionConfig{
		Secret:     opts.Config.Session.Secret,
		CookieName: opts.Config.Session.CookieName,
		TTL:        opts.Config.Session.TTL,
		Secure:     opts.Config.Session.Secure,
	}))

	RegisterRoutes(e, opts, hs)
	return e
}

// Start はctxがキャンセルされるまで待ち、graceful shutdownする
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
