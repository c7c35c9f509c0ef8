package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront/internal/metrics"
)

const (
	CtxLoggerKey    = "logger" // *zap.Logger
	HeaderRequestID = "X-Request-Id"
)

// RequestLogger はrequest idを振り、リクエスト単位のloggerをcontextに入れてアクセスログを出す。
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, reqID)

			l := base.With(
				zap.String("req_id", reqID),
				zap.String("method", req.Method),
				zap.String("path", routePath(c)),
			)
			c.Set(CtxLoggerKey, l)

			err := next(c)
			if err != nil {
				// echoのエラーハンドラにレスポンスを書かせる
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.Int("status", status),
				zap.Int64("dur_ms", time.Since(start).Milliseconds()),
				zap.String("remote", c.RealIP()),
				zap.Int64("resp_bytes", c.Response().Size),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case status >= http.StatusInternalServerError:
				l.Error("http_request", fields...)
			case status >= http.StatusBadRequest:
				l.Warn("http_request", fields...)
			default:
				l.Info("http_request", fields...)
			}
			return nil
		}
	}
}

// Logger はリクエスト単位のlogger（無ければNop）
func Logger(c echo.Context) *zap.Logger {
	if l, ok := c.Get(CtxLoggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// Metrics はHTTPのリクエスト数と処理時間を記録する。
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			m.ObserveHTTP(c.Request().Method, routePath(c), c.Response().Status, time.Since(start))
			return nil
		}
	}
}

// ルートのテンプレート（/products/:id）。未登録のパスはラベルを増やさない
func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
