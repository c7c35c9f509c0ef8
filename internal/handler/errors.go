package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront/internal/middleware"
	"storefront/internal/usecase"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			middleware.Logger(c).Error(he.Message, zap.Error(he.Err))
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields})
	}

	//500
	middleware.Logger(c).Error("unhandled error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// セッションIDはSessionミドルウェアが必ず入れる
func sessionID(c echo.Context) (string, error) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		return "", usecase.NewHTTPError(http.StatusInternalServerError, "session missing")
	}
	return sid, nil
}
