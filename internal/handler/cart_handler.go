package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
	"storefront/internal/validator"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// 数値は文字列でもJSON数値でも受ける（変換はvalidatorで行う）
type AddCartRequest struct {
	ProductID interface{} `json:"product_id"`
	Quantity  interface{} `json:"quantity"`
}

// /cart, /quick-add を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cart", h.getCart)
	e.POST("/cart", h.addToCart)
	e.DELETE("/cart", h.clear)
	e.DELETE("/cart/:index", h.removeLine)
	e.POST("/quick-add/:id", h.quickAdd)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetCart(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddCartRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
	} else {
		req.ProductID = c.FormValue("product_id")
		req.Quantity = c.FormValue("quantity")
	}

	fields := usecase.FieldErrors{}
	productID, err := validator.ParseID(req.ProductID)
	if err != nil {
		fields.Add("product_id", err.Error())
	}
	qty, err := validator.ParseQuantity(req.Quantity)
	if err != nil {
		fields.Add("quantity", err.Error())
	}
	if fields.Any() {
		return writeError(c, usecase.NewValidationError(fields))
	}

	out, err := h.uc.AddToCart(c.Request().Context(), sid, usecase.AddCartInput{
		ProductID: productID,
		Quantity:  qty,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) quickAdd(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return writeError(c, err)
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.QuickAdd(c.Request().Context(), sid, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// indexは現在の並びでの位置
func (h *CartHandler) removeLine(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return writeError(c, err)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid index"})
	}

	out, err := h.uc.RemoveLine(c.Request().Context(), sid, index)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Clear(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
