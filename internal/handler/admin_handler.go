package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	"storefront/internal/validator"
)

// /admin 配下（認証はこのアプリの範囲外）
type AdminHandler struct {
	products       *usecase.ProductUsecase
	admin          *usecase.AdminUsecase
	maxUploadBytes int64
}

// DI
func NewAdminHandler(products *usecase.ProductUsecase, admin *usecase.AdminUsecase, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{
		products:       products,
		admin:          admin,
		maxUploadBytes: maxUploadBytes,
	}
}

type DashboardResponse struct {
	Products        []ProductResponse `json:"products"`
	ProductsInStock int64             `json:"products_in_stock"`
	Orders          []model.Order     `json:"orders"`
}

// adminを登録
func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")

	admin.GET("", h.dashboard)
	admin.POST("/products", h.createProduct)
	admin.GET("/orders/:id", h.viewOrder)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	out, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	products := make([]ProductResponse, 0, len(out.Products))
	for _, p := range out.Products {
		products = append(products, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, DashboardResponse{
		Products:        products,
		ProductsInStock: out.ProductsInStock,
		Orders:          out.Orders,
	})
}

// multipart: name, price, stock, description, image
func (h *AdminHandler) createProduct(c echo.Context) error {
	req := c.Request()
	if h.maxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadBytes)
	}

	if _, err := c.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload too large"})
		}
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
	}

	fields := usecase.FieldErrors{}
	price, err := validator.ParseNonNegative(c.FormValue("price"), model.MaxPrice)
	if err != nil {
		fields.Add("price", err.Error())
	}
	stock, err := validator.ParseNonNegative(c.FormValue("stock"), model.MaxStock)
	if err != nil {
		fields.Add("stock", err.Error())
	}
	if fields.Any() {
		return writeError(c, usecase.NewValidationError(fields))
	}

	in := usecase.AdminCreateProductInput{
		Name:        c.FormValue("name"),
		Price:       price,
		Stock:       stock,
		Description: c.FormValue("description"),
	}

	// 画像が無いときはvalidatorが"required"を返す
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
		}
		defer f.Close()
		in.ImageName = fh.Filename
		in.Image = f
	}

	p, err := h.products.AdminCreateProduct(req.Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	middleware.Logger(c).Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
	)
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *AdminHandler) viewOrder(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.admin.ViewOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
