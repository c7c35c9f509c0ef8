package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	images      ImageStore
	validator   FormValidator
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, images ImageStore, validator FormValidator) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		images:      images,
		validator:   validator,
	}
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return []model.Product{}, newInternalError("db error", err)
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, newInternalError("db error", err)
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name        string
	Price       int64
	Stock       int64
	Description string
	ImageName   string
	Image       io.Reader
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if fields := u.validator.ValidateProduct(in); fields.Any() {
		return model.Product{}, NewValidationError(fields)
	}

	//画像を保存してURLを得る
	url, err := u.images.Save(in.ImageName, in.Image)
	if err != nil {
		return model.Product{}, newInternalError("image save error", err)
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        in.Name,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Image:       url,
	})
	if err != nil {
		// 登録できなかった画像は残さない
		delErr := u.images.Delete(url)
		if errors.Is(err, repo.ErrConflict) {
			return model.Product{}, NewValidationError(FieldErrors{"name": "already exists"})
		}
		return model.Product{}, newInternalError("db error", errors.Join(err, delErr))
	}
	return p, nil
}
