package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

type AdminUsecase struct {
	tx       repo.TransactionManager
	shipping pricing.ShippingPolicy
}

func NewAdminUsecase(tx repo.TransactionManager, shipping pricing.ShippingPolicy) *AdminUsecase {
	return &AdminUsecase{tx: tx, shipping: shipping}
}

type DashboardOutput struct {
	Products        []model.Product `json:"products"`
	ProductsInStock int64           `json:"products_in_stock"`
	Orders          []model.Order   `json:"orders"`
}

type OrderDetailOutput struct {
	Order   model.Order       `json:"order"`
	Lines   []model.OrderLine `json:"lines"`
	Totals  pricing.Totals    `json:"totals"`
	Display OrderDisplay      `json:"display"`
}

// 管理画面トップ（商品・在庫あり件数・注文一覧）
func (u *AdminUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	var out DashboardOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := r.Products().ListAll(ctx)
		if err != nil {
			return newInternalError("db error", err)
		}
		inStock, err := r.Products().CountInStock(ctx)
		if err != nil {
			return newInternalError("db error", err)
		}
		orders, err := r.Orders().ListAll(ctx)
		if err != nil {
			return newInternalError("db error", err)
		}

		out = DashboardOutput{
			Products:        products,
			ProductsInStock: inStock,
			Orders:          orders,
		}
		return nil
	})
	if err != nil {
		return DashboardOutput{}, err
	}
	return out, nil
}

// 注文詳細。合計は明細から毎回計算する（明細0件でも落ちない）
func (u *AdminUsecase) ViewOrder(ctx context.Context, orderID int64) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return newInternalError("db error", err)
		}

		lines, err := r.OrderItems().ListLinesByOrderID(ctx, orderID)
		if err != nil {
			return newInternalError("db error", err)
		}

		totals := pricing.OrderTotals(lines, u.shipping)
		out = OrderDetailOutput{
			Order:   o,
			Lines:   lines,
			Totals:  totals,
			Display: toOrderDisplay(totals),
		}
		return nil
	})
	if err != nil {
		return OrderDetailOutput{}, err
	}
	return out, nil
}
