package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// 商品の現在の名前・価格と結合して返す
	ListLinesByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
}
