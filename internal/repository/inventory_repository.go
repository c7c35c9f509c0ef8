package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type InventoryRepository interface {
	// 対象商品の行ロックを取り、ロックできた商品を返す
	LockProducts(ctx context.Context, productIDs []int64) (map[int64]model.Product, error)

	// 在庫を無条件に減算（マイナスも許す）
	DecreaseStock(ctx context.Context, productID int64, qty int64) error

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 増減履歴作成
	CreateMovement(ctx context.Context, m model.StockMovement) error
}
