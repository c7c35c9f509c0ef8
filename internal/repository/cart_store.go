package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// セッショントークンごとのカート置き場。
// 保存形式は {"lines":[{"product_id":7,"quantity":2}]}（順序がそのまま削除キーになる）
type CartStore interface {
	Load(ctx context.Context, sessionID string) (model.CartState, error)
	// fnの結果を保存する。fnがエラーなら何も書かない
	Update(ctx context.Context, sessionID string, fn func(model.CartState) (model.CartState, error)) (model.CartState, error)
	Clear(ctx context.Context, sessionID string) error
}
