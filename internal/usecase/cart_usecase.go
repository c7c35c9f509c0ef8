package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートはセッションごとの CartStore に置き、DBには保存しません。
type CartUsecase struct {
	carts       repo.CartStore
	productRepo repo.ProductRepository
	shipping    pricing.ShippingPolicy
}

func NewCartUsecase(carts repo.CartStore, productRepo repo.ProductRepository, shipping pricing.ShippingPolicy) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
		shipping:    shipping,
	}
}

type CartDisplay struct {
	GrandTotal             string `json:"grand_total"`
	GrandTotalWithShipping string `json:"grand_total_with_shipping"`
}

type CartResponse struct {
	Items                  []pricing.CartEntry `json:"items"`
	GrandTotal             int64               `json:"grand_total"`
	Shipping               int64               `json:"shipping"`
	GrandTotalWithShipping int64               `json:"grand_total_with_shipping"`
	QuantityTotal          int64               `json:"quantity_total"`
	Empty                  bool                `json:"empty"`
	Unresolved             []int               `json:"unresolved"`
	Display                CartDisplay         `json:"display"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカートの中身と合計を返す（無ければ空）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	state, err := u.carts.Load(ctx, sessionID)
	if err != nil {
		return CartResponse{}, newInternalError("cart store error", err)
	}
	return u.buildCartResponse(ctx, state)
}

// AddToCart は末尾に1行追加する（同じ商品でも別の行になる）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	fields := FieldErrors{}
	if in.ProductID <= 0 {
		fields.Add("product_id", "invalid")
	}
	if in.Quantity < 1 {
		fields.Add("quantity", "must be >= 1")
	} else if in.Quantity > model.MaxQuantity {
		fields.Add("quantity", "too large")
	}
	if fields.Any() {
		return CartResponse{}, NewValidationError(fields)
	}

	// 商品チェック
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return CartResponse{}, newInternalError("db error", err)
	}

	state, err := u.carts.Update(ctx, sessionID, func(s model.CartState) (model.CartState, error) {
		return s.TryAppend(model.CartLine{ProductID: in.ProductID, Quantity: in.Quantity})
	})
	if errors.Is(err, model.ErrCartFull) {
		return CartResponse{}, NewValidationError(FieldErrors{"product_id": "cart is full"})
	}
	if err != nil {
		return CartResponse{}, newInternalError("cart store error", err)
	}
	return u.buildCartResponse(ctx, state)
}

// 一覧からのワンクリック追加（数量1）
func (u *CartUsecase) QuickAdd(ctx context.Context, sessionID string, productID int64) (CartResponse, error) {
	return u.AddToCart(ctx, sessionID, AddCartInput{ProductID: productID, Quantity: 1})
}

// 現在の並びでindex番目の行を削除
func (u *CartUsecase) RemoveLine(ctx context.Context, sessionID string, index int) (CartResponse, error) {
	state, err := u.carts.Update(ctx, sessionID, func(s model.CartState) (model.CartState, error) {
		return s.RemoveAt(index)
	})
	if errors.Is(err, model.ErrLineIndexOutOfRange) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
	}
	if err != nil {
		return CartResponse{}, newInternalError("cart store error", err)
	}
	return u.buildCartResponse(ctx, state)
}

// カートを空にする（無くてもエラーにしない）
func (u *CartUsecase) Clear(ctx context.Context, sessionID string) (CartResponse, error) {
	if err := u.carts.Clear(ctx, sessionID); err != nil {
		return CartResponse{}, newInternalError("cart store error", err)
	}
	return u.buildCartResponse(ctx, model.CartState{})
}

// 行の商品をまとめて引いて集計する。
func (u *CartUsecase) buildCartResponse(ctx context.Context, state model.CartState) (CartResponse, error) {
	products, err := u.productRepo.FindByIDs(ctx, state.ProductIDs())
	if err != nil {
		return CartResponse{}, newInternalError("db error", err)
	}
	return toCartResponse(pricing.AggregateCart(state, pricing.CatalogMap(products), u.shipping)), nil
}

func toCartResponse(v pricing.CartView) CartResponse {
	return CartResponse{
		Items:                  v.Entries,
		GrandTotal:             v.GrandTotal(),
		Shipping:               v.Totals.Shipping,
		GrandTotalWithShipping: v.GrandTotalWithShipping(),
		QuantityTotal:          v.TotalQuantity(),
		Empty:                  v.Totals.Empty,
		Unresolved:             v.Unresolved,
		Display: CartDisplay{
			GrandTotal:             pricing.FormatMinor(v.GrandTotal()),
			GrandTotalWithShipping: pricing.FormatMinor(v.GrandTotalWithShipping()),
		},
	}
}
