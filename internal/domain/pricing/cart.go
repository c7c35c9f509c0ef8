package pricing

import "storefront/internal/domain/model"

// 商品IDから商品を引く
type Catalog interface {
	Lookup(productID int64) (model.Product, bool)
}

type CatalogMap map[int64]model.Product

func (m CatalogMap) Lookup(productID int64) (model.Product, bool) {
	p, ok := m[productID]
	return p, ok
}

// カート1行の表示用
type CartEntry struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
	// セッション上の位置（削除キー）
	Index int `json:"index"`
}

type CartView struct {
	Entries []CartEntry `json:"entries"`
	Totals  Totals      `json:"totals"`
	// カタログに無い商品を指している行のindex。合計には含めない
	Unresolved []int `json:"unresolved"`
}

func (v CartView) GrandTotal() int64 {
	return v.Totals.Subtotal
}

func (v CartView) GrandTotalWithShipping() int64 {
	return v.Totals.Total
}

func (v CartView) TotalQuantity() int64 {
	return v.Totals.Quantity
}

// カートの行を商品情報で展開して合計を出す。
// 商品が見つからない行はスキップして Unresolved に記録する（落とさない）。
func AggregateCart(state model.CartState, catalog Catalog, policy ShippingPolicy) CartView {
	entries := make([]CartEntry, 0, len(state.Lines))
	unresolved := []int{}
	var subtotal, quantity int64

	for i, line := range state.Lines {
		p, ok := catalog.Lookup(line.ProductID)
		if !ok {
			unresolved = append(unresolved, i)
			continue
		}

		lineTotal := p.Price * line.Quantity
		subtotal += lineTotal
		quantity += line.Quantity

		entries = append(entries, CartEntry{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
			Index:     i,
		})
	}

	return CartView{
		Entries:    entries,
		Totals:     newTotals(subtotal, quantity, len(entries), policy),
		Unresolved: unresolved,
	}
}
