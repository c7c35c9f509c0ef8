package pricing

import "storefront/internal/domain/model"

// 保存済みの注文明細から合計を再計算する。明細0件は Empty を返す
func OrderTotals(lines []model.OrderLine, policy ShippingPolicy) Totals {
	var subtotal, quantity int64
	for _, l := range lines {
		subtotal += l.UnitPrice * l.Quantity
		quantity += l.Quantity
	}
	return newTotals(subtotal, quantity, len(lines), policy)
}
