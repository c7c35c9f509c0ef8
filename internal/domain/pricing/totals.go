package pricing

import "github.com/shopspring/decimal"

// 合計値。Empty=true のとき明細が1件もない（送料も足さない）。
// 「NULL + 送料」のような値を作らないため、組み立ては newTotals だけで行う。
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
	Quantity int64 `json:"quantity"`
	Empty    bool  `json:"empty"`
}

func newTotals(subtotal, quantity int64, lines int, policy ShippingPolicy) Totals {
	if lines == 0 {
		return Totals{Empty: true}
	}
	fee := policy.Fee(subtotal, quantity)
	return Totals{
		Subtotal: subtotal,
		Shipping: fee,
		Total:    subtotal + fee,
		Quantity: quantity,
	}
}

// 最小単位の金額を小数2桁の表示用文字列にする（1234 -> "12.34"）
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
