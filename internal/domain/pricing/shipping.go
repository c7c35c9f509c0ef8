package pricing

// 送料の決め方。固定値をロジックに埋め込まない
type ShippingPolicy interface {
	Fee(subtotal int64, quantity int64) int64
}

// 常に同じ送料
type FlatShipping int64

func (f FlatShipping) Fee(subtotal int64, quantity int64) int64 {
	return int64(f)
}

// Threshold以上なら送料無料、それ未満はSurcharge
type FreeShippingOver struct {
	Threshold int64
	Surcharge int64
}

func (f FreeShippingOver) Fee(subtotal int64, quantity int64) int64 {
	if subtotal >= f.Threshold {
		return 0
	}
	return f.Surcharge
}

// DefaultShippingFee is the surcharge used when nothing is configured.
const DefaultShippingFee int64 = 1000

// 設定値からPolicyを組み立てる（freeOver<=0なら無効）
func NewShippingPolicy(fee int64, freeOver int64) ShippingPolicy {
	if freeOver > 0 {
		return FreeShippingOver{Threshold: freeOver, Surcharge: fee}
	}
	return FlatShipping(fee)
}
