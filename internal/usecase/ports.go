package usecase

import "io"

// 注文の参照コードを作る約束
type ReferenceGenerator interface {
	NewReference() string
}

// アップロード画像を保存してURLを返す約束
type ImageStore interface {
	Save(filename string, r io.Reader) (url string, err error)
	Delete(url string) error
}

// usecaseがValidatorに依存する約束
type FormValidator interface {
	ValidateCheckout(in CheckoutInput) FieldErrors
	ValidateProduct(in AdminCreateProductInput) FieldErrors
}

// 注文数などの計測
type OrderMetrics interface {
	OrderPlaced(total int64)
	CheckoutFailed(reason string)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(total int64)      {}
func (nopMetrics) CheckoutFailed(reason string) {}
