package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain/model"
	"storefront/internal/infra/storage"
	"storefront/internal/usecase"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// 数字と + - ( ) 空白だけ
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]*$`)
)

type formValidator struct{}

// Usecaseは interface を依存注入
func NewFormValidator() usecase.FormValidator {
	return &formValidator{}
}

// 注文フォームを検証（列の長さはDBと合わせる）
func (v *formValidator) ValidateCheckout(in usecase.CheckoutInput) usecase.FieldErrors {
	fields := usecase.FieldErrors{}

	requireMax(fields, "first_name", in.FirstName, 20)
	requireMax(fields, "last_name", in.LastName, 20)
	requireMax(fields, "phone_number", in.PhoneNumber, 20)
	requireMax(fields, "email", in.Email, 50)
	requireMax(fields, "address", in.Address, 100)
	requireMax(fields, "city", in.City, 100)

	if in.Email != "" && !isEmailLike(in.Email) {
		fields.Add("email", "invalid format")
	}

	if in.PhoneNumber != "" && !phoneRe.MatchString(in.PhoneNumber) {
		fields.Add("phone_number", "invalid format")
	}

	oneOf(fields, "state", in.State, model.States)
	oneOf(fields, "country", in.Country, model.Countries)
	oneOf(fields, "payment_type", in.PaymentType, model.PaymentTypes)

	return fields
}

// 商品追加フォームを検証
func (v *formValidator) ValidateProduct(in usecase.AdminCreateProductInput) usecase.FieldErrors {
	fields := usecase.FieldErrors{}

	requireMax(fields, "name", in.Name, 50)
	if utf8.RuneCountInString(in.Description) > 500 {
		fields.Add("description", "too long")
	}
	if in.Price < 0 {
		fields.Add("price", "must be >= 0")
	} else if in.Price > model.MaxPrice {
		fields.Add("price", "too large")
	}
	if in.Stock < 0 {
		fields.Add("stock", "must be >= 0")
	} else if in.Stock > model.MaxStock {
		fields.Add("stock", "too large")
	}

	if in.Image == nil || strings.TrimSpace(in.ImageName) == "" {
		fields.Add("image", "required")
	} else if !storage.IsAllowedImage(in.ImageName) {
		fields.Add("image", "unsupported file type")
	}

	return fields
}

func requireMax(fields usecase.FieldErrors, name, value string, max int) {
	if strings.TrimSpace(value) == "" {
		fields.Add(name, "required")
		return
	}
	if utf8.RuneCountInString(value) > max {
		fields.Add(name, "too long")
	}
}

func oneOf(fields usecase.FieldErrors, name, value string, allowed []string) {
	if value == "" {
		fields.Add(name, "required")
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	fields.Add(name, "invalid choice")
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
