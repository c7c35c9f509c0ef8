package validator

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
)

var (
	ErrNotANumber   = errors.New("not a number")
	ErrNotAnInteger = errors.New("not an integer")
	ErrNotPositive  = errors.New("must be >= 1")
	ErrNegative     = errors.New("must be >= 0")
	ErrTooLarge     = errors.New("too large")
	ErrInvalidID    = errors.New("must be a positive id")
)

// ParseQuantity はリクエストの数量（文字列・JSON数値どちらも来る）を 1..model.MaxQuantity の整数にする。
// 小数や数字以外はエラー（切り捨てない）。
func ParseQuantity(v interface{}) (int64, error) {
	n, err := parseInteger(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, ErrNotPositive
	}
	if n > model.MaxQuantity {
		return 0, ErrTooLarge
	}
	return n, nil
}

// 商品IDなど（1以上）
func ParseID(v interface{}) (int64, error) {
	n, err := parseInteger(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, ErrInvalidID
	}
	return n, nil
}

// 価格・在庫用（0..max）
func ParseNonNegative(v interface{}, max int64) (int64, error) {
	n, err := parseInteger(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegative
	}
	if n > max {
		return 0, ErrTooLarge
	}
	return n, nil
}

func parseInteger(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		return floatToInt(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, ErrNotANumber
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, ErrNotANumber
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrNotANumber
		}
		return floatToInt(f)
	default:
		return 0, ErrNotANumber
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	if f != math.Trunc(f) {
		return 0, ErrNotAnInteger
	}
	// float64(math.MaxInt64) は 2^63 に丸まるので >= で弾く
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, ErrNotANumber
	}
	return int64(f), nil
}
