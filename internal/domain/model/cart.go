package model

import "errors"

var (
	ErrLineIndexOutOfRange = errors.New("cart line index out of range")
	ErrCartFull            = errors.New("cart is full")
)

// 1カートの行数上限
const MaxCartLines = 100

// セッションに置くカート1行（永続化しない）
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// カートの値オブジェクト。
// 行の位置（index）が削除キーなので、順序をそのまま保つ。
type CartState struct {
	Lines []CartLine `json:"lines"`
}

func (s CartState) Len() int {
	return len(s.Lines)
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// 上限を超えるなら ErrCartFull、そうでなければ Append
func (s CartState) TryAppend(line CartLine) (CartState, error) {
	if len(s.Lines) >= MaxCartLines {
		return s, ErrCartFull
	}
	return s.Append(line), nil
}

// 末尾に追加した新しいCartStateを返す
func (s CartState) Append(line CartLine) CartState {
	lines := make([]CartLine, 0, len(s.Lines)+1)
	lines = append(lines, s.Lines...)
	lines = append(lines, line)
	return CartState{Lines: lines}
}

// 現在の並びでi番目を取り除く。後ろの行のindexは1つずつ詰まる
func (s CartState) RemoveAt(i int) (CartState, error) {
	if i < 0 || i >= len(s.Lines) {
		return s, ErrLineIndexOutOfRange
	}
	lines := make([]CartLine, 0, len(s.Lines)-1)
	lines = append(lines, s.Lines[:i]...)
	lines = append(lines, s.Lines[i+1:]...)
	return CartState{Lines: lines}, nil
}

// 重複なしの商品ID（出現順）
func (s CartState) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(s.Lines))
	ids := make([]int64, 0, len(s.Lines))
	for _, l := range s.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

// 商品ごとの数量合計（在庫減算は商品ごとに1回）
func (s CartState) QuantityByProduct() map[int64]int64 {
	out := make(map[int64]int64, len(s.Lines))
	for _, l := range s.Lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}
