package model

import "time"

// 入力の上限。price×quantity の合計が int64 を超えないように抑える
const (
	MaxQuantity int64 = 10000
	MaxPrice    int64 = 100000000
	MaxStock    int64 = 1000000000
	// Product.Image の列長
	MaxImageURLLength = 100
)

// 商品。削除はしない（在庫はチェックアウトで減算のみ、下限なし）
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Price       int64     `gorm:"not null" json:"price"`
	Stock       int64     `gorm:"not null" json:"stock"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	Image       string    `gorm:"type:varchar(100)" json:"image"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
