package model

import "time"

type OrderStatus string

const (
	// チェックアウト直後の状態。これ以外への遷移は未実装
	OrderStatusPending OrderStatus = "PENDING"
)

// 注文フォームの選択肢
var (
	States       = []string{"CA", "WA", "AL"}
	Countries    = []string{"US", "UK", "FR"}
	PaymentTypes = []string{"CK", "WT"}
)

type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference   string      `gorm:"type:varchar(16);not null;index" json:"reference"`
	FirstName   string      `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName    string      `gorm:"type:varchar(20);not null" json:"last_name"`
	PhoneNumber string      `gorm:"type:varchar(20);not null" json:"phone_number"`
	Email       string      `gorm:"type:varchar(50);not null" json:"email"`
	Address     string      `gorm:"type:varchar(100);not null" json:"address"`
	City        string      `gorm:"type:varchar(100);not null" json:"city"`
	State       string      `gorm:"type:varchar(20);not null" json:"state"`
	Country     string      `gorm:"type:varchar(20);not null" json:"country"`
	Status      OrderStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	PaymentType string      `gorm:"type:varchar(10);not null" json:"payment_type"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
