package models

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"  // gelir
	TransactionExpense TransactionType = "expense" // gider
)

// Transaction: Gelir/gider defteri kaydı. Başka hiçbir tabloya bağlı değil.
type Transaction struct {
	ID        uint            `gorm:"primaryKey"`
	Type      TransactionType `gorm:"size:10;not null;index"` // income / expense
	Name      string          `gorm:"size:255;not null"`
	Amount    float64         `gorm:"not null"`       // her zaman > 0
	Date      time.Time       `gorm:"index;not null"` // gün bazlı
	CreatedAt time.Time
	UpdatedAt time.Time
}
