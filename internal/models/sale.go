package models

import "time"

type PaymentType string

const (
	PaymentCash PaymentType = "cash" // nakit
	PaymentCard PaymentType = "card" // kart
)

// SaleHistory: Satış başlığı. Number insan okunur fiş numarası (snowflake).
type SaleHistory struct {
	ID          uint        `gorm:"primaryKey"`
	Number      string      `gorm:"size:30;uniqueIndex;not null"`
	PaymentType PaymentType `gorm:"size:10;not null"` // cash / card
	Total       float64     `gorm:"not null"`
	Date        time.Time   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem: Satış anındaki ürün fotoğrafı. Stock sonradan değişse ya da silinse
// bile satış geçmişi aynı kalır, o yüzden alanlar denormalize tutulur.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey"`
	SaleID    uint    `gorm:"index;not null"`
	Code      string  `gorm:"size:255;not null"`
	Name      string  `gorm:"size:255;not null"`
	Price     float64 `gorm:"not null"`
	Quantity  float64 `gorm:"not null"`
	Total     float64 `gorm:"not null"`
	CreatedAt time.Time
}
