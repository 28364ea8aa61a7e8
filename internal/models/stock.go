package models

import "time"

// Stock: Eldeki ürün stoğu. Quantity güncel miktar, FixedQuantity ise ürünün ilk
// girişindeki miktar; oluşturma anında damgalanır ve bir daha değişmez.
// Code tek bir kod olabileceği gibi virgülle birleştirilmiş çoklu kod da olabilir.
type Stock struct {
	ID            uint      `gorm:"primaryKey"`
	Code          string    `gorm:"size:255;index;not null"`
	Name          string    `gorm:"size:255;not null"`
	Price         float64   `gorm:"not null"`
	SupplierPrice float64   `gorm:"not null"` // tedarikçi fiyatı
	Quantity      float64   `gorm:"not null"`
	FixedQuantity float64   `gorm:"not null"`         // ilk giriş miktarı, salt okunur
	Unit          string    `gorm:"size:20;not null"` // kg, adet, koli vs.
	CategoryID    *uint     `gorm:"index"`
	Category      *Category `gorm:"constraint:OnDelete:SET NULL"`
	DateAdded     time.Time `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
