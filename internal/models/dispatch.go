package models

import "time"

// DispatchHistory: Dışa gönderim (sevk) başlığı. Total ayrıca girilmez,
// kalemlerin toplamından hesaplanıp yazılır. Stok miktarına DOKUNMAZ;
// sevkler kayıt amaçlıdır, stok düşümü satıştan farklı olarak yapılmaz.
type DispatchHistory struct {
	ID        uint      `gorm:"primaryKey"`
	Number    string    `gorm:"size:30;uniqueIndex;not null"`
	Recipient string    `gorm:"size:255;not null"`
	Comment   string    `gorm:"size:255"`
	Total     float64   `gorm:"not null"`
	Date      time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []DispatchItem `gorm:"foreignKey:DispatchID;constraint:OnDelete:CASCADE"`
}

// DispatchItem: Sevk kalemi. StockID zayıf referans; stok silinirse NULL'a
// çekilir, kalemin denormalize alanları kalır.
type DispatchItem struct {
	ID         uint    `gorm:"primaryKey"`
	DispatchID uint    `gorm:"index;not null"`
	StockID    *uint   `gorm:"index"`
	Stock      *Stock  `gorm:"constraint:OnDelete:SET NULL"`
	Code       string  `gorm:"size:255;not null"`
	Name       string  `gorm:"size:255;not null"`
	Quantity   float64 `gorm:"not null"`
	Price      float64 `gorm:"not null"`
	Total      float64 `gorm:"not null"`
	CreatedAt  time.Time
}
