package models

import "time"

type MovementType string

const (
	MovementIn     MovementType = "in"     // giriş
	MovementSale   MovementType = "sale"   // satış
	MovementReturn MovementType = "return" // iade
	MovementAdjust MovementType = "adjust" // düzeltme
)

// StockMovement: Stok miktarını değiştiren her işlemin günlüğü. Sadece eklenir,
// asla güncellenmez. Miktarın kaynağı değildir; kaynak Stock.Quantity'dir.
type StockMovement struct {
	ID           uint         `gorm:"primaryKey"`
	StockID      uint         `gorm:"index;not null"`
	Stock        Stock        `gorm:"constraint:OnDelete:CASCADE"`
	MovementType MovementType `gorm:"size:10;not null;index"` // in / sale / return / adjust
	Quantity     float64      `gorm:"not null"`
	Comment      string       `gorm:"size:255"`
	Date         time.Time    `gorm:"index;not null"`
	SaleID       *uint        `gorm:"index"` // satış silinirse NULL'a çekilir
	Sale         *SaleHistory `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time
}
