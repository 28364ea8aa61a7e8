package models

import "time"

type ReturnBranch string

// Şube adları müşteri tarafında sabit, data olarak bu ikisi kullanılıyor.
const (
	BranchSokuluk     ReturnBranch = "Сокулук"
	BranchBelovodskoe ReturnBranch = "Беловодское"
)

// ReturnItem: Satılmış bir kalemin iadesi. Aynı SaleItem'a birden fazla iade
// yazılabilir (kısmi iadeler), üst sınır kontrolü yok.
type ReturnItem struct {
	ID         uint         `gorm:"primaryKey"`
	SaleItemID uint         `gorm:"index;not null"`
	SaleItem   SaleItem     `gorm:"constraint:OnDelete:CASCADE"`
	Quantity   float64      `gorm:"not null"`
	Reason     string       `gorm:"size:255"`
	Branch     ReturnBranch `gorm:"size:100;not null"`
	Date       time.Time    `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
