package models

import "time"

// CashSession: Kasa oturumu. Aynı anda en fazla bir oturum açık olabilir;
// bu kural hem kayıt öncesi kontrolle hem de closed_at IS NULL üzerindeki
// partial unique index ile korunur (database.Migrate içinde).
type CashSession struct {
	ID         uint       `gorm:"primaryKey"`
	OpenedAt   time.Time  `gorm:"not null"` // açılışta damgalanır, değişmez
	ClosedAt   *time.Time `gorm:"index"`
	OpeningSum float64    `gorm:"not null"`
	ClosingSum *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen: closed_at boşsa oturum hâlâ açıktır.
func (s *CashSession) IsOpen() bool {
	return s.ClosedAt == nil
}
