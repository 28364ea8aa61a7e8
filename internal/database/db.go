package database

import (
	"log"

	"magaza-backend/internal/config"
	"magaza-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError: unique ihlalleri sürücüden bağımsız gorm.ErrDuplicatedKey
	// olarak gelsin (kasa oturumu açma yarışının tespiti buna dayanır)
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: AutoMigrate + AutoMigrate'in üretemediği kısıtlar. Testler de
// kendi bağlantıları üzerinde bunu çağırır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Category{},
		&models.Stock{},
		&models.SaleHistory{},
		&models.SaleItem{},
		&models.StockMovement{},
		&models.ReturnItem{},
		&models.CashSession{},
		&models.DispatchHistory{},
		&models.DispatchItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// "Aynı anda tek açık kasa oturumu" kuralı storage seviyesinde de korunur.
	// Kayıt öncesi kontrol eşzamanlı open isteklerinde yarışabilir; bu index
	// yarışı kaybedeni unique ihlaliyle durdurur.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_single_open ON cash_sessions ((closed_at IS NULL)) WHERE closed_at IS NULL",
	).Error; err != nil {
		return err
	}

	return nil
}
