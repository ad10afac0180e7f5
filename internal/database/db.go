package database

import (
	"log"

	"mantar-backend/internal/config"
	"mantar-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tüm model tablolarını oluşturur/günceller. Testler kendi sqlite
// bağlantıları için de bunu çağırır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Supply{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Grow{},
		&models.SupplyAudit{},
		&models.CleanQueueEntry{},
	)
}

// LockForUpdate: Tek satırlık read-modify-write işlemleri için satır kilidi.
// Eşzamanlı restock/consume/clean-return çağrılarında kayıp güncellemeyi önler.
// SQLite (test ortamı) FOR UPDATE desteklemez, zaten tek yazarlıdır.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
