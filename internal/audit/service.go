package audit

import (
	"fmt"

	"mantar-backend/internal/models"

	"gorm.io/gorm"
)

// Write: Tek yazar yolu. Bütün defter ve kuyruk mutasyonları denetim kaydını
// buradan, kendi transaction'ları içinde yazar. Kayıtlar append-only'dir;
// güncelleme/silme yolu yoktur.
func Write(tx *gorm.DB, rec *models.SupplyAudit) error {
	if err := tx.Create(rec).Error; err != nil {
		return fmt.Errorf("denetim kaydı yazılamadı: %w", err)
	}
	return nil
}

// NewRecord: Maliyet alanlarını kilitli birim maliyetten türeterek kayıt kurar.
// unitCost nil ise maliyet alanları boş kalır (maliyeti olmayan işlemler).
func NewRecord(userID, supplyID uint, action models.SupplyAuditAction, amount float64, unit string, unitCost *float64) models.SupplyAudit {
	rec := models.SupplyAudit{
		UserID:   userID,
		SupplyID: supplyID,
		Action:   action,
		Amount:   amount,
		Unit:     unit,
	}
	if unitCost != nil {
		uc := *unitCost
		total := uc * amount
		rec.UnitCostApplied = &uc
		rec.TotalCostApplied = &total
	}
	return rec
}

// ReplayQuantity: Denetim akışını baştan oynatıp eldeki miktarı yeniden hesaplar.
// Supply.Quantity bu akışın maddileştirilmiş bir izdüşümüdür; ikisinin eşit
// çıkması iç tutarlılık kontrolü olarak kullanılır.
func ReplayQuantity(db *gorm.DB, userID, supplyID uint) (float64, error) {
	var logs []models.SupplyAudit
	err := db.
		Where("user_id = ? AND supply_id = ?", userID, supplyID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return 0, fmt.Errorf("denetim kayıtları okunamadı: %w", err)
	}

	q := 0.0
	for _, l := range logs {
		switch l.Action {
		case models.SupplyAuditAdd, models.SupplyAuditRestock,
			models.SupplyAuditReconcileRefund, models.SupplyAuditCleanReturn:
			q += l.Amount
		case models.SupplyAuditConsume:
			q -= l.Amount
			if q < 0 {
				q = 0 // tüketim sıfırda kelepçelenir, akış da aynı kuralı izler
			}
		default:
			// edit / delete / clean_destroyed miktarı etkilemez
		}
	}
	return q, nil
}
