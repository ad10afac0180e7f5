// Package cleanqueue: Arşivlenen yetiştirmelerin yeniden kullanılabilir kaplarını
// temizlik bekleyenler sayacına ekler, operatör iadesini işler ve kaçırılan
// arşivleri tarayıp geri doldurur.
package cleanqueue

import (
	"errors"
	"log"
	"math"
	"regexp"
	"strings"
	"time"

	"mantar-backend/internal/audit"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"
	"mantar-backend/internal/units"

	"gorm.io/gorm"
)

var (
	ErrInvalidReturn = errors.New("iade miktarı geçersiz")
	ErrNotFound      = gorm.ErrRecordNotFound
)

type EnqueueResult struct {
	Enqueued int  `json:"enqueued"` // kuyruğa eklenen toplam adet
	Stamped  bool `json:"stamped"`  // kapı bu çağrıda (veya daha önce) mühürlendi mi
}

type ScanResult struct {
	Scanned       int `json:"scanned"`
	EnqueuedCount int `json:"enqueued_count"`
	AffectedGrows int `json:"affected_grows"`
}

type CleanReturnResult struct {
	Returned  int `json:"returned"`
	Destroyed int `json:"destroyed"`
}

// Metadata alanları bozuk kayıtlar için isim bazlı tolerans kontrolü.
// Çekirdek kurala yazım anında doğru kategori/birim girilmesi esastır; bu
// sadece eski verinin enqueue'yu engellememesi için bir yedek.
var reusableNameRe = regexp.MustCompile(`(?i)(jar|dish|plate|tray|tub|bottle|flask|kavanoz|tabak|tepsi)`)

func looksReusableByName(name string) bool {
	return reusableNameRe.MatchString(strings.TrimSpace(name))
}

func isReusableCategory(cat models.SupplyCategory) bool {
	return cat == models.SupplyCategoryContainer || cat == models.SupplyCategoryTool
}

// incrementPending: Tek tedarik için bekleyen sayacı transactional olarak artırır,
// kayıt yoksa oluşturur. Denormalize isim/birim her artışta tazelenir.
func incrementPending(userID, supplyID uint, qty int, name, unit string, growID uint) error {
	if qty <= 0 {
		return nil
	}
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.CleanQueueEntry
		err := database.LockForUpdate(tx).
			First(&entry, "user_id = ? AND supply_id = ?", userID, supplyID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.CleanQueueEntry{
				UserID:     userID,
				SupplyID:   supplyID,
				Pending:    qty,
				Name:       name,
				Unit:       unit,
				LastGrowID: &growID,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"pending":      entry.Pending + qty,
			"last_grow_id": growID,
		}
		if name != "" {
			updates["name"] = name
		}
		if unit != "" {
			updates["unit"] = unit
		}
		return tx.Model(&entry).Updates(updates).Error
	})
}

// enqueueGrow: Gate kontrolünden geçmiş bir yetiştirme için tarifteki yeniden
// kullanılabilir, sayılabilir satırları kuyruğa ekler. Kayıp tedarik/tarif
// satırı hata değildir; diğer satırların işlenmesini engellemez.
func enqueueGrow(g *models.Grow) (EnqueueResult, error) {
	if g.RecipeID == nil {
		return EnqueueResult{}, nil
	}

	var recipe models.Recipe
	err := database.DB.Preload("Items").
		First(&recipe, "id = ? AND user_id = ?", *g.RecipeID, g.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EnqueueResult{}, nil
	}
	if err != nil {
		return EnqueueResult{}, err
	}

	batches := g.BatchCount
	if batches < 1 {
		batches = 1
	}

	enqueued := 0
	for _, it := range recipe.Items {
		if it.SupplyID == 0 {
			continue
		}

		var sup models.Supply
		err := database.DB.First(&sup, "id = ? AND user_id = ?", it.SupplyID, g.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return EnqueueResult{Enqueued: enqueued}, err
		}

		reusable := isReusableCategory(sup.Category) || looksReusableByName(sup.Name)
		countish := units.IsCountFamily(sup.Unit) || looksReusableByName(sup.Name)
		if !reusable || !countish {
			continue
		}

		// Batch başına adet yoksa batch başına 1 varsayılır
		per := 1.0
		if it.PerChild != nil {
			per = *it.PerChild
		}
		qty := int(math.Round(per * float64(batches)))
		if qty <= 0 {
			continue
		}

		if err := incrementPending(g.UserID, sup.ID, qty, sup.Name, sup.Unit, g.ID); err != nil {
			return EnqueueResult{Enqueued: enqueued}, err
		}
		enqueued += qty
	}

	if enqueued > 0 {
		now := time.Now()
		err := database.DB.Model(g).Updates(map[string]interface{}{
			"clean_gate":      models.CleanGateEnqueued,
			"clean_queued_at": now,
		}).Error
		if err != nil {
			return EnqueueResult{Enqueued: enqueued}, err
		}
		g.CleanGate = models.CleanGateEnqueued
		g.CleanQueuedAt = &now
		return EnqueueResult{Enqueued: enqueued, Stamped: true}, nil
	}

	// Hiçbir şey eklenmediyse kapı açık kalır; tarif sonradan düzeltilirse
	// enqueue tekrar denenebilir
	return EnqueueResult{Enqueued: enqueued}, nil
}

// EnqueueForGrow: Arşivlenmiş bir yetiştirmenin kaplarını kuyruğa ekler.
// İdempotans kapısı diğer her mantıktan ÖNCE kontrol edilir: aynı yetiştirme
// için tekrarlanan veya eşzamanlı çağrılar sayacı iki kez artıramaz.
func EnqueueForGrow(userID, growID uint) (EnqueueResult, error) {
	var g models.Grow
	err := database.DB.First(&g, "id = ? AND user_id = ?", growID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EnqueueResult{}, nil
	}
	if err != nil {
		return EnqueueResult{}, err
	}

	if g.CleanGate == models.CleanGateEnqueued {
		return EnqueueResult{Stamped: true}, nil
	}
	if !g.Archived {
		return EnqueueResult{}, nil
	}

	return enqueueGrow(&g)
}

// CleanReturn: Operatörün temizleyip iade ettiği adetleri stoka geri alır,
// kalanı imha sayar. Stok artışı, sayacın TAMAMEN boşalması ve her iki denetim
// kaydı tek transaction içinde yazılır; arada çökme yarım durum bırakamaz.
func CleanReturn(userID, supplyID uint, returnedQty int) (CleanReturnResult, error) {
	var result CleanReturnResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.CleanQueueEntry
		if err := database.LockForUpdate(tx).First(&entry, "user_id = ? AND supply_id = ?", userID, supplyID).Error; err != nil {
			return err
		}

		pending := entry.Pending
		if returnedQty < 0 || returnedQty > pending {
			return ErrInvalidReturn
		}
		destroyed := pending - returnedQty

		var sup models.Supply
		if err := database.LockForUpdate(tx).First(&sup, "id = ? AND user_id = ?", supplyID, userID).Error; err != nil {
			return err
		}

		if returnedQty > 0 {
			sup.Quantity += float64(returnedQty)
			if err := tx.Model(&sup).Update("quantity", sup.Quantity).Error; err != nil {
				return err
			}

			rec := audit.NewRecord(userID, sup.ID, models.SupplyAuditCleanReturn, float64(returnedQty), sup.Unit, nil)
			rec.Note = "Temizlenip stoka döndü"
			if err := audit.Write(tx, &rec); err != nil {
				return err
			}
		}

		// İade edilen de imha edilen de kuyruktan çıkar
		if err := tx.Model(&entry).Update("pending", 0).Error; err != nil {
			return err
		}

		if destroyed > 0 {
			rec := audit.NewRecord(userID, sup.ID, models.SupplyAuditCleanDestroyed, float64(destroyed), sup.Unit, nil)
			rec.Note = "Temizlik sonrası imha"
			if err := audit.Write(tx, &rec); err != nil {
				return err
			}
		}

		result = CleanReturnResult{Returned: returnedQty, Destroyed: destroyed}
		return nil
	})

	return result, err
}

// ScanBackfill: Tüm yetiştirmeleri tarar; arşivlenmiş ama kapısı mühürlenmemiş
// olanlar için enqueue mantığını yeniden çalıştırır. Tekrar tekrar çalıştırmak
// güvenlidir; kapısı mühürlü yetiştirmelere asla dokunmaz.
func ScanBackfill(userID uint) (ScanResult, error) {
	var grows []models.Grow
	if err := database.DB.Where("user_id = ?", userID).Find(&grows).Error; err != nil {
		return ScanResult{}, err
	}

	res := ScanResult{}
	for i := range grows {
		g := &grows[i]
		res.Scanned++

		if !g.Archived {
			continue
		}
		if g.CleanGate == models.CleanGateEnqueued {
			continue
		}

		er, err := enqueueGrow(g)
		if err != nil {
			// Tek yetiştirmenin hatası taramanın kalanını durdurmaz
			log.Printf("[clean-queue] grow %d enqueue hatası: %v", g.ID, err)
			continue
		}
		res.EnqueuedCount += er.Enqueued
		if er.Stamped {
			res.AffectedGrows++
		}
	}

	log.Printf("[clean-queue] tarama: %d yetiştirme, %d adet eklendi, %d yetiştirme mühürlendi",
		res.Scanned, res.EnqueuedCount, res.AffectedGrows)

	return res, nil
}

// ResetGate: Kapıyı açık konuma döndürür. Sadece bilinçli operatör müdahalesi
// içindir; yeniden enqueue çift sayıma yol açabilir.
func ResetGate(userID, growID uint) error {
	res := database.DB.Model(&models.Grow{}).
		Where("id = ? AND user_id = ?", growID, userID).
		Updates(map[string]interface{}{
			"clean_gate":      models.CleanGateUngated,
			"clean_queued_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
