// Package supplies: Tedarik defteri. Her mutasyon tek tedarik satırına karşı
// transactional read-modify-write olarak çalışır ve bir denetim kaydı düşer.
package supplies

import (
	"errors"

	"mantar-backend/internal/audit"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount = errors.New("miktar geçersiz")
	ErrNotFound      = gorm.ErrRecordNotFound
)

// MutationContext: Tüketim/iadenin hangi tarif ve yetiştirmeden kaynaklandığı.
type MutationContext struct {
	RecipeID   *uint
	RecipeName string
	GrowID     *uint
	Note       string
}

func lockSupply(tx *gorm.DB, userID, supplyID uint) (*models.Supply, error) {
	var s models.Supply
	err := database.LockForUpdate(tx).
		First(&s, "id = ? AND user_id = ?", supplyID, userID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Restock: Eldeki miktarı artırır. amount > 0 olmalı.
func Restock(userID, supplyID uint, amount float64, note string) (*models.Supply, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var out *models.Supply
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, userID, supplyID)
		if err != nil {
			return err
		}

		s.Quantity += amount
		if err := tx.Model(s).Update("quantity", s.Quantity).Error; err != nil {
			return err
		}

		rec := audit.NewRecord(userID, s.ID, models.SupplyAuditRestock, amount, s.Unit, nil)
		rec.Note = note
		if err := audit.Write(tx, &rec); err != nil {
			return err
		}

		out = s
		return nil
	})
	return out, err
}

// Consume: Eldeki miktardan düşer, sıfırda kelepçeler. O anki KİLİTLİ birim
// maliyet denetim kaydına işlenir; tedarik sonradan yeniden fiyatlansa bile
// kayıt değişmez. amount 0 ise no-op.
func Consume(userID, supplyID uint, amount float64, mctx MutationContext) (*models.Supply, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if amount == 0 {
		return nil, nil
	}

	var out *models.Supply
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, userID, supplyID)
		if err != nil {
			return err
		}

		next := s.Quantity - amount
		if next < 0 {
			next = 0
		}
		s.Quantity = next
		if err := tx.Model(s).Update("quantity", s.Quantity).Error; err != nil {
			return err
		}

		cost := s.Cost
		rec := audit.NewRecord(userID, s.ID, models.SupplyAuditConsume, amount, s.Unit, &cost)
		rec.RecipeID = mctx.RecipeID
		rec.RecipeName = mctx.RecipeName
		rec.GrowID = mctx.GrowID
		rec.Note = mctx.Note
		if err := audit.Write(tx, &rec); err != nil {
			return err
		}

		out = s
		return nil
	})
	return out, err
}

// Refund: Consume'un tersi; sadece reconciliation tarafından kullanılır,
// kullanıcıya açık bir "geri al" değildir.
func Refund(userID, supplyID uint, amount float64, mctx MutationContext) (*models.Supply, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if amount == 0 {
		return nil, nil
	}

	var out *models.Supply
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, userID, supplyID)
		if err != nil {
			return err
		}

		s.Quantity += amount
		if err := tx.Model(s).Update("quantity", s.Quantity).Error; err != nil {
			return err
		}

		cost := s.Cost
		rec := audit.NewRecord(userID, s.ID, models.SupplyAuditReconcileRefund, amount, s.Unit, &cost)
		rec.RecipeID = mctx.RecipeID
		rec.RecipeName = mctx.RecipeName
		rec.GrowID = mctx.GrowID
		rec.Note = mctx.Note
		if err := audit.Write(tx, &rec); err != nil {
			return err
		}

		out = s
		return nil
	})
	return out, err
}

// Reprice: Kilitli birim maliyeti yeni (toplam fiyat, alınan miktar) çiftinden
// yeniden türetir. Birim maliyetin değişebildiği TEK yol budur.
func Reprice(userID, supplyID uint, totalPrice, purchasedQty float64) (*models.Supply, error) {
	if totalPrice < 0 || purchasedQty < 0 {
		return nil, ErrInvalidAmount
	}

	unitCost := totalPrice
	if purchasedQty > 0 {
		unitCost = totalPrice / purchasedQty
	}

	var out *models.Supply
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, userID, supplyID)
		if err != nil {
			return err
		}

		s.Cost = unitCost
		s.LastPurchaseTotal = totalPrice
		s.LastPurchaseQty = purchasedQty
		err = tx.Model(s).Updates(map[string]interface{}{
			"cost":                unitCost,
			"last_purchase_total": totalPrice,
			"last_purchase_qty":   purchasedQty,
		}).Error
		if err != nil {
			return err
		}

		rec := audit.NewRecord(userID, s.ID, models.SupplyAuditEdit, purchasedQty, s.Unit, &unitCost)
		rec.Note = "Birim maliyet yeniden türetildi"
		if err := audit.Write(tx, &rec); err != nil {
			return err
		}

		out = s
		return nil
	})
	return out, err
}

// SoftDelete: Tedariği aktif listeden çıkarır; denetim kayıtları silinmez.
func SoftDelete(userID, supplyID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, userID, supplyID)
		if err != nil {
			return err
		}

		if err := tx.Delete(s).Error; err != nil {
			return err
		}

		rec := audit.NewRecord(userID, s.ID, models.SupplyAuditDelete, 0, s.Unit, nil)
		rec.Note = "Tedarik silindi: " + s.Name
		return audit.Write(tx, &rec)
	})
}
