// Package reconcile: Bir yetiştirmenin tarif ataması sonradan değiştiğinde eski
// tarifin tüketimini iade eder, yeni tarifin tüketimini uygular.
package reconcile

import (
	"errors"

	"mantar-backend/internal/database"
	"mantar-backend/internal/models"
	"mantar-backend/internal/recipes"
	"mantar-backend/internal/supplies"
	"mantar-backend/internal/units"

	"gorm.io/gorm"
)

// RecipeParams: Reconciliation'ın bir yarısının (eski veya yeni) girdileri.
type RecipeParams struct {
	RecipeID     uint
	BatchCount   int
	PerChildQty  *float64
	PerChildUnit string
}

func fetchRecipe(userID, recipeID uint) (*models.Recipe, error) {
	var r models.Recipe
	err := database.DB.Preload("Items").
		First(&r, "id = ? AND user_id = ?", recipeID, userID).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// applyHalf: Tek yarıyı uygular. Kayıp tarif veya tedarik satırı no-op'tur;
// depolama hataları yukarı taşınır ama tamamlanmış satırlar geri alınmaz —
// gerçekte ne olduğunun kaynağı denetim kayıtlarıdır.
func applyHalf(userID uint, growID *uint, p *RecipeParams, refund bool) error {
	if p == nil || p.RecipeID == 0 {
		return nil
	}

	r, err := fetchRecipe(userID, p.RecipeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	scale := recipes.ComputeScale(r, p.BatchCount, p.PerChildQty, p.PerChildUnit)
	needs := recipes.ComputeNeeds(r, scale)

	// Satır birimi ile stok birimi farklı olabilir (kg satırı, g stok);
	// miktar defter çağrısından önce stok birimine çevrilir
	stockUnits := make(map[uint]string, len(needs))
	for _, need := range needs {
		var sup models.Supply
		err := database.DB.Select("id", "unit").
			First(&sup, "id = ? AND user_id = ?", need.SupplyID, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		stockUnits[sup.ID] = sup.Unit
	}

	for _, need := range needs {
		unit, ok := stockUnits[need.SupplyID]
		if !ok {
			continue
		}
		amount := units.Convert(need.Amount, need.Unit, unit)

		mctx := supplies.MutationContext{
			RecipeID:   &r.ID,
			RecipeName: r.Name,
			GrowID:     growID,
		}

		if refund {
			_, err = supplies.Refund(userID, need.SupplyID, amount, mctx)
		} else {
			_, err = supplies.Consume(userID, need.SupplyID, amount, mctx)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ReconcileRecipeChange: Önce eski tarifin ihtiyaçları iade edilir, sonra yeni
// tarifinkiler tüketilir. İki yarı bağımsızdır: sadece eski (tarif kaldırılıyor)
// veya sadece yeni (ilk atama) verilebilir.
func ReconcileRecipeChange(userID uint, growID *uint, oldParams, newParams *RecipeParams) error {
	if err := applyHalf(userID, growID, oldParams, true); err != nil {
		return err
	}
	return applyHalf(userID, growID, newParams, false)
}
