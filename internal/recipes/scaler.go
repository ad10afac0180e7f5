// Package recipes: Tarif ölçekleme ve ihtiyaç hesabı + tarif CRUD endpointleri.
package recipes

import (
	"math"

	"mantar-backend/internal/models"
	"mantar-backend/internal/units"
)

// Need: Bir tarif satırının ölçeklenmiş malzeme ihtiyacı.
type Need struct {
	SupplyID uint    `json:"supply_id"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

// ComputeScale: Tarifin beyan edilmiş verimi ile istenen batch büyüklüğünden
// ölçek katsayısını hesaplar.
//
//   - Verim beyan edilmemişse (yieldQty <= 0): scale = batchCount.
//   - Batch başına fiziksel miktar verilmiş VE birimi tarifin verim birimiyle
//     aynı kanonik birime düşüyorsa: scale = perChildQty*batchCount/yieldQty
//     (çağıran batch sayısı yerine çıktı hacmi/kütlesiyle ölçekliyor demektir).
//   - Aksi hâlde: scale = batchCount / yieldQty.
func ComputeScale(r *models.Recipe, batchCount int, perChildQty *float64, perChildUnit string) float64 {
	bc := batchCount
	if bc < 1 {
		bc = 1
	}

	if r.YieldQty <= 0 {
		return float64(bc)
	}

	if perChildQty != nil && perChildUnit != "" && r.YieldUnit != "" &&
		units.Canonical(perChildUnit) == units.Canonical(r.YieldUnit) {
		return (*perChildQty * float64(bc)) / r.YieldQty
	}

	return float64(bc) / r.YieldQty
}

// RoundForUnit: Sayılabilir birimlerde tavana yuvarlar (yarım kavanoz tüketilmez),
// diğer birimlerde tam hassasiyeti korur; her iki durumda da sonuç >= 0.
func RoundForUnit(v float64, unit string) float64 {
	if v < 0 {
		v = 0
	}
	if units.IsCountFamily(unit) {
		return math.Ceil(v)
	}
	return v
}

// ComputeNeeds: Her kullanılabilir tarif satırı için gereken miktarı hesaplar.
// Tedarik referansı olmayan veya miktarı pozitif olmayan satırlar atlanır;
// kullanılabilir satırı olmayan tarif boş liste üretir, hata değil.
func ComputeNeeds(r *models.Recipe, scale float64) []Need {
	needs := make([]Need, 0, len(r.Items))
	for _, line := range r.Items {
		if line.SupplyID == 0 || line.Amount <= 0 {
			continue
		}
		amt := RoundForUnit(line.Amount*scale, line.Unit)
		if amt <= 0 {
			continue
		}
		needs = append(needs, Need{
			SupplyID: line.SupplyID,
			Amount:   amt,
			Unit:     line.Unit,
		})
	}
	return needs
}
