package recipes

import (
	"testing"

	"mantar-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestComputeScaleNoYield(t *testing.T) {
	r := &models.Recipe{YieldQty: 0}
	assert.Equal(t, 3.0, ComputeScale(r, 3, nil, ""))
	// batchCount en az 1 sayılır
	assert.Equal(t, 1.0, ComputeScale(r, 0, nil, ""))
}

func TestComputeScaleWithYield(t *testing.T) {
	r := &models.Recipe{YieldQty: 4, YieldUnit: "liter"}
	assert.InDelta(t, 0.75, ComputeScale(r, 3, nil, ""), 1e-9)
}

func TestComputeScalePerChildMatchingUnit(t *testing.T) {
	r := &models.Recipe{YieldQty: 4, YieldUnit: "liter"}
	// birim kanonik olarak eşleşiyor ("l" → "liter"): fiziksel çıktıyla ölçekle
	scale := ComputeScale(r, 3, floatPtr(2), "l")
	assert.InDelta(t, 1.5, scale, 1e-9) // 2*3/4

	// birim eşleşmiyor: batch sayısıyla ölçekle
	scale = ComputeScale(r, 3, floatPtr(2), "g")
	assert.InDelta(t, 0.75, scale, 1e-9)
}

// Verimli tarifte batch sayısını ikiye katlamak ihtiyacı ikiye katlar
func TestScalingMonotonicity(t *testing.T) {
	r := &models.Recipe{
		YieldQty:  2,
		YieldUnit: "jar",
		Items: []models.RecipeItem{
			{SupplyID: 1, Amount: 150, Unit: "g"},
		},
	}

	n1 := ComputeNeeds(r, ComputeScale(r, 2, nil, ""))
	n2 := ComputeNeeds(r, ComputeScale(r, 4, nil, ""))
	assert.InDelta(t, n1[0].Amount*2, n2[0].Amount, 1e-9)
}

func TestRoundForUnit(t *testing.T) {
	// sayılabilir birimler tavana yuvarlanır, asla eksik kalmaz
	assert.Equal(t, 3.0, RoundForUnit(2.3, "count"))
	assert.Equal(t, 3.0, RoundForUnit(2.01, "jar"))
	assert.Equal(t, 2.0, RoundForUnit(2.0, "count"))
	// diğerleri tam hassasiyet
	assert.InDelta(t, 1.3, RoundForUnit(1.3, "g"), 1e-9)
	// negatif sıfıra kelepçelenir
	assert.Equal(t, 0.0, RoundForUnit(-4, "g"))
	assert.Equal(t, 0.0, RoundForUnit(-0.5, "count"))
}

func TestComputeNeedsSkipsUnusableLines(t *testing.T) {
	r := &models.Recipe{
		YieldQty: 1,
		Items: []models.RecipeItem{
			{SupplyID: 0, Amount: 100, Unit: "g"}, // tedarik referansı yok
			{SupplyID: 2, Amount: 0, Unit: "g"},   // miktar pozitif değil
			{SupplyID: 3, Amount: -5, Unit: "g"},
		},
	}
	assert.Empty(t, ComputeNeeds(r, 2))
}

func TestComputeNeedsMixedUnits(t *testing.T) {
	r := &models.Recipe{
		YieldQty:  1,
		YieldUnit: "jar",
		Items: []models.RecipeItem{
			{SupplyID: 1, Amount: 200, Unit: "g"},
			{SupplyID: 2, Amount: 0.7, Unit: "count"},
		},
	}

	needs := ComputeNeeds(r, 3)
	assert.Len(t, needs, 2)
	assert.InDelta(t, 600, needs[0].Amount, 1e-9)
	assert.Equal(t, 3.0, needs[1].Amount) // ceil(2.1)
}
