package reconcile

import (
	"testing"

	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // :memory: tek bağlantıda yaşar
	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func createSupply(t *testing.T, name, unit string, qty, cost float64) models.Supply {
	t.Helper()
	s := models.Supply{UserID: 1, Name: name, Category: models.SupplyCategorySubstrate, Unit: unit, Quantity: qty, Cost: cost}
	require.NoError(t, database.DB.Create(&s).Error)
	return s
}

func createRecipe(t *testing.T, name string, items ...models.RecipeItem) models.Recipe {
	t.Helper()
	r := models.Recipe{UserID: 1, Name: name, YieldQty: 1, YieldUnit: "jar"}
	require.NoError(t, database.DB.Create(&r).Error)
	for i := range items {
		items[i].RecipeID = r.ID
		require.NoError(t, database.DB.Create(&items[i]).Error)
	}
	return r
}

func quantityOf(t *testing.T, supplyID uint) float64 {
	t.Helper()
	var s models.Supply
	require.NoError(t, database.DB.First(&s, supplyID).Error)
	return s.Quantity
}

func TestConsumeOnlyHalf(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)
	r := createRecipe(t, "Temel", models.RecipeItem{SupplyID: grain.ID, Amount: 200, Unit: "g"})

	err := ReconcileRecipeChange(1, nil, nil, &RecipeParams{RecipeID: r.ID, BatchCount: 3})
	require.NoError(t, err)
	assert.InDelta(t, 400, quantityOf(t, grain.ID), 1e-9)
}

func TestRefundOnlyHalf(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 400, 0.01)
	r := createRecipe(t, "Temel", models.RecipeItem{SupplyID: grain.ID, Amount: 200, Unit: "g"})

	err := ReconcileRecipeChange(1, nil, &RecipeParams{RecipeID: r.ID, BatchCount: 3}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1000, quantityOf(t, grain.ID), 1e-9)
}

// Simetri: A tüket, A→B geçir, B→A geri dön; başlangıç stoklarına dönülür
func TestReconcileSymmetry(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)
	straw := createSupply(t, "Saman", "g", 2000, 0.002)

	ra := createRecipe(t, "A", models.RecipeItem{SupplyID: grain.ID, Amount: 100, Unit: "g"})
	rb := createRecipe(t, "B", models.RecipeItem{SupplyID: straw.ID, Amount: 250, Unit: "g"})

	pa := &RecipeParams{RecipeID: ra.ID, BatchCount: 2}
	pb := &RecipeParams{RecipeID: rb.ID, BatchCount: 2}

	require.NoError(t, ReconcileRecipeChange(1, nil, nil, pa))
	assert.InDelta(t, 800, quantityOf(t, grain.ID), 1e-9)

	require.NoError(t, ReconcileRecipeChange(1, nil, pa, pb))
	assert.InDelta(t, 1000, quantityOf(t, grain.ID), 1e-9)
	assert.InDelta(t, 1500, quantityOf(t, straw.ID), 1e-9)

	require.NoError(t, ReconcileRecipeChange(1, nil, pb, pa))
	assert.InDelta(t, 800, quantityOf(t, grain.ID), 1e-9)
	assert.InDelta(t, 2000, quantityOf(t, straw.ID), 1e-9)
}

func TestBatchCountChangeSameRecipe(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)
	r := createRecipe(t, "Temel", models.RecipeItem{SupplyID: grain.ID, Amount: 100, Unit: "g"})

	old := &RecipeParams{RecipeID: r.ID, BatchCount: 2}
	require.NoError(t, ReconcileRecipeChange(1, nil, nil, old)) // 800 kaldı

	updated := &RecipeParams{RecipeID: r.ID, BatchCount: 5}
	require.NoError(t, ReconcileRecipeChange(1, nil, old, updated))
	assert.InDelta(t, 500, quantityOf(t, grain.ID), 1e-9)
}

func TestMissingRecipeIsNoop(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)

	err := ReconcileRecipeChange(1, nil, nil, &RecipeParams{RecipeID: 999, BatchCount: 3})
	require.NoError(t, err)
	assert.InDelta(t, 1000, quantityOf(t, grain.ID), 1e-9)
}

func TestMissingSupplyLineSkipped(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)
	r := createRecipe(t, "Temel",
		models.RecipeItem{SupplyID: grain.ID, Amount: 100, Unit: "g"},
		models.RecipeItem{SupplyID: 9999, Amount: 50, Unit: "g"})

	err := ReconcileRecipeChange(1, nil, nil, &RecipeParams{RecipeID: r.ID, BatchCount: 1})
	require.NoError(t, err)
	assert.InDelta(t, 900, quantityOf(t, grain.ID), 1e-9)
}

// Tüketim denetim kaydı tarif ve yetiştirme bağlamını taşır
func TestMutationContextRecorded(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 1000, 0.01)
	r := createRecipe(t, "Temel", models.RecipeItem{SupplyID: grain.ID, Amount: 100, Unit: "g"})

	growID := uint(42)
	require.NoError(t, ReconcileRecipeChange(1, &growID, nil, &RecipeParams{RecipeID: r.ID, BatchCount: 1}))

	var logs []models.SupplyAudit
	require.NoError(t, database.DB.Where("supply_id = ? AND action = ?", grain.ID, models.SupplyAuditConsume).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].RecipeID)
	assert.Equal(t, r.ID, *logs[0].RecipeID)
	assert.Equal(t, "Temel", logs[0].RecipeName)
	require.NotNil(t, logs[0].GrowID)
	assert.Equal(t, growID, *logs[0].GrowID)
}

// Birim dönüşümü tüketime kadar taşınır: kg satırı g stoktan düşer
func TestUnitConversionThroughReconcile(t *testing.T) {
	setupTestDB(t)
	grain := createSupply(t, "Çavdar", "g", 5000, 0.01)
	r := createRecipe(t, "Kiloluk", models.RecipeItem{SupplyID: grain.ID, Amount: 1.5, Unit: "kg"})

	require.NoError(t, ReconcileRecipeChange(1, nil, nil, &RecipeParams{RecipeID: r.ID, BatchCount: 2}))
	assert.InDelta(t, 2000, quantityOf(t, grain.ID), 1e-9)
}
