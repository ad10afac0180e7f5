package supplies

import (
	"testing"

	"mantar-backend/internal/audit"
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

func createSupply(t *testing.T, s models.Supply) models.Supply {
	t.Helper()
	require.NoError(t, database.DB.Create(&s).Error)
	return s
}

func auditsFor(t *testing.T, userID, supplyID uint) []models.SupplyAudit {
	t.Helper()
	var logs []models.SupplyAudit
	require.NoError(t, database.DB.
		Where("user_id = ? AND supply_id = ?", userID, supplyID).
		Order("id ASC").Find(&logs).Error)
	return logs
}

func TestRestock(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Tohum", Unit: "g", Quantity: 100})

	out, err := Restock(1, s.ID, 50, "")
	require.NoError(t, err)
	assert.Equal(t, 150.0, out.Quantity)

	logs := auditsFor(t, 1, s.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SupplyAuditRestock, logs[0].Action)
	assert.Equal(t, 50.0, logs[0].Amount)
}

func TestRestockValidation(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Tohum", Unit: "g", Quantity: 100})

	_, err := Restock(1, s.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Restock(1, s.ID, -5, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// mutasyon olmadı
	var check models.Supply
	require.NoError(t, database.DB.First(&check, s.ID).Error)
	assert.Equal(t, 100.0, check.Quantity)
	assert.Empty(t, auditsFor(t, 1, s.ID))
}

// Senaryo: 1000 g tahıl, kilitli maliyet 0.01/g, 600 g tüketim
func TestConsumeCapturesLockedCost(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 1000, Cost: 0.01})

	out, err := Consume(1, s.ID, 600, MutationContext{RecipeName: "Standard Grain"})
	require.NoError(t, err)
	assert.Equal(t, 400.0, out.Quantity)

	logs := auditsFor(t, 1, s.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SupplyAuditConsume, logs[0].Action)
	assert.Equal(t, 600.0, logs[0].Amount)
	require.NotNil(t, logs[0].UnitCostApplied)
	assert.InDelta(t, 0.01, *logs[0].UnitCostApplied, 1e-9)
	require.NotNil(t, logs[0].TotalCostApplied)
	assert.InDelta(t, 6.00, *logs[0].TotalCostApplied, 1e-9)
	assert.Equal(t, "Standard Grain", logs[0].RecipeName)
}

// Eldekinden fazla tüketim sıfıra kelepçelenir, asla negatif olmaz
func TestConsumeClampsAtZero(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 100})

	out, err := Consume(1, s.ID, 70, MutationContext{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, out.Quantity)

	out, err = Consume(1, s.ID, 70, MutationContext{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Quantity)

	out, err = Consume(1, s.ID, 70, MutationContext{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Quantity)
}

func TestConsumeZeroIsNoop(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 100})

	out, err := Consume(1, s.ID, 0, MutationContext{})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Empty(t, auditsFor(t, 1, s.ID))
}

// Tüketimdeki maliyet o anki kilitli değerdir; sonradan reprice kayıtları değiştirmez
func TestRepriceDoesNotRewriteHistory(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 1000, Cost: 0.01})

	_, err := Consume(1, s.ID, 100, MutationContext{})
	require.NoError(t, err)

	out, err := Reprice(1, s.ID, 50, 1000) // yeni birim maliyet 0.05
	require.NoError(t, err)
	assert.InDelta(t, 0.05, out.Cost, 1e-9)
	assert.Equal(t, 50.0, out.LastPurchaseTotal)
	assert.Equal(t, 1000.0, out.LastPurchaseQty)

	_, err = Consume(1, s.ID, 100, MutationContext{})
	require.NoError(t, err)

	logs := auditsFor(t, 1, s.ID)
	var consumes []models.SupplyAudit
	for _, l := range logs {
		if l.Action == models.SupplyAuditConsume {
			consumes = append(consumes, l)
		}
	}
	require.Len(t, consumes, 2)
	assert.InDelta(t, 0.01, *consumes[0].UnitCostApplied, 1e-9)
	assert.InDelta(t, 0.05, *consumes[1].UnitCostApplied, 1e-9)
}

func TestRepriceZeroQty(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "İşçilik", Unit: "hour", Quantity: 0})

	// miktar 0 ise birim maliyet toplam fiyatın kendisidir
	out, err := Reprice(1, s.ID, 25, 0)
	require.NoError(t, err)
	assert.InDelta(t, 25, out.Cost, 1e-9)
}

func TestRefund(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 400, Cost: 0.01})

	out, err := Refund(1, s.ID, 600, MutationContext{})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, out.Quantity)

	logs := auditsFor(t, 1, s.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SupplyAuditReconcileRefund, logs[0].Action)
}

func TestSoftDeleteKeepsAudits(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 100})
	_, err := Consume(1, s.ID, 10, MutationContext{})
	require.NoError(t, err)

	require.NoError(t, SoftDelete(1, s.ID))

	// aktif listeden düştü
	var check models.Supply
	err = database.DB.First(&check, s.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// denetim kayıtları duruyor: consume + delete
	logs := auditsFor(t, 1, s.ID)
	require.Len(t, logs, 2)
	assert.Equal(t, models.SupplyAuditDelete, logs[1].Action)
}

func TestTenantIsolation(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 100})

	// başka kullanıcı bu tedariğe dokunamaz
	_, err := Restock(2, s.ID, 10, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Denetim akışını oynatmak eldeki miktarı yeniden üretir (tutarlılık orakl'ı)
func TestAuditReplayMatchesQuantity(t *testing.T) {
	setupTestDB(t)
	s := createSupply(t, models.Supply{UserID: 1, Name: "Grain", Unit: "g", Quantity: 0})

	rec := audit.NewRecord(1, s.ID, models.SupplyAuditAdd, 0, "g", nil)
	require.NoError(t, audit.Write(database.DB, &rec))

	_, err := Restock(1, s.ID, 500, "")
	require.NoError(t, err)
	_, err = Consume(1, s.ID, 120, MutationContext{})
	require.NoError(t, err)
	_, err = Refund(1, s.ID, 20, MutationContext{})
	require.NoError(t, err)
	_, err = Consume(1, s.ID, 1000, MutationContext{}) // kelepçelenir
	require.NoError(t, err)
	_, err = Restock(1, s.ID, 75, "")
	require.NoError(t, err)

	var check models.Supply
	require.NoError(t, database.DB.First(&check, s.ID).Error)

	replayed, err := audit.ReplayQuantity(database.DB, 1, s.ID)
	require.NoError(t, err)
	assert.InDelta(t, check.Quantity, replayed, 1e-9)
}
