package models

import "time"

type SupplyAuditAction string

const (
	SupplyAuditAdd             SupplyAuditAction = "add"
	SupplyAuditRestock         SupplyAuditAction = "restock"
	SupplyAuditConsume         SupplyAuditAction = "consume"
	SupplyAuditReconcileRefund SupplyAuditAction = "reconcile_refund"
	SupplyAuditEdit            SupplyAuditAction = "edit"
	SupplyAuditDelete          SupplyAuditAction = "delete"
	SupplyAuditCleanReturn     SupplyAuditAction = "clean_return"
	SupplyAuditCleanDestroyed  SupplyAuditAction = "clean_destroyed"
)

// SupplyAudit: Append-only denetim kaydı. Normal işleyişte asla güncellenmez
// veya silinmez; tedarik silinse bile kayıtları kalır.
type SupplyAudit struct {
	ID       uint              `gorm:"primaryKey" json:"id"`
	UserID   uint              `gorm:"index;not null" json:"user_id"`
	SupplyID uint              `gorm:"index;not null" json:"supply_id"`
	Action   SupplyAuditAction `gorm:"size:20;index" json:"action"`
	Amount   float64           `json:"amount"`
	Unit     string            `gorm:"size:20" json:"unit"`

	// İşlem anında kilitli olan birim maliyet (tedarik sonradan yeniden
	// fiyatlansa bile bu kayıt değişmez)
	UnitCostApplied  *float64 `json:"unit_cost_applied"`
	TotalCostApplied *float64 `json:"total_cost_applied"`

	RecipeID   *uint  `json:"recipe_id"`
	RecipeName string `gorm:"size:100" json:"recipe_name"`
	GrowID     *uint  `json:"grow_id"`

	Note      string    `gorm:"size:255" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
