package models

import "time"

// CleanQueueGate: Bir yetiştirmenin temizlik kuyruğuna bir kez mi eklendiğini tutan
// tek atımlık kapı. ungated → enqueued geçişi en fazla bir kez olur; geri dönüş
// sadece operatörün açık reset işlemiyle mümkündür.
type CleanQueueGate string

const (
	CleanGateUngated  CleanQueueGate = "ungated"
	CleanGateEnqueued CleanQueueGate = "enqueued"
)

// Grow: Tek bir yetiştirme denemesi. Tarif tüketimini ve arşivlendiğinde temizlik
// kuyruğu tetiklemesini bu kayıt sürükler.
type Grow struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Name   string `gorm:"size:100;not null" json:"name"`

	RecipeID *uint `gorm:"index" json:"recipe_id"`

	BatchCount   int      `gorm:"not null;default:1" json:"batch_count"`
	PerChildQty  *float64 `json:"per_child_qty"` // batch başına fiziksel çıktı (ör: 2 liter)
	PerChildUnit string   `gorm:"size:20" json:"per_child_unit"`

	Stage string `gorm:"size:30" json:"stage"` // dış yaşam döngüsü; burada sadece arşiv geçişi önemli

	Archived   bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at"`

	CleanGate     CleanQueueGate `gorm:"size:10;not null;default:'ungated'" json:"clean_gate"`
	CleanQueuedAt *time.Time     `json:"clean_queued_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
