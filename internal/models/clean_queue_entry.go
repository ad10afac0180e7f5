package models

import "time"

// CleanQueueEntry: Yeniden kullanılabilir bir tedarik için temizlik bekleyen adet
// sayacı. Pending sadece enqueue artışı veya transactional return/destroy düşüşüyle
// değişir; asla negatif olmaz.
type CleanQueueEntry struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_clean_queue_user_supply" json:"user_id"`
	SupplyID uint `gorm:"not null;uniqueIndex:idx_clean_queue_user_supply" json:"supply_id"`

	Pending int `gorm:"not null;default:0" json:"pending"`

	// Görüntüleme için denormalize edilmiş tedarik bilgisi
	Name string `gorm:"size:100" json:"name"`
	Unit string `gorm:"size:20" json:"unit"`

	LastGrowID *uint `json:"last_grow_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
