package models

import "time"

// Recipe: Ölçeklenebilir malzeme listesi + opsiyonel beyan edilmiş verim.
// Item miktarları "bir verim birimi başına"dır (verim yoksa bir batch başına).
type Recipe struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Name   string `gorm:"size:100;not null" json:"name"`

	YieldQty  float64 `json:"yield_qty"` // 0 ise verim beyan edilmemiş
	YieldUnit string  `gorm:"size:20" json:"yield_unit"`

	Items []RecipeItem `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RecipeItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	RecipeID uint `gorm:"index;not null" json:"recipe_id"`
	SupplyID uint `gorm:"index;not null" json:"supply_id"`

	Amount float64 `gorm:"not null" json:"amount"` // bir verim birimi başına miktar
	Unit   string  `gorm:"size:20" json:"unit"`

	// Yeniden kullanılabilir kalemler için batch başına adet (kap, kavanoz vs.)
	PerChild *float64 `json:"per_child"`
}
