package models

import (
	"time"

	"gorm.io/gorm"
)

type SupplyCategory string

const (
	SupplyCategorySubstrate  SupplyCategory = "substrate"
	SupplyCategoryContainer  SupplyCategory = "container"
	SupplyCategoryTool       SupplyCategory = "tool"
	SupplyCategorySupplement SupplyCategory = "supplement"
	SupplyCategoryLabor      SupplyCategory = "labor"
)

// Supply: Tüketilebilir veya yeniden kullanılabilir malzeme kaydı.
// Cost son alımdan türetilen KİLİTLİ birim maliyettir; sadece reprice ile değişir.
type Supply struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	UserID   uint           `gorm:"index;not null" json:"user_id"`
	Name     string         `gorm:"size:100;not null" json:"name"`
	Category SupplyCategory `gorm:"size:20;index" json:"category"`
	Unit     string         `gorm:"size:20;not null" json:"unit"`
	Quantity float64        `gorm:"not null;default:0" json:"quantity"` // eldeki miktar, asla negatif olmaz
	Cost     float64        `gorm:"not null;default:0" json:"cost"`     // kilitli birim maliyet

	LowStockThreshold float64 `json:"low_stock_threshold"`
	ReorderLink       string  `gorm:"size:255" json:"reorder_link"`

	// Son alım bilgisi (kilitli maliyeti yeniden türetmek için)
	LastPurchaseTotal float64 `json:"last_purchase_total"`
	LastPurchaseQty   float64 `json:"last_purchase_qty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // soft delete: denetim kayıtları kalır
}
