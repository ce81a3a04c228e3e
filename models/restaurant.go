package models

import "time"

type Restaurant struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	OwnerID uint    `json:"owner_id" gorm:"not null;index"`
	Owner   Account `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name    string  `json:"name" gorm:"not null"`
	Slug    string  `json:"slug" gorm:"uniqueIndex;not null"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Active  bool    `json:"active" gorm:"default:true"`

	// Settings
	Currency    string  `json:"currency" gorm:"default:'MKD'"`
	Timezone    string  `json:"timezone" gorm:"default:'Europe/Skopje'"`
	OrderPrefix string  `json:"order_prefix" gorm:"default:'ORD'"`
	TaxRate     float64 `json:"tax_rate" gorm:"default:0"`
	DineIn      bool    `json:"dine_in" gorm:"default:true"`
	Takeaway    bool    `json:"takeaway" gorm:"default:true"`
	Theme       string  `json:"theme" gorm:"default:'classic'"`

	// Counters bumped on public menu reads / QR scans
	Views uint64 `json:"views" gorm:"default:0"`
	Scans uint64 `json:"scans" gorm:"default:0"`

	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:RestaurantID"`
	MenuItems  []MenuItem `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
