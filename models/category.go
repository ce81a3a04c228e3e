package models

import "time"

// Category is one node of a restaurant's menu tree. A category with a
// null ParentID is a root; the parent chain must stay acyclic, which is
// enforced in the handlers (the database carries no such constraint).
type Category struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	RestaurantID uint   `json:"restaurant_id" gorm:"not null;index;uniqueIndex:idx_category_slug"`
	Name         string `json:"name" gorm:"not null"`
	NameAlt      string `json:"name_alt"`
	Slug         string `json:"slug" gorm:"not null;uniqueIndex:idx_category_slug"`
	SortOrder    int    `json:"sort_order" gorm:"default:0"`
	ParentID     *uint  `json:"parent_id"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Visible      bool   `json:"visible" gorm:"default:true"`

	Items     []MenuItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
