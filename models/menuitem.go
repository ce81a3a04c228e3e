package models

import "time"

type MenuItem struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	RestaurantID   uint    `json:"restaurant_id" gorm:"not null;index"`
	CategoryID     uint    `json:"category_id" gorm:"not null;index"`
	Name           string  `json:"name" gorm:"not null"`
	NameAlt        string  `json:"name_alt"`
	Description    string  `json:"description"`
	DescriptionAlt string  `json:"description_alt"`
	Price          float64 `json:"price" gorm:"not null"`
	Available      bool    `json:"available" gorm:"default:true"`
	Vegetarian     bool    `json:"vegetarian" gorm:"default:false"`
	Vegan          bool    `json:"vegan" gorm:"default:false"`
	Spicy          bool    `json:"spicy" gorm:"default:false"`
	Allergens      string  `json:"allergens"`   // comma-joined
	Ingredients    string  `json:"ingredients"` // comma-joined
	SortOrder      int     `json:"sort_order" gorm:"default:0"`
	ImageURL       string  `json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
