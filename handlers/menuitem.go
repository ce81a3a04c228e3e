package handlers

import (
	"net/http"
	"strings"

	"qrmenu-api/middleware"
	"qrmenu-api/models"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

type CreateMenuItemRequest struct {
	Name           string   `json:"name" binding:"required"`
	NameAlt        string   `json:"name_alt"`
	Description    string   `json:"description"`
	DescriptionAlt string   `json:"description_alt"`
	Price          float64  `json:"price" binding:"required,gt=0"`
	CategoryID     uint     `json:"category_id" binding:"required"`
	Vegetarian     bool     `json:"vegetarian"`
	Vegan          bool     `json:"vegan"`
	Spicy          bool     `json:"spicy"`
	Allergens      []string `json:"allergens"`
	Ingredients    []string `json:"ingredients"`
}

func nextItemSortOrder(db *gorm.DB, categoryID uint) int {
	var max int
	db.Model(&models.MenuItem{}).Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(sort_order), 0)").Scan(&max)
	return max + 1
}

// CreateMenuItem adds an item under a category of the same restaurant
func CreateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var req CreateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// The category must belong to this restaurant
		var category models.Category
		if err := db.Where("id = ? AND restaurant_id = ?", req.CategoryID, restaurant.ID).
			First(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not belong to this restaurant"})
			return
		}

		item := models.MenuItem{
			RestaurantID:   restaurant.ID,
			CategoryID:     category.ID,
			Name:           req.Name,
			NameAlt:        req.NameAlt,
			Description:    req.Description,
			DescriptionAlt: req.DescriptionAlt,
			Price:          req.Price,
			Available:      true,
			Vegetarian:     req.Vegetarian,
			Vegan:          req.Vegan,
			Spicy:          req.Spicy,
			Allergens:      strings.Join(req.Allergens, ","),
			Ingredients:    strings.Join(req.Ingredients, ","),
			SortOrder:      nextItemSortOrder(db, category.ID),
		}
		if err := db.Create(&item).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
	}
}

// ListMenuItems returns the restaurant's items, optionally filtered by
// category.
func ListMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		query := db.Where("restaurant_id = ?", restaurant.ID)
		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}
		var items []models.MenuItem
		if err := query.Order("sort_order, id").Find(&items).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
	}
}

// GetMenuItem returns one owned item
func GetMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		item, err := ownedMenuItem(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": item})
	}
}

type UpdateMenuItemRequest struct {
	Name           *string   `json:"name"`
	NameAlt        *string   `json:"name_alt"`
	Description    *string   `json:"description"`
	DescriptionAlt *string   `json:"description_alt"`
	Price          *float64  `json:"price"`
	Available      *bool     `json:"available"`
	Vegetarian     *bool     `json:"vegetarian"`
	Vegan          *bool     `json:"vegan"`
	Spicy          *bool     `json:"spicy"`
	Allergens      *[]string `json:"allergens"`
	Ingredients    *[]string `json:"ingredients"`
	SortOrder      *int      `json:"sort_order"`
	CategoryID     *uint     `json:"category_id"`
}

// UpdateMenuItem applies a partial update; a wrong-typed field fails the
// bind and answers 400. Moving the item to another category verifies the
// target belongs to the same restaurant.
func UpdateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		item, err := ownedMenuItem(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}

		var req UpdateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := map[string]interface{}{}
		if req.Name != nil {
			update["name"] = *req.Name
		}
		if req.NameAlt != nil {
			update["name_alt"] = *req.NameAlt
		}
		if req.Description != nil {
			update["description"] = *req.Description
		}
		if req.DescriptionAlt != nil {
			update["description_alt"] = *req.DescriptionAlt
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
				return
			}
			update["price"] = *req.Price
		}
		if req.Available != nil {
			update["available"] = *req.Available
		}
		if req.Vegetarian != nil {
			update["vegetarian"] = *req.Vegetarian
		}
		if req.Vegan != nil {
			update["vegan"] = *req.Vegan
		}
		if req.Spicy != nil {
			update["spicy"] = *req.Spicy
		}
		if req.Allergens != nil {
			update["allergens"] = strings.Join(*req.Allergens, ",")
		}
		if req.Ingredients != nil {
			update["ingredients"] = strings.Join(*req.Ingredients, ",")
		}
		if req.SortOrder != nil {
			update["sort_order"] = *req.SortOrder
		}
		if req.CategoryID != nil {
			var category models.Category
			if err := db.Where("id = ? AND restaurant_id = ?", *req.CategoryID, restaurant.ID).
				First(&category).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not belong to this restaurant"})
				return
			}
			update["category_id"] = *req.CategoryID
		}

		if len(update) > 0 {
			if err := db.Model(&item).Updates(update).Error; err != nil {
				serverError(c)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
	}
}

// DeleteMenuItem removes an item
func DeleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		item, err := ownedMenuItem(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}
		if err := db.Delete(&item).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
	}
}

// ReorderMenuItems rewrites item sort orders to the submitted positions
// in one transaction.
func ReorderMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var req ReorderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var count int64
		db.Model(&models.MenuItem{}).
			Where("restaurant_id = ? AND id IN ?", restaurant.ID, req.OrderedIDs).Count(&count)
		if count != int64(len(req.OrderedIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ordered_ids contains unknown items"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for position, id := range req.OrderedIDs {
				if err := tx.Model(&models.MenuItem{}).Where("id = ?", id).
					Update("sort_order", position+1).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu items reordered"})
	}
}

// ExportMenuItems streams the full menu as an xlsx workbook
func ExportMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var categories []models.Category
		db.Where("restaurant_id = ?", restaurant.ID).Find(&categories)
		categoryNames := make(map[uint]string, len(categories))
		for _, cat := range categories {
			categoryNames[cat.ID] = cat.Name
		}

		var items []models.MenuItem
		if err := db.Where("restaurant_id = ?", restaurant.ID).
			Order("category_id, sort_order, id").Find(&items).Error; err != nil {
			serverError(c)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Menu")
		if err != nil {
			serverError(c)
			return
		}

		headers := []string{
			"ID", "Category", "Name", "NameAlt", "Description", "Price",
			"Available", "Vegetarian", "Vegan", "Spicy", "Allergens", "Ingredients",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, item := range items {
			row := sheet.AddRow()
			row.AddCell().SetValue(item.ID)
			row.AddCell().SetValue(categoryNames[item.CategoryID])
			row.AddCell().SetValue(item.Name)
			row.AddCell().SetValue(item.NameAlt)
			row.AddCell().SetValue(item.Description)
			row.AddCell().SetValue(item.Price)
			row.AddCell().SetValue(item.Available)
			row.AddCell().SetValue(item.Vegetarian)
			row.AddCell().SetValue(item.Vegan)
			row.AddCell().SetValue(item.Spicy)
			row.AddCell().SetValue(item.Allergens)
			row.AddCell().SetValue(item.Ingredients)
		}

		c.Header("Content-Disposition", "attachment; filename="+restaurant.Slug+"-menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			serverError(c)
		}
	}
}
