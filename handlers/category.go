package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"qrmenu-api/hierarchy"
	"qrmenu-api/middleware"
	"qrmenu-api/models"
	"qrmenu-api/slug"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	NameAlt  string `json:"name_alt"`
	ParentID *uint  `json:"parent_id"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

// parentMap loads every category of the restaurant keyed by id with its
// current parent, the shape the cycle check walks.
func parentMap(db *gorm.DB, restaurantID uint) (map[uint]*uint, error) {
	var categories []models.Category
	if err := db.Select("id", "parent_id").Where("restaurant_id = ?", restaurantID).Find(&categories).Error; err != nil {
		return nil, err
	}
	parents := make(map[uint]*uint, len(categories))
	for _, cat := range categories {
		parents[cat.ID] = cat.ParentID
	}
	return parents, nil
}

// uniqueCategorySlug scopes the suffix-counter loop to one restaurant.
func uniqueCategorySlug(db *gorm.DB, restaurantID uint, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "category"
	}
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := db.Model(&models.Category{}).
			Where("restaurant_id = ? AND slug = ?", restaurantID, candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// nextSortOrder allocates max+1 within a sibling scope. parentID nil
// means the root scope.
func nextSortOrder(db *gorm.DB, restaurantID uint, parentID *uint) int {
	var max int
	query := db.Model(&models.Category{}).Where("restaurant_id = ?", restaurantID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	query.Select("COALESCE(MAX(sort_order), 0)").Scan(&max)
	return max + 1
}

// CreateCategory adds a category to the restaurant's tree. Duplicate
// names (case-insensitive, restaurant-wide) are rejected before any slug
// is generated.
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var count int64
		db.Model(&models.Category{}).
			Where("restaurant_id = ? AND LOWER(name) = LOWER(?)", restaurant.ID, req.Name).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A category with this name already exists"})
			return
		}

		if req.ParentID != nil {
			var parentCount int64
			db.Model(&models.Category{}).
				Where("id = ? AND restaurant_id = ?", *req.ParentID, restaurant.ID).
				Count(&parentCount)
			if parentCount == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": hierarchy.ErrParentNotFound.Error()})
				return
			}
		}

		categorySlug, err := uniqueCategorySlug(db, restaurant.ID, req.Name)
		if err != nil {
			serverError(c)
			return
		}

		category := models.Category{
			RestaurantID: restaurant.ID,
			Name:         req.Name,
			NameAlt:      req.NameAlt,
			Slug:         categorySlug,
			SortOrder:    nextSortOrder(db, restaurant.ID, req.ParentID),
			ParentID:     req.ParentID,
			Icon:         req.Icon,
			Color:        req.Color,
			Visible:      true,
		}
		if err := db.Create(&category).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
	}
}

// ListCategories returns the restaurant's categories in display order
func ListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		var categories []models.Category
		if err := db.Where("restaurant_id = ?", restaurant.ID).
			Order("sort_order, id").Find(&categories).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
	}
}

// ListCategoriesFlat returns the tree flattened to an indented list, as
// consumed by parent-select inputs.
func ListCategoriesFlat(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		var categories []models.Category
		if err := db.Where("restaurant_id = ?", restaurant.ID).Find(&categories).Error; err != nil {
			serverError(c)
			return
		}
		nodes := make([]hierarchy.Node, len(categories))
		for i, cat := range categories {
			nodes[i] = hierarchy.Node{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder, ParentID: cat.ParentID}
		}
		entries := hierarchy.Flatten(nodes, "— ")
		c.JSON(http.StatusOK, gin.H{"count": len(entries), "categories": entries})
	}
}

// GetCategory returns one category with its items
func GetCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		var category models.Category
		err = db.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).First(&category).Error
		if respondLookup(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category})
	}
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	NameAlt  *string `json:"name_alt"`
	Icon     *string `json:"icon"`
	Color    *string `json:"color"`
	Visible  *bool   `json:"visible"`
	ParentID *uint   `json:"parent_id"`
	// SetParent distinguishes "make it a root" from "leave the parent
	// alone": parent_id is only applied when set_parent is true.
	SetParent bool `json:"set_parent"`
}

// UpdateCategory applies a partial update. A parent change runs the
// cycle check before anything is persisted.
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		category, err := ownedCategory(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}

		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := map[string]interface{}{}
		if req.Name != nil && *req.Name != category.Name {
			var count int64
			db.Model(&models.Category{}).
				Where("restaurant_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", restaurant.ID, *req.Name, category.ID).
				Count(&count)
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "A category with this name already exists"})
				return
			}
			update["name"] = *req.Name
		}
		if req.NameAlt != nil {
			update["name_alt"] = *req.NameAlt
		}
		if req.Icon != nil {
			update["icon"] = *req.Icon
		}
		if req.Color != nil {
			update["color"] = *req.Color
		}
		if req.Visible != nil {
			update["visible"] = *req.Visible
		}

		if req.SetParent {
			parents, err := parentMap(db, restaurant.ID)
			if err != nil {
				serverError(c)
				return
			}
			if err := hierarchy.WouldCycle(category.ID, req.ParentID, parents); err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, hierarchy.ErrCircular) {
					status = http.StatusUnprocessableEntity
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}
			update["parent_id"] = req.ParentID
		}

		if len(update) > 0 {
			if err := db.Model(&category).Updates(update).Error; err != nil {
				serverError(c)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
	}
}

// DeleteCategory removes a category, deletes its menu items and
// reparents child categories to the deleted node's parent, all in one
// transaction.
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		category, err := ownedCategory(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("category_id = ?", category.ID).Delete(&models.MenuItem{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Category{}).
				Where("parent_id = ?", category.ID).
				Update("parent_id", category.ParentID).Error; err != nil {
				return err
			}
			return tx.Delete(&category).Error
		})
		if err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

type ReorderRequest struct {
	OrderedIDs []uint `json:"ordered_ids" binding:"required,min=1"`
}

// ReorderCategories rewrites sort orders to the submitted positions in a
// single transaction, so a failure never leaves a half-applied order.
func ReorderCategories(db *gorm.DB) gin.HandlerFunc {
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
		db.Model(&models.Category{}).
			Where("restaurant_id = ? AND id IN ?", restaurant.ID, req.OrderedIDs).Count(&count)
		if count != int64(len(req.OrderedIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ordered_ids contains unknown categories"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for position, id := range req.OrderedIDs {
				if err := tx.Model(&models.Category{}).Where("id = ?", id).
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
		c.JSON(http.StatusOK, gin.H{"message": "Categories reordered"})
	}
}
