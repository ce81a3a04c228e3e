package handlers

import (
	"errors"
	"net/http"

	"qrmenu-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Ownership resolution walks account -> restaurant -> category/item and
// answers not-found for any broken link. "Exists but belongs to someone
// else" is deliberately indistinguishable from "does not exist", so
// unauthorized callers learn nothing about other tenants' data.

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func serverError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// respondLookup translates a lookup error into a response and reports
// whether the handler should stop.
func respondLookup(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
	} else {
		serverError(c)
	}
	return true
}

// ownedRestaurant resolves a restaurant slug against the verified
// account. An owner mismatch surfaces as gorm.ErrRecordNotFound.
func ownedRestaurant(db *gorm.DB, accountID uint, slug string) (models.Restaurant, error) {
	var restaurant models.Restaurant
	err := db.Where("slug = ? AND owner_id = ?", slug, accountID).First(&restaurant).Error
	return restaurant, err
}

// ownedCategory resolves a category id within an already-resolved
// restaurant.
func ownedCategory(db *gorm.DB, restaurantID uint, id string) (models.Category, error) {
	var category models.Category
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&category).Error
	return category, err
}

// ownedMenuItem resolves a menu item id within an already-resolved
// restaurant.
func ownedMenuItem(db *gorm.DB, restaurantID uint, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&item).Error
	return item, err
}

// ownedOrder resolves an order id within an already-resolved restaurant.
func ownedOrder(db *gorm.DB, restaurantID uint, id string) (models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&order).Error
	return order, err
}
