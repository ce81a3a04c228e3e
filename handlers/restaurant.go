package handlers

import (
	"fmt"
	"net/http"

	"qrmenu-api/middleware"
	"qrmenu-api/models"
	"qrmenu-api/slug"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateRestaurantRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	Currency    string  `json:"currency"`
	Timezone    string  `json:"timezone"`
	OrderPrefix string  `json:"order_prefix"`
	TaxRate     float64 `json:"tax_rate" binding:"gte=0,lte=1"`
}

// uniqueRestaurantSlug derives a slug from the name and appends -1, -2,
// ... until it is globally free. The read-then-write window is accepted:
// the unique index on slug turns a lost race into a create error instead
// of a duplicate.
func uniqueRestaurantSlug(db *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "restaurant"
	}
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := db.Model(&models.Restaurant{}).Where("slug = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateRestaurant registers a new restaurant under the caller's account
func CreateRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		var req CreateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		restaurantSlug, err := uniqueRestaurantSlug(db, req.Name)
		if err != nil {
			serverError(c)
			return
		}

		restaurant := models.Restaurant{
			OwnerID:     account.ID,
			Name:        req.Name,
			Slug:        restaurantSlug,
			Phone:       req.Phone,
			Address:     req.Address,
			Active:      true,
			Currency:    req.Currency,
			Timezone:    req.Timezone,
			OrderPrefix: req.OrderPrefix,
			TaxRate:     req.TaxRate,
			DineIn:      true,
			Takeaway:    true,
		}
		if err := db.Create(&restaurant).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
	}
}

// ListRestaurants returns all restaurants owned by the caller
func ListRestaurants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		var restaurants []models.Restaurant
		if err := db.Where("owner_id = ?", account.ID).Order("created_at").Find(&restaurants).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
	}
}

// GetRestaurant returns one owned restaurant by slug
func GetRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
	}
}

// UpdateRestaurant applies a partial update to safe fields. The slug is
// never rewritten; printed QR codes keep working after a rename.
func UpdateRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var req map[string]interface{}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		allowed := map[string]bool{
			"name": true, "phone": true, "address": true, "active": true,
			"currency": true, "timezone": true, "order_prefix": true,
			"tax_rate": true, "dine_in": true, "takeaway": true, "theme": true,
		}
		update := map[string]interface{}{}
		for k, v := range req {
			if allowed[k] {
				update[k] = v
			}
		}
		if len(update) > 0 {
			if err := db.Model(&restaurant).Updates(update).Error; err != nil {
				serverError(c)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
	}
}

// DeleteRestaurant removes a restaurant and everything under it in a
// single transaction.
func DeleteRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var orderIDs []uint
			if err := tx.Model(&models.Order{}).Where("restaurant_id = ?", restaurant.ID).
				Pluck("id", &orderIDs).Error; err != nil {
				return err
			}
			if len(orderIDs) > 0 {
				if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderLine{}).Error; err != nil {
					return err
				}
				if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderStatusHistory{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Order{}).Error; err != nil {
				return err
			}
			if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.MenuItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Category{}).Error; err != nil {
				return err
			}
			return tx.Delete(&restaurant).Error
		})
		if err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted"})
	}
}
