package handlers

import (
	"net/http"
	"time"

	"qrmenu-api/middleware"
	"qrmenu-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDashboard aggregates the restaurant's numbers at read time:
// catalog sizes, view/scan counters and a 30-day order/revenue series.
// Grouping by day happens in Go so the query stays portable between
// sqlite and postgres.
func GetDashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		var categoryCount, itemCount int64
		db.Model(&models.Category{}).Where("restaurant_id = ?", restaurant.ID).Count(&categoryCount)
		db.Model(&models.MenuItem{}).Where("restaurant_id = ?", restaurant.ID).Count(&itemCount)

		since := time.Now().AddDate(0, 0, -30)
		var orders []models.Order
		if err := db.Where("restaurant_id = ? AND created_at >= ?", restaurant.ID, since).
			Find(&orders).Error; err != nil {
			serverError(c)
			return
		}

		byStatus := map[string]int{}
		byDay := map[string]int{}
		var revenue float64
		for _, o := range orders {
			byStatus[string(o.Status)]++
			byDay[o.CreatedAt.Format("2006-01-02")]++
			if o.Status != models.StatusCancelled {
				revenue += o.Total
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurant":       restaurant.Name,
			"categories":       categoryCount,
			"menu_items":       itemCount,
			"views":            restaurant.Views,
			"scans":            restaurant.Scans,
			"orders_30d":       len(orders),
			"orders_by_status": byStatus,
			"orders_by_day":    byDay,
			"revenue_30d":      revenue,
			"currency":         restaurant.Currency,
		})
	}
}
