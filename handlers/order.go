package handlers

import (
	"net/http"

	"qrmenu-api/middleware"
	"qrmenu-api/models"
	"qrmenu-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListOrders returns the restaurant's orders, newest first, with a
// per-status summary for the dashboard header.
func ListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}

		query := db.Preload("Lines").Where("restaurant_id = ?", restaurant.ID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var orders []models.Order
		if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
			serverError(c)
			return
		}

		summary := map[string]int{}
		for _, o := range orders {
			summary[string(o.Status)]++
		}

		c.JSON(http.StatusOK, gin.H{
			"count":         len(orders),
			"order_summary": summary,
			"orders":        orders,
		})
	}
}

// GetOrder returns one order with lines and status history
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		var order models.Order
		err = db.Preload("Lines").Preload("StatusHistory").
			Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
			First(&order).Error
		if respondLookup(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus moves an order through the lifecycle. The state
// machine gates the transition; update and history row are written in
// one transaction.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		restaurant, err := ownedRestaurant(db, account.ID, c.Param("slug"))
		if respondLookup(c, err) {
			return
		}
		order, err := ownedOrder(db, restaurant.ID, c.Param("id"))
		if respondLookup(c, err) {
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := statemachine.CanTransition(order.Status, req.Status, "owner"); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":             "Invalid state transition",
				"current_status":    order.Status,
				"requested":         req.Status,
				"reason":            err.Error(),
				"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
			})
			return
		}

		prevStatus := order.Status
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
				return err
			}
			history := models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: prevStatus,
				ToStatus:   req.Status,
				Actor:      "owner",
				Note:       req.Note,
			}
			return tx.Create(&history).Error
		})
		if err != nil {
			serverError(c)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Order status updated",
			"order_id": order.ID,
			"from":     prevStatus,
			"to":       req.Status,
		})
	}
}
