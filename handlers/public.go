package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"qrmenu-api/models"
	"qrmenu-api/statemachine"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// menuCategory is the guest-facing shape of one tree node
type menuCategory struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	NameAlt  string            `json:"name_alt,omitempty"`
	Slug     string            `json:"slug"`
	Icon     string            `json:"icon,omitempty"`
	Color    string            `json:"color,omitempty"`
	Items    []models.MenuItem `json:"items"`
	Children []*menuCategory   `json:"children,omitempty"`
}

// GetPublicMenu serves the guest menu for a restaurant slug: visible
// categories as a tree with their available items. Every hit bumps the
// view counter; hits arriving through a QR code (?src=qr) bump the scan
// counter as well.
func GetPublicMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).
			First(&restaurant).Error; respondLookup(c, err) {
			return
		}

		db.Model(&restaurant).UpdateColumn("views", gorm.Expr("views + 1"))
		if c.Query("src") == "qr" {
			db.Model(&restaurant).UpdateColumn("scans", gorm.Expr("scans + 1"))
		}

		var categories []models.Category
		db.Where("restaurant_id = ? AND visible = ?", restaurant.ID, true).
			Find(&categories)
		var items []models.MenuItem
		db.Where("restaurant_id = ? AND available = ?", restaurant.ID, true).
			Order("sort_order, id").Find(&items)

		itemsByCategory := make(map[uint][]models.MenuItem)
		for _, item := range items {
			itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], item)
		}

		nodes := make(map[uint]*menuCategory, len(categories))
		for _, cat := range categories {
			list := itemsByCategory[cat.ID]
			if list == nil {
				list = []models.MenuItem{}
			}
			nodes[cat.ID] = &menuCategory{
				ID: cat.ID, Name: cat.Name, NameAlt: cat.NameAlt,
				Slug: cat.Slug, Icon: cat.Icon, Color: cat.Color,
				Items: list,
			}
		}
		var roots []*menuCategory
		for _, cat := range categories {
			node := nodes[cat.ID]
			// A child of a hidden category surfaces as a root rather
			// than disappearing from the menu.
			if cat.ParentID != nil {
				if parent, ok := nodes[*cat.ParentID]; ok {
					parent.Children = append(parent.Children, node)
					continue
				}
			}
			roots = append(roots, node)
		}
		sortOrder := make(map[uint]int, len(categories))
		for _, cat := range categories {
			sortOrder[cat.ID] = cat.SortOrder
		}
		var sortTree func(list []*menuCategory)
		sortTree = func(list []*menuCategory) {
			sort.Slice(list, func(i, j int) bool {
				if sortOrder[list[i].ID] != sortOrder[list[j].ID] {
					return sortOrder[list[i].ID] < sortOrder[list[j].ID]
				}
				return list[i].ID < list[j].ID
			})
			for _, node := range list {
				sortTree(node.Children)
			}
		}
		sortTree(roots)
		if roots == nil {
			roots = []*menuCategory{}
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurant": gin.H{
				"name":     restaurant.Name,
				"slug":     restaurant.Slug,
				"currency": restaurant.Currency,
				"theme":    restaurant.Theme,
				"dine_in":  restaurant.DineIn,
				"takeaway": restaurant.Takeaway,
			},
			"categories": roots,
		})
	}
}

// GetMenuQR renders the QR code pointing at the public menu as PNG
func GetMenuQR(db *gorm.DB, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).
			First(&restaurant).Error; respondLookup(c, err) {
			return
		}

		target := fmt.Sprintf("%s/api/menu/%s?src=qr", publicBaseURL, restaurant.Slug)
		png, err := qrcode.Encode(target, qrcode.Medium, 512)
		if err != nil {
			serverError(c)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

type PlaceOrderLine struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Fulfillment  models.FulfillmentType `json:"fulfillment" binding:"required,oneof=dine_in takeaway"`
	TableLabel   string                 `json:"table_label"`
	CustomerName string                 `json:"customer_name"`
	Note         string                 `json:"note"`
	Lines        []PlaceOrderLine       `json:"lines" binding:"required,min=1,dive"`
}

// PlaceOrder creates a guest order. Item snapshots, totals and the
// per-restaurant sequential number are all produced inside a single
// transaction.
func PlaceOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).
			First(&restaurant).Error; respondLookup(c, err) {
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Fulfillment == models.FulfillmentDineIn && !restaurant.DineIn {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dine-in orders are disabled for this restaurant"})
			return
		}
		if req.Fulfillment == models.FulfillmentTakeaway && !restaurant.Takeaway {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Takeaway orders are disabled for this restaurant"})
			return
		}

		var lines []models.OrderLine
		var subtotal float64
		for _, reqLine := range req.Lines {
			var item models.MenuItem
			if err := db.Where("id = ? AND restaurant_id = ? AND available = ?",
				reqLine.MenuItemID, restaurant.ID, true).First(&item).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("menu item %d is not available", reqLine.MenuItemID),
				})
				return
			}
			lines = append(lines, models.OrderLine{
				MenuItemID: item.ID,
				Name:       item.Name,
				Price:      item.Price,
				Quantity:   reqLine.Quantity,
			})
			subtotal += item.Price * float64(reqLine.Quantity)
		}

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var lastNumber int
			tx.Model(&models.Order{}).Where("restaurant_id = ?", restaurant.ID).
				Select("COALESCE(MAX(number), 0)").Scan(&lastNumber)

			tax := subtotal * restaurant.TaxRate
			order = models.Order{
				RestaurantID: restaurant.ID,
				Number:       lastNumber + 1,
				Code:         fmt.Sprintf("%s-%d", restaurant.OrderPrefix, lastNumber+1),
				Status:       models.StatusPending,
				Fulfillment:  req.Fulfillment,
				TableLabel:   req.TableLabel,
				CustomerName: req.CustomerName,
				Note:         req.Note,
				Subtotal:     subtotal,
				Tax:          tax,
				Total:        subtotal + tax,
				Lines:        lines,
			}
			return tx.Create(&order).Error
		})
		if err != nil {
			serverError(c)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
	}
}

type CancelOrderRequest struct {
	Code string `json:"code" binding:"required"`
}

// CancelGuestOrder lets a guest back out of a pending order. The order
// code from the confirmation acts as the bearer secret; a wrong code is
// indistinguishable from a missing order.
func CancelGuestOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.Where("slug = ? AND active = ?", c.Param("slug"), true).
			First(&restaurant).Error; respondLookup(c, err) {
			return
		}

		var req CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		err := db.Where("id = ? AND restaurant_id = ? AND code = ?",
			c.Param("id"), restaurant.ID, req.Code).First(&order).Error
		if respondLookup(c, err) {
			return
		}

		if err := statemachine.CanTransition(order.Status, models.StatusCancelled, "guest"); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          "Invalid state transition",
				"current_status": order.Status,
				"reason":         err.Error(),
			})
			return
		}

		prevStatus := order.Status
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&order).Update("status", models.StatusCancelled).Error; err != nil {
				return err
			}
			history := models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: prevStatus,
				ToStatus:   models.StatusCancelled,
				Actor:      "guest",
			}
			return tx.Create(&history).Error
		})
		if err != nil {
			serverError(c)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order_id": order.ID})
	}
}
