package routes

import (
	"qrmenu-api/config"
	"qrmenu-api/handlers"
	"qrmenu-api/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", handlers.Register(db, cfg.JWTSecret))
		public.POST("/auth/login", handlers.Login(db, cfg.JWTSecret))
		public.POST("/auth/logout", handlers.Logout())

		// Guest-facing menu, reached through the QR code
		public.GET("/menu/:slug", handlers.GetPublicMenu(db))
		public.GET("/menu/:slug/qr", handlers.GetMenuQR(db, cfg.PublicBaseURL))
		public.POST("/menu/:slug/orders", handlers.PlaceOrder(db))
		public.POST("/menu/:slug/orders/:id/cancel", handlers.CancelGuestOrder(db))
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(db, cfg.JWTSecret))
	{
		auth.GET("/profile", handlers.GetProfile())

		auth.POST("/restaurants", handlers.CreateRestaurant(db))
		auth.GET("/restaurants", handlers.ListRestaurants(db))
		auth.GET("/restaurants/:slug", handlers.GetRestaurant(db))
		auth.PATCH("/restaurants/:slug", handlers.UpdateRestaurant(db))
		auth.DELETE("/restaurants/:slug", handlers.DeleteRestaurant(db))

		// Category tree
		auth.POST("/restaurants/:slug/categories", handlers.CreateCategory(db))
		auth.GET("/restaurants/:slug/categories", handlers.ListCategories(db))
		auth.GET("/restaurants/:slug/categories/flat", handlers.ListCategoriesFlat(db))
		auth.PUT("/restaurants/:slug/categories/reorder", handlers.ReorderCategories(db))
		auth.GET("/restaurants/:slug/categories/:id", handlers.GetCategory(db))
		auth.PATCH("/restaurants/:slug/categories/:id", handlers.UpdateCategory(db))
		auth.DELETE("/restaurants/:slug/categories/:id", handlers.DeleteCategory(db))

		// Menu items
		auth.POST("/restaurants/:slug/menu-items", handlers.CreateMenuItem(db))
		auth.GET("/restaurants/:slug/menu-items", handlers.ListMenuItems(db))
		auth.GET("/restaurants/:slug/menu-items/export", handlers.ExportMenuItems(db))
		auth.PUT("/restaurants/:slug/menu-items/reorder", handlers.ReorderMenuItems(db))
		auth.GET("/restaurants/:slug/menu-items/:id", handlers.GetMenuItem(db))
		auth.PATCH("/restaurants/:slug/menu-items/:id", handlers.UpdateMenuItem(db))
		auth.DELETE("/restaurants/:slug/menu-items/:id", handlers.DeleteMenuItem(db))
		auth.POST("/restaurants/:slug/menu-items/:id/image", handlers.UploadItemImage(db, cfg.UploadDir))
		auth.DELETE("/restaurants/:slug/menu-items/:id/image", handlers.DeleteItemImage(db, cfg.UploadDir))

		// Orders
		auth.GET("/restaurants/:slug/orders", handlers.ListOrders(db))
		auth.GET("/restaurants/:slug/orders/:id", handlers.GetOrder(db))
		auth.PUT("/restaurants/:slug/orders/:id/status", handlers.UpdateOrderStatus(db))

		// Dashboard
		auth.GET("/restaurants/:slug/dashboard", handlers.GetDashboard(db))
	}
}
