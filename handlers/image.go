package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"qrmenu-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// UploadItemImage stores an item photo on local disk under a random
// filename and records its public URL on the item. A previous image is
// removed best-effort.
func UploadItemImage(db *gorm.DB, uploadDir string) gin.HandlerFunc {
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

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedImageExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type (use jpg, png or webp)"})
			return
		}

		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			serverError(c)
			return
		}
		filename := uuid.New().String() + ext
		if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, filename)); err != nil {
			serverError(c)
			return
		}

		if item.ImageURL != "" {
			os.Remove(filepath.Join(uploadDir, filepath.Base(item.ImageURL)))
		}

		imageURL := "/uploads/" + filename
		if err := db.Model(&item).Update("image_url", imageURL).Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "image_url": imageURL})
	}
}

// DeleteItemImage removes the stored file and clears the reference
func DeleteItemImage(db *gorm.DB, uploadDir string) gin.HandlerFunc {
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
		if item.ImageURL == "" {
			notFound(c)
			return
		}

		os.Remove(filepath.Join(uploadDir, filepath.Base(item.ImageURL)))
		if err := db.Model(&item).Update("image_url", "").Error; err != nil {
			serverError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
	}
}
