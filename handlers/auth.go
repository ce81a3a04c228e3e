package handlers

import (
	"net/http"

	"qrmenu-api/middleware"
	"qrmenu-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	BusinessName string `json:"business_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new owner account and opens a session
func Register(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.Account
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			serverError(c)
			return
		}

		account := models.Account{
			Email:        req.Email,
			PasswordHash: string(hash),
			BusinessName: req.BusinessName,
			Tier:         models.TierFree,
			Active:       true,
		}
		if err := db.Create(&account).Error; err != nil {
			serverError(c)
			return
		}

		token, err := middleware.GenerateToken(secret, &account)
		if err != nil {
			serverError(c)
			return
		}
		middleware.SetSessionCookie(c, token)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Account created successfully",
			"token":   token,
			"account": gin.H{
				"id":            account.ID,
				"email":         account.Email,
				"business_name": account.BusinessName,
				"tier":          account.Tier,
			},
		})
	}
}

// Login authenticates an account and opens a session
func Login(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var account models.Account
		if err := db.Where("email = ?", req.Email).First(&account).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if !account.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		token, err := middleware.GenerateToken(secret, &account)
		if err != nil {
			serverError(c)
			return
		}
		middleware.SetSessionCookie(c, token)

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"account": gin.H{
				"id":            account.ID,
				"email":         account.Email,
				"business_name": account.BusinessName,
				"tier":          account.Tier,
			},
		})
	}
}

// Logout clears the session cookie
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// GetProfile returns the authenticated account
func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := middleware.GetAccount(c)
		c.JSON(http.StatusOK, gin.H{"account": account})
	}
}
