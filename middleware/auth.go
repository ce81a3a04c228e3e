package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"qrmenu-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// SessionCookie is the HTTP-only cookie carrying the session token.
const SessionCookie = "qrmenu_session"

// TokenTTL is the fixed validity window of an issued session token.
const TokenTTL = 7 * 24 * time.Hour

type Claims struct {
	AccountID uint `json:"account_id"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed session token bound to the account.
func GenerateToken(secret []byte, account *models.Account) (string, error) {
	claims := Claims{
		AccountID: account.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// SetSessionCookie attaches the token as an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, token string) {
	c.SetCookie(SessionCookie, token, int(TokenTTL.Seconds()), "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	c.Abort()
}

// AuthRequired verifies the session token and loads the owning account.
// Verification fails closed: a missing token, a bad signature, an
// expired token, an unknown subject and an inactive account all produce
// the same unauthenticated answer.
func AuthRequired(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			// Fallback for API clients without cookie jars
			authHeader := c.GetHeader("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthenticated(c)
				return
			}
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			unauthenticated(c)
			return
		}

		var account models.Account
		if err := db.First(&account, claims.AccountID).Error; err != nil {
			unauthenticated(c)
			return
		}
		if !account.Active {
			unauthenticated(c)
			return
		}

		c.Set("account", account)
		c.Next()
	}
}

// GetAccount extracts the verified account from the request context.
func GetAccount(c *gin.Context) models.Account {
	val, _ := c.Get("account")
	return val.(models.Account)
}
