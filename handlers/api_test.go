package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"qrmenu-api/config"
	"qrmenu-api/middleware"
	"qrmenu-api/models"
	"qrmenu-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	cfg := config.Config{
		JWTSecret:     []byte(testSecret),
		UploadDir:     t.TempDir(),
		PublicBaseURL: "http://test.local",
	}
	r := gin.New()
	routes.SetupRoutes(r, db, cfg)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerAccount(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"email":         email,
		"password":      "secret123",
		"business_name": "Test Business",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["token"].(string)
}

func createRestaurant(t *testing.T, r *gin.Engine, token, name string, extra gin.H) string {
	t.Helper()
	body := gin.H{"name": name}
	for k, v := range extra {
		body[k] = v
	}
	w := doJSON(t, r, http.MethodPost, "/api/restaurants", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["restaurant"].(map[string]interface{})["slug"].(string)
}

func createCategory(t *testing.T, r *gin.Engine, token, slug string, body gin.H) map[string]interface{} {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/restaurants/"+slug+"/categories", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["category"].(map[string]interface{})
}

func createItem(t *testing.T, r *gin.Engine, token, slug string, body gin.H) map[string]interface{} {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/restaurants/"+slug+"/menu-items", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["item"].(map[string]interface{})
}

// ── Auth ────────────────────────────────────────────────────────────────────

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupAPI(t)

	token := registerAccount(t, r, "owner@example.com")
	assert.NotEmpty(t, token)

	// Duplicate email
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"email":         "owner@example.com",
		"password":      "secret123",
		"business_name": "Another",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct login
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])
}

func expiredToken(t *testing.T, accountID uint) string {
	t.Helper()
	claims := middleware.Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestSessionVerificationFailsClosed(t *testing.T) {
	r, db := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")

	// No token
	w := doJSON(t, r, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expired token, even on a mutating endpoint
	var account models.Account
	require.NoError(t, db.Where("email = ?", "owner@example.com").First(&account).Error)
	w = doJSON(t, r, http.MethodPost, "/api/restaurants", gin.H{"name": "X"}, expiredToken(t, account.ID))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown subject
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, tokenForAccount(t, 9999))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Inactive account with an otherwise valid token
	require.NoError(t, db.Model(&account).Update("active", false).Error)
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", decode(t, w)["error"])
}

func tokenForAccount(t *testing.T, accountID uint) string {
	t.Helper()
	token, err := middleware.GenerateToken([]byte(testSecret), &models.Account{ID: accountID})
	require.NoError(t, err)
	return token
}

// ── Restaurants ─────────────────────────────────────────────────────────────

func TestRestaurantSlugAllocation(t *testing.T) {
	r, _ := setupAPI(t)
	tokenA := registerAccount(t, r, "a@example.com")
	tokenB := registerAccount(t, r, "b@example.com")

	slugA := createRestaurant(t, r, tokenA, "Dream Café!!", nil)
	assert.Equal(t, "dream-cafe", slugA)

	// Same name under another account: globally unique, suffix counter
	slugB := createRestaurant(t, r, tokenB, "Dream Café!!", nil)
	assert.Equal(t, "dream-cafe-1", slugB)

	slugB2 := createRestaurant(t, r, tokenB, "Dream Café!!", nil)
	assert.Equal(t, "dream-cafe-2", slugB2)
}

func TestOwnershipNotFoundSymmetry(t *testing.T) {
	r, _ := setupAPI(t)
	tokenA := registerAccount(t, r, "a@example.com")
	tokenB := registerAccount(t, r, "b@example.com")

	slug := createRestaurant(t, r, tokenA, "Kaj Marko", nil)

	// Someone else's restaurant and a nonexistent one must be
	// indistinguishable.
	wOther := doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug, nil, tokenB)
	wMissing := doJSON(t, r, http.MethodGet, "/api/restaurants/does-not-exist", nil, tokenB)
	assert.Equal(t, http.StatusNotFound, wOther.Code)
	assert.Equal(t, http.StatusNotFound, wMissing.Code)
	assert.Equal(t, wMissing.Body.String(), wOther.Body.String())

	// Same policy on a mutation
	wOther = doJSON(t, r, http.MethodDelete, "/api/restaurants/"+slug, nil, tokenB)
	assert.Equal(t, http.StatusNotFound, wOther.Code)

	// The owner still sees it
	wOwner := doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug, nil, tokenA)
	assert.Equal(t, http.StatusOK, wOwner.Code)
}

// ── Categories ──────────────────────────────────────────────────────────────

func TestCategorySortOrderIsMonotonic(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	first := createCategory(t, r, token, slug, gin.H{"name": "Салати"})
	second := createCategory(t, r, token, slug, gin.H{"name": "Скара"})

	assert.Equal(t, "salati", first["slug"])
	assert.Less(t, first["sort_order"].(float64), second["sort_order"].(float64))
}

func TestCategoryDuplicateNameRejected(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	createCategory(t, r, token, slug, gin.H{"name": "Drinks"})
	w := doJSON(t, r, http.MethodPost, "/api/restaurants/"+slug+"/categories",
		gin.H{"name": "dRiNkS"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryCycleRejected(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	parent := createCategory(t, r, token, slug, gin.H{"name": "Drinks"})
	parentID := uint(parent["id"].(float64))
	child := createCategory(t, r, token, slug, gin.H{"name": "Hot", "parent_id": parentID})
	childID := uint(child["id"].(float64))

	// Proposing the child as the parent's parent is circular
	w := doJSON(t, r, http.MethodPatch,
		"/api/restaurants/"+slug+"/categories/"+itoa(parentID),
		gin.H{"set_parent": true, "parent_id": childID}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], "circular")

	// Self-parenting is circular too
	w = doJSON(t, r, http.MethodPatch,
		"/api/restaurants/"+slug+"/categories/"+itoa(childID),
		gin.H{"set_parent": true, "parent_id": childID}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Unknown parent is a validation error, not a cycle
	w = doJSON(t, r, http.MethodPatch,
		"/api/restaurants/"+slug+"/categories/"+itoa(childID),
		gin.H{"set_parent": true, "parent_id": 9999}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Detaching back to root is always valid
	w = doJSON(t, r, http.MethodPatch,
		"/api/restaurants/"+slug+"/categories/"+itoa(childID),
		gin.H{"set_parent": true, "parent_id": nil}, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestCategoryDeleteCascadesToItems(t *testing.T) {
	r, db := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	category := createCategory(t, r, token, slug, gin.H{"name": "Скара"})
	categoryID := uint(category["id"].(float64))
	createItem(t, r, token, slug, gin.H{"name": "Ќебапи", "price": 250.0, "category_id": categoryID})
	createItem(t, r, token, slug, gin.H{"name": "Плескавица", "price": 300.0, "category_id": categoryID})

	w := doJSON(t, r, http.MethodDelete,
		"/api/restaurants/"+slug+"/categories/"+itoa(categoryID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining int64
	db.Model(&models.MenuItem{}).Where("category_id = ?", categoryID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestCategoryReorder(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	a := uint(createCategory(t, r, token, slug, gin.H{"name": "A"})["id"].(float64))
	b := uint(createCategory(t, r, token, slug, gin.H{"name": "B"})["id"].(float64))
	cCat := uint(createCategory(t, r, token, slug, gin.H{"name": "C"})["id"].(float64))

	w := doJSON(t, r, http.MethodPut, "/api/restaurants/"+slug+"/categories/reorder",
		gin.H{"ordered_ids": []uint{cCat, a, b}}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/categories", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["categories"].([]interface{})
	names := make([]string, len(list))
	for i, raw := range list {
		names[i] = raw.(map[string]interface{})["name"].(string)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)

	// Unknown ids reject the whole batch
	w = doJSON(t, r, http.MethodPut, "/api/restaurants/"+slug+"/categories/reorder",
		gin.H{"ordered_ids": []uint{a, 9999}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryFlatList(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	drinks := createCategory(t, r, token, slug, gin.H{"name": "Drinks"})
	createCategory(t, r, token, slug, gin.H{"name": "Hot", "parent_id": uint(drinks["id"].(float64))})

	w := doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/categories/flat", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["categories"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "Drinks", list[0].(map[string]interface{})["label"])
	assert.Equal(t, "— Hot", list[1].(map[string]interface{})["label"])
}

// ── Menu items ──────────────────────────────────────────────────────────────

func TestMenuItemRequiresOwnCategory(t *testing.T) {
	r, _ := setupAPI(t)
	tokenA := registerAccount(t, r, "a@example.com")
	tokenB := registerAccount(t, r, "b@example.com")
	slugA := createRestaurant(t, r, tokenA, "Kaj Marko", nil)
	slugB := createRestaurant(t, r, tokenB, "Kaj Petre", nil)

	foreign := createCategory(t, r, tokenB, slugB, gin.H{"name": "Other"})

	w := doJSON(t, r, http.MethodPost, "/api/restaurants/"+slugA+"/menu-items", gin.H{
		"name":        "Ќебапи",
		"price":       250.0,
		"category_id": uint(foreign["id"].(float64)),
	}, tokenA)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Public menu & orders ────────────────────────────────────────────────────

func TestPublicMenu(t *testing.T) {
	r, db := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	visible := createCategory(t, r, token, slug, gin.H{"name": "Скара"})
	hidden := createCategory(t, r, token, slug, gin.H{"name": "Off Menu"})
	doJSON(t, r, http.MethodPatch,
		"/api/restaurants/"+slug+"/categories/"+itoa(uint(hidden["id"].(float64))),
		gin.H{"visible": false}, token)

	createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 250.0,
		"category_id": uint(visible["id"].(float64)),
	})

	w := doJSON(t, r, http.MethodGet, "/api/menu/"+slug+"?src=qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	categories := body["categories"].([]interface{})
	require.Len(t, categories, 1)
	items := categories[0].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, items, 1)

	var restaurant models.Restaurant
	require.NoError(t, db.Where("slug = ?", slug).First(&restaurant).Error)
	assert.EqualValues(t, 1, restaurant.Views)
	assert.EqualValues(t, 1, restaurant.Scans)

	// Unknown slug
	w = doJSON(t, r, http.MethodGet, "/api/menu/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuQR(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)

	w := doJSON(t, r, http.MethodGet, "/api/menu/"+slug+"/qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestGuestOrderFlow(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Dream Café", gin.H{
		"order_prefix": "DC",
		"tax_rate":     0.1,
	})
	category := createCategory(t, r, token, slug, gin.H{"name": "Скара"})
	item := createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 100.0,
		"category_id": uint(category["id"].(float64)),
	})
	itemID := uint(item["id"].(float64))

	place := func() map[string]interface{} {
		w := doJSON(t, r, http.MethodPost, "/api/menu/"+slug+"/orders", gin.H{
			"fulfillment": "dine_in",
			"table_label": "7",
			"lines":       []gin.H{{"menu_item_id": itemID, "quantity": 2}},
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		return decode(t, w)["order"].(map[string]interface{})
	}

	first := place()
	assert.Equal(t, "DC-1", first["code"])
	assert.InDelta(t, 200.0, first["subtotal"].(float64), 0.001)
	assert.InDelta(t, 20.0, first["tax"].(float64), 0.001)
	assert.InDelta(t, 220.0, first["total"].(float64), 0.001)

	second := place()
	assert.Equal(t, "DC-2", second["code"])
	assert.Greater(t, second["number"].(float64), first["number"].(float64))

	// Owner walks the order through the lifecycle
	orderPath := "/api/restaurants/" + slug + "/orders/" + itoa(uint(first["id"].(float64)))
	w := doJSON(t, r, http.MethodPut, orderPath+"/status", gin.H{"status": "ACCEPTED"}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Skipping straight to COMPLETED is rejected by the state machine
	w = doJSON(t, r, http.MethodPut, orderPath+"/status", gin.H{"status": "COMPLETED"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Order list carries a status summary
	w = doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["order_summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["ACCEPTED"])
	assert.EqualValues(t, 1, summary["PENDING"])
}

func TestOrderChannelToggles(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	category := createCategory(t, r, token, slug, gin.H{"name": "Скара"})
	item := createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 100.0,
		"category_id": uint(category["id"].(float64)),
	})

	w := doJSON(t, r, http.MethodPatch, "/api/restaurants/"+slug, gin.H{"takeaway": false}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/menu/"+slug+"/orders", gin.H{
		"fulfillment": "takeaway",
		"lines":       []gin.H{{"menu_item_id": uint(item["id"].(float64)), "quantity": 1}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuItemReorder(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	categoryID := uint(createCategory(t, r, token, slug, gin.H{"name": "Скара"})["id"].(float64))

	mk := func(name string) uint {
		item := createItem(t, r, token, slug, gin.H{
			"name": name, "price": 100.0, "category_id": categoryID,
		})
		return uint(item["id"].(float64))
	}
	a, b, cItem := mk("A"), mk("B"), mk("C")

	w := doJSON(t, r, http.MethodPut, "/api/restaurants/"+slug+"/menu-items/reorder",
		gin.H{"ordered_ids": []uint{cItem, a, b}}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/menu-items", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["items"].([]interface{})
	names := make([]string, len(list))
	for i, raw := range list {
		names[i] = raw.(map[string]interface{})["name"].(string)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)

	// Unknown ids reject the whole batch
	w = doJSON(t, r, http.MethodPut, "/api/restaurants/"+slug+"/menu-items/reorder",
		gin.H{"ordered_ids": []uint{a, 9999}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuExport(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	categoryID := uint(createCategory(t, r, token, slug, gin.H{"name": "Скара"})["id"].(float64))
	createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 250.0, "category_id": categoryID,
		"allergens": []string{"gluten"},
	})

	w := doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/menu-items/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), slug+"-menu.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func doUpload(t *testing.T, r *gin.Engine, path, filename, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("not-really-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestItemImageUploadAndDelete(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	categoryID := uint(createCategory(t, r, token, slug, gin.H{"name": "Скара"})["id"].(float64))
	item := createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 250.0, "category_id": categoryID,
	})
	imagePath := "/api/restaurants/" + slug + "/menu-items/" + itoa(uint(item["id"].(float64))) + "/image"

	// Unsupported extension
	w := doUpload(t, r, imagePath, "menu.txt", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doUpload(t, r, imagePath, "photo.png", token)
	require.Equal(t, http.StatusOK, w.Code)
	imageURL := decode(t, w)["image_url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(imageURL, ".png"))

	w = doJSON(t, r, http.MethodDelete, imagePath, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Nothing left to delete
	w = doJSON(t, r, http.MethodDelete, imagePath, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuItemUpdateValidation(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	categoryID := uint(createCategory(t, r, token, slug, gin.H{"name": "Скара"})["id"].(float64))
	item := createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 250.0, "category_id": categoryID,
	})
	itemPath := "/api/restaurants/" + slug + "/menu-items/" + itoa(uint(item["id"].(float64)))

	// Wrong-typed value is a validation failure, not a server error
	w := doJSON(t, r, http.MethodPatch, itemPath, gin.H{"price": "abc"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Zero price fails the gt constraint
	w = doJSON(t, r, http.MethodPatch, itemPath, gin.H{"price": 0}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, itemPath, gin.H{"price": 150.0, "spicy": true}, token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)["item"].(map[string]interface{})
	assert.InDelta(t, 150.0, updated["price"].(float64), 0.001)
	assert.Equal(t, true, updated["spicy"])
}

func TestGuestOrderCancel(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", gin.H{"order_prefix": "KM"})
	categoryID := uint(createCategory(t, r, token, slug, gin.H{"name": "Скара"})["id"].(float64))
	itemID := uint(createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 100.0, "category_id": categoryID,
	})["id"].(float64))

	place := func() map[string]interface{} {
		w := doJSON(t, r, http.MethodPost, "/api/menu/"+slug+"/orders", gin.H{
			"fulfillment": "dine_in",
			"lines":       []gin.H{{"menu_item_id": itemID, "quantity": 1}},
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		return decode(t, w)["order"].(map[string]interface{})
	}

	first := place()
	cancelPath := "/api/menu/" + slug + "/orders/" + itoa(uint(first["id"].(float64))) + "/cancel"

	// Wrong code reads as not found, never as "exists but wrong code"
	w := doJSON(t, r, http.MethodPost, cancelPath, gin.H{"code": "KM-999"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, cancelPath, gin.H{"code": first["code"]}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet,
		"/api/restaurants/"+slug+"/orders/"+itoa(uint(first["id"].(float64))), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED",
		decode(t, w)["order"].(map[string]interface{})["status"])

	// Once the owner has accepted, the guest can no longer cancel
	second := place()
	secondPath := "/api/restaurants/" + slug + "/orders/" + itoa(uint(second["id"].(float64)))
	w = doJSON(t, r, http.MethodPut, secondPath+"/status", gin.H{"status": "ACCEPTED"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost,
		"/api/menu/"+slug+"/orders/"+itoa(uint(second["id"].(float64)))+"/cancel",
		gin.H{"code": second["code"]}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDashboard(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAccount(t, r, "owner@example.com")
	slug := createRestaurant(t, r, token, "Kaj Marko", nil)
	category := createCategory(t, r, token, slug, gin.H{"name": "Скара"})
	createItem(t, r, token, slug, gin.H{
		"name": "Ќебапи", "price": 100.0,
		"category_id": uint(category["id"].(float64)),
	})

	w := doJSON(t, r, http.MethodGet, "/api/restaurants/"+slug+"/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["categories"])
	assert.EqualValues(t, 1, body["menu_items"])
}
