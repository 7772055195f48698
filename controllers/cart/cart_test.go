package cartControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sahiqur/eshop/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		Name: "Widget", Slug: "widget-" + uuid.NewString()[:8],
		Price: 12.5, Stock: 10, Available: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func newTestRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.GET("/user/cart", GetUserCart(db))
	r.POST("/user/cart", UpdateCartItem(db))
	r.POST("/user/cart/:product_id/add", AddCartItem(db))
	r.DELETE("/user/cart/:product_id", DeleteCartItem(db))
	r.DELETE("/user/cart", ClearUserCart(db))
	return r
}

func postQuantity(t *testing.T, r *gin.Engine, productID uint, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(CartItemInput{ProductID: productID, Quantity: quantity}))
	req := httptest.NewRequest(http.MethodPost, "/user/cart", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cartItems(t *testing.T, db *gorm.DB, userID string) []models.CartItem {
	t.Helper()
	var cart models.Cart
	require.NoError(t, db.Where("user_id = ?", userID).First(&cart).Error)
	var items []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.CartID).Find(&items).Error)
	return items
}

func TestGetUserCartCreatesLazily(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	r := newTestRouter(db, user.ID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateCartItemSetsQuantity(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db)
	r := newTestRouter(db, user.ID)

	assert.Equal(t, http.StatusCreated, postQuantity(t, r, product.ID, 3).Code)
	assert.Equal(t, http.StatusOK, postQuantity(t, r, product.ID, 5).Code)

	items := cartItems(t, db, user.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpdateCartItemZeroQuantityRemovesRow(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db)
	r := newTestRouter(db, user.ID)

	require.Equal(t, http.StatusCreated, postQuantity(t, r, product.ID, 2).Code)
	assert.Equal(t, http.StatusOK, postQuantity(t, r, product.ID, -1).Code)

	assert.Empty(t, cartItems(t, db, user.ID))
}

func TestUpdateCartItemUnknownProductRejected(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	r := newTestRouter(db, user.ID)

	assert.Equal(t, http.StatusBadRequest, postQuantity(t, r, 9999, 1).Code)
}

func TestAddCartItemIncrements(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db)
	r := newTestRouter(db, user.ID)

	add := func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/user/cart/%d/add", product.ID), nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	add()
	add()
	add()

	items := cartItems(t, db, user.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestDeleteCartItem(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db)
	r := newTestRouter(db, user.ID)

	require.Equal(t, http.StatusCreated, postQuantity(t, r, product.ID, 2).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/user/cart/%d", product.ID), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, db, user.ID))

	// second delete of the same row
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/user/cart/%d", product.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearUserCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	first := seedProduct(t, db)
	second := seedProduct(t, db)
	r := newTestRouter(db, user.ID)

	require.Equal(t, http.StatusCreated, postQuantity(t, r, first.ID, 1).Code)
	require.Equal(t, http.StatusCreated, postQuantity(t, r, second.ID, 4).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/user/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, db, user.ID))
}
