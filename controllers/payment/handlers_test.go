package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sahiqur/eshop/gateway"
	"github.com/Sahiqur/eshop/models"
	"github.com/Sahiqur/eshop/notify"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGateway struct {
	result gateway.InitiationResult
	calls  int
}

func (s *stubGateway) Initiate(ctx context.Context, order *models.Order, session *models.PaymentSession) gateway.InitiationResult {
	s.calls++
	return s.result
}

func newTestRouter(db *gorm.DB, gw gateway.Initiator, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db, gw, notify.Noop{}, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.GET("/user/checkout", h.CheckoutForm)
	r.POST("/user/checkout", h.Checkout)
	r.POST("/user/payment/process", h.ProcessPayment)
	r.GET("/payment/success/:token", h.PaymentSuccess)
	r.GET("/payment/fail/:token", h.PaymentFail)
	r.GET("/payment/cancel/:token", h.PaymentCancel)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestCheckoutEndpointEmptyCartRedirectsToCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	w, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/cart", body["redirect"])

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
}

func TestCheckoutEndpointInvalidFormRejected(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 1)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	// Missing required shipping fields.
	w, body := doJSON(t, r, http.MethodPost, "/user/checkout", map[string]string{"first_name": "Only"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The prefill comes back with the field errors so the client can
	// re-render the form.
	prefill, ok := body["prefill"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.Email, prefill["email"])
	assert.Equal(t, user.FirstName, prefill["first_name"])

	// No state was mutated.
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
}

func TestCheckoutFormPrefillsProfile(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 1)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	w, body := doJSON(t, r, http.MethodGet, "/user/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	prefill, ok := body["prefill"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.FirstName, prefill["first_name"])
	assert.Equal(t, user.Email, prefill["email"])
	assert.Equal(t, 10.0, body["total"])
}

func TestCheckoutFormMissingCartRedirectsToCart(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, &stubGateway{}, "ghost-user")

	w, body := doJSON(t, r, http.MethodGet, "/user/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/cart", body["redirect"])
}

func TestCheckoutFormDatabaseFailureIs500(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 1)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w, _ := doJSON(t, r, http.MethodGet, "/user/checkout", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProcessPaymentReturnsGatewayURL(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 1)

	gw := &stubGateway{result: gateway.InitiationResult{
		Status:         gateway.StatusSuccess,
		GatewayPageURL: "https://gateway.example/pay/abc",
	}}
	r := newTestRouter(db, gw, user.ID)

	_, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/user/payment/process", map[string]string{"checkout_token": token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://gateway.example/pay/abc", body["payment_url"])
	assert.Equal(t, 1, gw.calls)
}

func TestProcessPaymentGatewayFailureLeavesOrderPending(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 1)

	gw := &stubGateway{result: gateway.InitiationResult{
		Status: gateway.StatusFailed,
		Reason: "store disabled",
	}}
	r := newTestRouter(db, gw, user.ID)

	_, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/user/payment/process", map[string]string{"checkout_token": token})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "/checkout", body["redirect"])

	var order models.Order
	require.NoError(t, db.Order("id DESC").First(&order).Error)
	assert.False(t, order.Paid)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestProcessPaymentWithoutTokenRedirectsHome(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	w, body := doJSON(t, r, http.MethodPost, "/user/payment/process", map[string]string{})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/", body["redirect"])
}

func TestSuccessCallbackConfirmsAndIsIdempotentOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 2)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	_, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	w, _ := doJSON(t, r, http.MethodGet, "/payment/success/"+token+"?val_id=VAL9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/payment/success/"+token+"?val_id=VAL9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)

	var order models.Order
	require.NoError(t, db.Order("id DESC").First(&order).Error)
	assert.True(t, order.Paid)
	assert.Equal(t, "VAL9", order.TransactionID)
}

func TestFailCallbackRedirectsToCheckout(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 2)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	_, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	w, body := doJSON(t, r, http.MethodGet, "/payment/fail/"+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/checkout", body["redirect"])

	// Selection is back in the cart.
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
}

func TestCancelCallbackRedirectsToCartView(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 2)
	r := newTestRouter(db, &stubGateway{}, user.ID)

	_, body := doJSON(t, r, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	w, body := doJSON(t, r, http.MethodGet, "/payment/cancel/"+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/cart", body["redirect"])
}

func TestCallbackRejectsForeignUser(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	attacker := seedUser(t, db)
	product := seedProduct(t, db, "Widget", 10, 5)
	addToCart(t, db, user, product, 2)

	owner := newTestRouter(db, &stubGateway{}, user.ID)
	_, body := doJSON(t, owner, http.MethodPost, "/user/checkout", shippingForm())
	token := body["checkout_token"].(string)

	foreign := newTestRouter(db, &stubGateway{}, attacker.ID)
	w, _ := doJSON(t, foreign, http.MethodGet, "/payment/success/"+token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var order models.Order
	require.NoError(t, db.Order("id DESC").First(&order).Error)
	assert.False(t, order.Paid)
}
