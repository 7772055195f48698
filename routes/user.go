package routes

import (
	cartControllers "github.com/Sahiqur/eshop/controllers/cart"
	orderControllers "github.com/Sahiqur/eshop/controllers/order"
	paymentControllers "github.com/Sahiqur/eshop/controllers/payment"
	ratingControllers "github.com/Sahiqur/eshop/controllers/rating"
	userControllers "github.com/Sahiqur/eshop/controllers/user"
	"github.com/Sahiqur/eshop/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, payments *paymentControllers.Handler) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(db))          // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(db))       // PUT /user/
		userGroup.GET("/profile", userControllers.GetProfile(db)) // GET /user/profile

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(db))                  // GET /user/cart
			cartGroup.POST("/", cartControllers.UpdateCartItem(db))              // POST /user/cart
			cartGroup.POST("/:product_id/add", cartControllers.AddCartItem(db))  // POST /user/cart/:product_id/add
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(db)) // DELETE /user/cart/:product_id
			cartGroup.DELETE("/", cartControllers.ClearUserCart(db))             // DELETE /user/cart
		}

		// ──────────────── Checkout & Payment ────────────────
		userGroup.GET("/checkout", payments.CheckoutForm)           // GET /user/checkout
		userGroup.POST("/checkout", payments.Checkout)              // POST /user/checkout
		userGroup.POST("/payment/process", payments.ProcessPayment) // POST /user/payment/process

		// ──────────────── Orders & Ratings ────────────────
		userGroup.GET("/orders", orderControllers.GetUserOrdersHandler(db))           // GET /user/orders
		userGroup.POST("/products/:id/rating", ratingControllers.RateProduct(db))     // POST /user/products/:id/rating
		userGroup.GET("/products/:id/rating", ratingControllers.GetUserRating(db))    // GET /user/products/:id/rating
	}
}
