package routes

import (
	paymentControllers "github.com/Sahiqur/eshop/controllers/payment"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up Auth, Public, User,
// Payment, and Admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, payments *paymentControllers.Handler) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Public catalog routes
	SetupPublicRoutes(r, db)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db, payments)

	// Gateway callback routes (JWT-protected)
	SetupPaymentRoutes(r, payments)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db)
}
