package main

import (
	"log"
	"time"

	"github.com/Sahiqur/eshop/config"
	paymentControllers "github.com/Sahiqur/eshop/controllers/payment"
	"github.com/Sahiqur/eshop/gateway"
	"github.com/Sahiqur/eshop/models"
	"github.com/Sahiqur/eshop/notify"
	"github.com/Sahiqur/eshop/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Init DB
	db := initDatabase(cfg)

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Rating{},
		&models.PaymentSession{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Payment collaborators
	gw := gateway.NewSSLCommerzClient(gateway.Config{
		StoreID:         cfg.SSLCommerzStoreID,
		StorePassword:   cfg.SSLCommerzStorePass,
		APIURL:          cfg.SSLCommerzAPIURL,
		Currency:        cfg.SSLCommerzCurrency,
		CallbackBaseURL: cfg.PublicBaseURL,
	}, logger)

	var mailer notify.Sender = notify.Noop{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewMailer(notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}, logger)
	} else {
		log.Println("⚠️ SMTP not configured, order confirmations disabled")
	}

	payments := paymentControllers.NewHandler(db, gw, mailer, logger)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, db, payments)

	// Start server
	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	return db
}
