package productcontroller

import (
	"errors"
	"net/http"

	"github.com/Sahiqur/eshop/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProductBySlug returns a single product with its category, related
// products from the same category, and rating stats.
// URL param: /products/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product slug is required"})
			return
		}

		var product models.Product
		if err := db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		var related []models.Product
		if err := db.Where("category_id = ? AND id <> ? AND available = ?", product.CategoryID, product.ID, true).
			Limit(8).
			Find(&related).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve related products"})
			return
		}

		var stats struct {
			Average float64
			Count   int64
		}
		if err := db.Model(&models.Rating{}).
			Where("product_id = ?", product.ID).
			Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
			Scan(&stats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ratings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"product":          product,
			"related_products": related,
			"rating_average":   stats.Average,
			"rating_count":     stats.Count,
		})
	}
}
