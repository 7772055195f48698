package productcontroller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sahiqur/eshop/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var sortColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"name":       true,
}

// GetProducts lists available products with catalog filters: category slug,
// price range, minimum average rating, and free-text search over name,
// description, and category name.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("search")
		categorySlug := c.Query("category")
		minPriceStr := c.Query("min_price")
		maxPriceStr := c.Query("max_price")
		ratingStr := c.Query("rating")
		sortBy := c.DefaultQuery("sort_by", "created_at")
		sortOrder := strings.ToLower(c.DefaultQuery("order", "desc"))
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}
		if !sortColumns[sortBy] {
			sortBy = "created_at"
		}

		query := db.Model(&models.Product{}).
			Preload("Category").
			Joins("LEFT JOIN categories ON categories.id = products.category_id").
			Where("products.available = ?", true)

		if search != "" {
			likePattern := "%" + strings.ToLower(search) + "%"
			query = query.Where(`
				LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ?
			`, likePattern, likePattern, likePattern)
		}

		if categorySlug != "" {
			query = query.Where("categories.slug = ?", categorySlug)
		}

		if minPriceStr != "" {
			if mp, err := strconv.ParseFloat(minPriceStr, 64); err == nil {
				query = query.Where("products.price >= ?", mp)
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
				return
			}
		}
		if maxPriceStr != "" {
			if mp, err := strconv.ParseFloat(maxPriceStr, 64); err == nil {
				query = query.Where("products.price <= ?", mp)
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
				return
			}
		}

		if ratingStr != "" {
			if minRating, err := strconv.ParseFloat(ratingStr, 64); err == nil {
				query = query.Where(
					"(SELECT AVG(score) FROM ratings WHERE ratings.product_id = products.id) >= ?",
					minRating,
				)
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating"})
				return
			}
		}

		orderClause := fmt.Sprintf("products.%s %s", sortBy, sortOrder)
		var products []models.Product
		if err := query.Order(orderClause).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

// Home returns the landing payload: the eight newest available products plus
// all categories.
func Home(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var featured []models.Product
		if err := db.Where("available = ?", true).
			Order("created_at DESC").
			Limit(8).
			Find(&featured).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		var categories []models.Category
		if err := db.Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"featured_products": featured,
			"categories":        categories,
		})
	}
}
