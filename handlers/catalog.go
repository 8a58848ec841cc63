package handlers

import (
	"net/http"
	"strconv"

	"concierge/models"
	"concierge/services/assistant"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InventoryHandler lists current availability, filtered by query parameters.
func InventoryHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		category := c.Query("category")
		if category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category query parameter is required"})
			return
		}

		cons := models.Constraints{
			Date:     c.Query("date"),
			Size:     c.Query("size"),
			Activity: c.Query("activity"),
			Keyword:  c.Query("keyword"),
		}
		if raw := c.Query("maxPrice"); raw != "" {
			maxPrice, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be a number"})
				return
			}
			cons.MaxPrice = maxPrice
		}

		offers, err := svc.Inventory(c.Request.Context(), category, cons)
		if err != nil {
			logger.Error("Inventory lookup failed", zap.String("category", category), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inventory lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category, "offers": offers})
	}
}
