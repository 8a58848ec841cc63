// File: concierge/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	ChatHandler   gin.HandlerFunc
	ChatWSHandler gin.HandlerFunc

	// Catalog endpoints
	InventoryHandler gin.HandlerFunc

	// Session endpoints
	SessionHistoryHandler gin.HandlerFunc
	SessionTotalHandler   gin.HandlerFunc
	CloseSessionHandler   gin.HandlerFunc
}
