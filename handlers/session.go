package handlers

import (
	"net/http"

	"concierge/services/assistant"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHistoryHandler returns the session's full ledger history.
func SessionHistoryHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		entries, err := svc.History(c.Request.Context(), sessionID)
		if err != nil {
			utils.GetLogger().Error("History lookup failed", zap.String("sessionId", sessionID), zap.Error(err))
			utils.JSONError(c, http.StatusServiceUnavailable, "history lookup failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "entries": entries})
	}
}

// SessionTotalHandler returns the session's running total.
func SessionTotalHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		total, err := svc.TotalCost(c.Request.Context(), sessionID)
		if err != nil {
			utils.GetLogger().Error("Total lookup failed", zap.String("sessionId", sessionID), zap.Error(err))
			utils.JSONError(c, http.StatusServiceUnavailable, "total lookup failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "total": total})
	}
}

// CloseSessionHandler drops the session's conversation context.
func CloseSessionHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		if err := svc.CloseSession(c.Request.Context(), sessionID); err != nil {
			utils.GetLogger().Error("Session close failed", zap.String("sessionId", sessionID), zap.Error(err))
			utils.JSONError(c, http.StatusServiceUnavailable, "could not close session", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "status": "closed"})
	}
}
