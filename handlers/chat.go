package handlers

import (
	"errors"
	"net/http"

	"concierge/models"
	"concierge/services/assistant"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForAssistError maps service error codes to HTTP statuses.
func statusForAssistError(err error) (int, string) {
	var ae *assistant.AssistError
	if errors.As(err, &ae) {
		switch ae.Code {
		case assistant.CodeSessionBusy:
			return http.StatusConflict, ae.Message
		case assistant.CodeStoreUnavailable:
			return http.StatusServiceUnavailable, ae.Message
		}
		return http.StatusInternalServerError, ae.Message
	}
	return http.StatusInternalServerError, "internal error"
}

// ChatHandler processes one conversational turn over HTTP.
func ChatHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var msg models.ChatMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			logger.Error("Invalid chat request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		reply, err := svc.ProcessTurn(c.Request.Context(), msg)
		if err != nil {
			logger.Error("Chat turn failed", zap.String("sessionId", msg.SessionID), zap.Error(err))
			status, message := statusForAssistError(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}
