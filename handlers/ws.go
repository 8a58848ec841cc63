package handlers

import (
	"context"
	"time"

	"concierge/models"
	"concierge/services/assistant"
	"concierge/utils"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatWSHandler upgrades to a websocket and runs the chat loop: one inbound
// message, one reply, the session id carried across the connection.
func ChatWSHandler(svc assistant.AssistantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Error("Websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusInternalError, "closing")

		ctx := c.Request.Context()
		sessionID := c.Query("sessionId")

		for {
			var msg models.ChatMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
					conn.Close(websocket.StatusNormalClosure, "bye")
					return
				}
				logger.Warn("Websocket read failed", zap.Error(err))
				conn.Close(websocket.StatusUnsupportedData, "bad message")
				return
			}
			if msg.SessionID == "" {
				msg.SessionID = sessionID
			}

			reply, err := svc.ProcessTurn(ctx, msg)
			if err != nil {
				_, message := statusForAssistError(err)
				reply = &models.ChatReply{
					SessionID: msg.SessionID,
					Kind:      models.ReplyError,
					Response:  message,
				}
			}
			sessionID = reply.SessionID

			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = wsjson.Write(writeCtx, conn, reply)
			cancel()
			if err != nil {
				logger.Warn("Websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
