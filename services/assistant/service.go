// File: services/assistant/service.go
package assistant

import (
	"context"
	"time"

	"concierge/models"
	"concierge/services/intelligence"
	"concierge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const degradedReply = "I'm sorry, I'm having trouble understanding requests right now. Nothing has been booked or changed; please try again in a moment."

// ProcessTurn runs one conversational turn end to end. Turns within a session
// are strictly serialized; a message arriving while another is in flight is
// refused with SESSION_BUSY.
func (s *DefaultAssistantService) ProcessTurn(ctx context.Context, msg models.ChatMessage) (*models.ChatReply, error) {
	logger := utils.GetLogger()

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	release, ok := s.locks.tryAcquire(sessionID)
	if !ok {
		return nil, NewSessionBusyError()
	}
	defer release()

	convCtx, err := s.Contexts.Get(ctx, sessionID)
	if err != nil {
		logger.Warn("conversation context load failed, starting fresh",
			zap.String("sessionId", sessionID), zap.Error(err))
		convCtx = &models.ConversationContext{SessionID: sessionID}
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.LLMTimeout)
	completion, err := s.LLM.Complete(llmCtx, intelligence.BuildPrompt(convCtx, msg.Content))
	cancel()
	if err != nil {
		// Degrade without touching catalog or ledger.
		logger.Error("collaborator unavailable, degrading turn",
			zap.String("sessionId", sessionID), zap.Error(err))
		reply := &models.ChatReply{
			SessionID: sessionID,
			Kind:      models.ReplyError,
			Response:  degradedReply,
		}
		s.recordTurn(ctx, convCtx, msg.Content, reply.Response, "")
		return reply, nil
	}

	intent := intelligence.ParseIntent(completion)
	res, err := s.resolve(ctx, sessionID, intent)
	if err != nil {
		return nil, err
	}

	reply := &models.ChatReply{
		SessionID: sessionID,
		Kind:      res.Kind,
		Response:  res.Text,
		Offers:    res.Offers,
		Entry:     res.Entry,
	}
	s.recordTurn(ctx, convCtx, msg.Content, reply.Response, intent.Kind)

	if s.Expiry != nil {
		if err := s.Expiry.Schedule(sessionID, s.SessionTTL); err != nil {
			logger.Warn("session expiry scheduling failed",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
	return reply, nil
}

// recordTurn appends the exchange to the conversation context. Context is a
// convenience for the collaborator, never a source of monetary truth, so a
// failed save is logged and the turn still succeeds.
func (s *DefaultAssistantService) recordTurn(ctx context.Context, convCtx *models.ConversationContext, customer, agent, action string) {
	convCtx.Turns = append(convCtx.Turns, models.Turn{
		Customer: customer,
		Agent:    agent,
		Action:   action,
		At:       time.Now(),
	})
	if err := s.Contexts.Set(ctx, convCtx.SessionID, convCtx); err != nil {
		utils.GetLogger().Warn("conversation context save failed",
			zap.String("sessionId", convCtx.SessionID), zap.Error(err))
	}
}

func (s *DefaultAssistantService) Inventory(ctx context.Context, category string, cons models.Constraints) ([]models.Offer, error) {
	return s.Catalog.FindAvailable(ctx, category, cons)
}

func (s *DefaultAssistantService) History(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	return s.Ledger.History(ctx, sessionID)
}

func (s *DefaultAssistantService) TotalCost(ctx context.Context, sessionID string) (float64, error) {
	return s.Ledger.TotalCost(ctx, sessionID)
}

// CloseSession drops the conversation context and the session's turn lock.
// Ledger history is kept; it is the audit record of what was committed.
func (s *DefaultAssistantService) CloseSession(ctx context.Context, sessionID string) error {
	s.locks.forget(sessionID)
	return s.Contexts.Clear(ctx, sessionID)
}
