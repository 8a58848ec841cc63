// File: services/assistant/interface.go
package assistant

import (
	"context"
	"time"

	catalogRepo "concierge/database/repository/catalog"
	ledgerRepo "concierge/database/repository/ledger"
	"concierge/models"
	"concierge/services/intelligence"
)

// ExpiryScheduler schedules a session's idle expiry. Re-scheduling an
// already-scheduled session pushes the deadline out.
type ExpiryScheduler interface {
	Schedule(sessionID string, ttl time.Duration) error
}

// AssistantService drives a full conversational turn: interpret the message
// with the LLM collaborator, resolve the proposed action against the catalog
// and ledger, and produce the reply.
type AssistantService interface {
	ProcessTurn(ctx context.Context, msg models.ChatMessage) (*models.ChatReply, error)
	Inventory(ctx context.Context, category string, cons models.Constraints) ([]models.Offer, error)
	History(ctx context.Context, sessionID string) ([]models.LedgerEntry, error)
	TotalCost(ctx context.Context, sessionID string) (float64, error)
	CloseSession(ctx context.Context, sessionID string) error
}

// DefaultAssistantService implements AssistantService.
type DefaultAssistantService struct {
	Catalog    catalogRepo.CatalogRepository
	Ledger     ledgerRepo.LedgerRepository
	LLM        intelligence.Collaborator
	Contexts   intelligence.ContextStore
	Expiry     ExpiryScheduler
	LLMTimeout time.Duration
	SessionTTL time.Duration

	locks turnLocks
}
