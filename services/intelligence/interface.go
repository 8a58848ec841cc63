// File: services/intelligence/interface.go
package intelligence

import (
	"context"
	"errors"

	"concierge/models"
)

// ErrLLMUnavailable means every configured collaborator failed or timed out.
// The assistant degrades to an apology turn; it never mutates the store on
// this error.
var ErrLLMUnavailable = errors.New("language model unavailable")

// Collaborator produces a completion for a prompt. Implementations must
// honour ctx cancellation so the per-turn deadline bounds the whole call.
type Collaborator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ContextStore persists per-session conversation context between turns.
type ContextStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationContext, error)
	Set(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error
	Clear(ctx context.Context, sessionID string) error
}
