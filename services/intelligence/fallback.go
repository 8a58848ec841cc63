// File: services/intelligence/fallback.go
package intelligence

import (
	"context"

	"concierge/utils"

	"go.uber.org/zap"
)

// FallbackCollaborator tries each configured collaborator in order and
// returns the first successful completion. A ctx already past its deadline
// short-circuits to ErrLLMUnavailable without burning attempts.
type FallbackCollaborator struct {
	chain []Collaborator
}

func NewFallbackCollaborator(chain ...Collaborator) *FallbackCollaborator {
	return &FallbackCollaborator{chain: chain}
}

func (f *FallbackCollaborator) Name() string { return "fallback" }

func (f *FallbackCollaborator) Complete(ctx context.Context, prompt string) (string, error) {
	logger := utils.GetLogger()
	for _, c := range f.chain {
		if ctx.Err() != nil {
			return "", ErrLLMUnavailable
		}
		out, err := c.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		logger.Warn("collaborator failed, trying next",
			zap.String("collaborator", c.Name()), zap.Error(err))
	}
	return "", ErrLLMUnavailable
}
