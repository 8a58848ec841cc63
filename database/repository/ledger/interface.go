// File: database/repository/ledger/interface.go
package ledgerRepo

import (
	"context"
	"errors"

	"concierge/models"
)

// ErrEntryNotFound means the referenced sequence number does not exist for
// the session.
var ErrEntryNotFound = errors.New("ledger entry not found")

// LedgerRepository records a session's confirmed actions. Entries are
// append-only and never mutated or deleted; a cancellation is a new entry of
// kind cancel referencing the reversed entry's sequence number. The ledger is
// the single source of truth for running totals.
type LedgerRepository interface {
	Append(ctx context.Context, sessionID string, entry models.LedgerEntry) (int64, error)
	TotalCost(ctx context.Context, sessionID string) (float64, error)
	History(ctx context.Context, sessionID string) ([]models.LedgerEntry, error)
	EntryBySeq(ctx context.Context, sessionID string, seq int64) (*models.LedgerEntry, error)
}

// ActiveEntries filters history down to entries that still count toward the
// total: reversals themselves and anything a reversal references are
// excluded.
func ActiveEntries(entries []models.LedgerEntry) []models.LedgerEntry {
	reversed := make(map[int64]bool)
	for _, e := range entries {
		if e.Reversal() && e.ReversesSeq > 0 {
			reversed[e.ReversesSeq] = true
		}
	}
	var active []models.LedgerEntry
	for _, e := range entries {
		if e.Reversal() || reversed[e.Seq] {
			continue
		}
		active = append(active, e)
	}
	return active
}
