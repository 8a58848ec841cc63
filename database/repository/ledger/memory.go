// File: database/repository/ledger/memory.go
package ledgerRepo

import (
	"context"
	"sync"
	"time"

	"concierge/models"
)

type memoryLedgerRepo struct {
	mu      sync.Mutex
	entries map[string][]models.LedgerEntry
}

// NewMemoryLedgerRepo constructs the in-memory LedgerRepository used in
// development mode and tests.
func NewMemoryLedgerRepo() LedgerRepository {
	return &memoryLedgerRepo{
		entries: make(map[string][]models.LedgerEntry),
	}
}

func (r *memoryLedgerRepo) Append(ctx context.Context, sessionID string, entry models.LedgerEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.SessionID = sessionID
	entry.Seq = int64(len(r.entries[sessionID]) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries[sessionID] = append(r.entries[sessionID], entry)
	return entry.Seq, nil
}

func (r *memoryLedgerRepo) TotalCost(ctx context.Context, sessionID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, e := range ActiveEntries(r.entries[sessionID]) {
		total += e.Price
	}
	return total, nil
}

func (r *memoryLedgerRepo) History(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.LedgerEntry, len(r.entries[sessionID]))
	copy(out, r.entries[sessionID])
	return out, nil
}

func (r *memoryLedgerRepo) EntryBySeq(ctx context.Context, sessionID string, seq int64) (*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries[sessionID] {
		if e.Seq == seq {
			copied := e
			return &copied, nil
		}
	}
	return nil, ErrEntryNotFound
}
