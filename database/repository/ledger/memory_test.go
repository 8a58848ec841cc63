package ledgerRepo

import (
	"context"
	"testing"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsMonotonicSeq(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()

	seq1, err := repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Deluxe Room 109", Price: 150})
	require.NoError(t, err)
	seq2, err := repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Hot Stone Massage", Price: 90})
	require.NoError(t, err)
	otherSeq, err := repo.Append(ctx, "s2", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Twilight Nine", Price: 45})
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)
	assert.Equal(t, int64(1), otherSeq, "sessions sequence independently")
}

func TestTotalCostSumsActiveEntries(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()

	_, err := repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Deluxe Room 109", Price: 150})
	require.NoError(t, err)
	_, err = repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryPurchase, ItemName: "Comfort Walker", Price: 89.99})
	require.NoError(t, err)

	total, err := repo.TotalCost(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 239.99, total, 0.001)
}

func TestCancelIsAReversingEntry(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()

	seq, err := repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Deluxe Room 109", Price: 150})
	require.NoError(t, err)
	_, err = repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Hot Stone Massage", Price: 90})
	require.NoError(t, err)
	_, err = repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryCancel, ItemName: "Deluxe Room 109", Price: 150, ReversesSeq: seq})
	require.NoError(t, err)

	total, err := repo.TotalCost(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 90, total, 0.001)

	// History keeps everything: the booking, the massage, and the reversal.
	entries, err := repo.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	active := ActiveEntries(entries)
	require.Len(t, active, 1)
	assert.Equal(t, "Hot Stone Massage", active[0].ItemName)
}

func TestEntryBySeq(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()

	seq, err := repo.Append(ctx, "s1", models.LedgerEntry{Kind: models.EntryBook, ItemName: "Garden Suite 204", Price: 300})
	require.NoError(t, err)

	entry, err := repo.EntryBySeq(ctx, "s1", seq)
	require.NoError(t, err)
	assert.Equal(t, "Garden Suite 204", entry.ItemName)

	_, err = repo.EntryBySeq(ctx, "s1", 99)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = repo.EntryBySeq(ctx, "other", seq)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
