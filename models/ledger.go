package models

import "time"

// Ledger entry kinds.
const (
	EntryBook     = "book"
	EntryPurchase = "purchase"
	EntryModify   = "modify"
	EntryCancel   = "cancel"
)

// LedgerEntry is an immutable audit record of a confirmed or reversed action
// within a session. Entries are append-only; a cancellation appends a new
// entry referencing the reversed entry's sequence number instead of touching
// history.
type LedgerEntry struct {
	SessionID   string    `bson:"sessionId" json:"sessionId"`
	Seq         int64     `bson:"seq" json:"seq"`
	Kind        string    `bson:"kind" json:"kind"`
	Ref         SlotRef   `bson:"ref" json:"ref"`
	ItemName    string    `bson:"itemName" json:"itemName"`
	Price       float64   `bson:"price" json:"price"`
	ReversesSeq int64     `bson:"reversesSeq,omitempty" json:"reversesSeq,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Reversal reports whether the entry reverses an earlier one.
func (e LedgerEntry) Reversal() bool {
	return e.Kind == EntryCancel
}
