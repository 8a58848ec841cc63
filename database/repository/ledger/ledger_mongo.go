// File: database/repository/ledger/ledger_mongo.go
package ledgerRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"concierge/database"
	"concierge/models"
)

type mongoLedgerRepo struct {
	entries  *mongo.Collection
	counters *mongo.Collection
}

// NewMongoLedgerRepo constructs a new MongoDB LedgerRepository.
func NewMongoLedgerRepo() LedgerRepository {
	db := database.MongoClient.Database("concierge")
	return &mongoLedgerRepo{
		entries:  db.Collection("session_ledger"),
		counters: db.Collection("session_ledger_counters"),
	}
}

// nextSeq atomically increments the session's counter document, giving each
// session a monotonic entry sequence independent of other sessions.
func (r *mongoLedgerRepo) nextSeq(ctx context.Context, sessionID string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *mongoLedgerRepo) Append(ctx context.Context, sessionID string, entry models.LedgerEntry) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	seq, err := r.nextSeq(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	entry.SessionID = sessionID
	entry.Seq = seq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *mongoLedgerRepo) TotalCost(ctx context.Context, sessionID string) (float64, error) {
	entries, err := r.History(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range ActiveEntries(entries) {
		total += e.Price
	}
	return total, nil
}

func (r *mongoLedgerRepo) History(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.entries.Find(ctx,
		bson.M{"sessionId": sessionID},
		options.Find().SetSort(bson.M{"seq": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoLedgerRepo) EntryBySeq(ctx context.Context, sessionID string, seq int64) (*models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.LedgerEntry
	err := r.entries.FindOne(ctx, bson.M{"sessionId": sessionID, "seq": seq}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
