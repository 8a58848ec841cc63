package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest reachability snapshot of the server's backing
// services, surfaced on the health endpoint.
type HealthStatus struct {
	Mongo        bool      `json:"mongo"`
	Cache        bool      `json:"cache"`
	ContextCache bool      `json:"contextCache"`
	CheckedAt    time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func takeSnapshot(ctx context.Context, cache, contextCache *redis.Client, mongoClient *mongo.Client) {
	snapshot := HealthStatus{
		Mongo:        mongoClient == nil || mongoClient.Ping(ctx, nil) == nil,
		Cache:        cache.Ping(ctx).Err() == nil,
		ContextCache: contextCache.Ping(ctx).Err() == nil,
		CheckedAt:    time.Now(),
	}

	healthMu.Lock()
	currentHealth = snapshot
	healthMu.Unlock()
}

// StartHealthMonitor pings the backing services and keeps the snapshot
// current, refreshing every minute. The first snapshot is taken before the
// monitor goroutine starts so the health endpoint never serves the zero
// value. mongoClient may be nil when the server runs on the in-memory
// backend; a nil client reports as healthy.
func StartHealthMonitor(cache, contextCache *redis.Client, mongoClient *mongo.Client) {
	ctx := context.Background()
	takeSnapshot(ctx, cache, contextCache, mongoClient)

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			takeSnapshot(ctx, cache, contextCache, mongoClient)
		}
	}()
}
