package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"concierge/config"
	"concierge/services/intelligence"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeSessionExpire = "session:expire"

type expirePayload struct {
	SessionID string `json:"sessionId"`
}

// ExpiryWorker enqueues and processes delayed session-expiry tasks. Each
// processed turn pushes the session's expiry out; when the task finally
// fires the conversation context is dropped.
type ExpiryWorker struct {
	client *asynq.Client
}

// InitExpiryWorker starts the async worker in background and returns the
// scheduler handle used by the assistant service.
func InitExpiryWorker(contexts intelligence.ContextStore) *ExpiryWorker {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisExpiryDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionExpire, handleExpireTask(contexts))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	return &ExpiryWorker{client: asynq.NewClient(redisOpts)}
}

// Schedule enqueues an expiry task for the session firing after ttl. The
// task id is the session id, so re-scheduling replaces the pending task and
// the deadline slides forward with activity.
func (w *ExpiryWorker) Schedule(sessionID string, ttl time.Duration) error {
	payload, err := json.Marshal(expirePayload{SessionID: sessionID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeSessionExpire, payload)
	_, err = w.client.Enqueue(task,
		asynq.ProcessIn(ttl),
		asynq.TaskID("expire:"+sessionID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Replace the pending deadline with the new one.
		inspector := asynq.NewInspector(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisExpiryDB,
		})
		defer inspector.Close()
		if derr := inspector.DeleteTask("default", "expire:"+sessionID); derr != nil {
			return derr
		}
		_, err = w.client.Enqueue(task,
			asynq.ProcessIn(ttl),
			asynq.TaskID("expire:"+sessionID),
		)
	}
	return err
}

func handleExpireTask(contexts intelligence.ContextStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p expirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[ExpiryHandler] ⏰ Expiring idle session %s", p.SessionID)
		if err := contexts.Clear(ctx, p.SessionID); err != nil {
			log.Printf("[ExpiryHandler] ❌ Failed to clear session context: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisExpiryDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ExpiryWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
