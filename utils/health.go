package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Store     bool      `json:"store"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Pinger is anything whose liveness can be probed; the document store backends implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth probes the store and redis once and stores the snapshot.
func CheckHealth(ctx context.Context, store Pinger, redisClient *redis.Client) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := HealthStatus{CheckedAt: time.Now()}
	if store != nil {
		status.Store = store.Ping(ctx) == nil
	}
	if redisClient != nil {
		status.Redis = redisClient.Ping(ctx).Err() == nil
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, store Pinger, redisClient *redis.Client) {
	CheckHealth(ctx, store, redisClient)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, store, redisClient)
			}
		}
	}()
}
