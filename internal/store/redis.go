package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// List keys shared by the API and the summary worker.
const (
	SummaryRequestsKey = "abdig:summary:requests"
	SummaryResultsKey  = "abdig:summary:results"
)

// Redis wraps the client used by the redis queue backend.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
