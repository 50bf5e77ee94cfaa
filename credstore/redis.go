package credstore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// Redis stores the token slot in a Redis key, for kiosk deployments where
// several terminals present one shared operator session. The synchronous
// Store contract is kept by bounding every call with a short internal
// timeout; backend failures degrade to absence (Read) or a logged no-op
// (Save, Clear) rather than surfacing as errors.
type Redis struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedis creates a Redis-backed store under key. A non-zero ttl bounds how
// long an untouched slot survives; zero keeps it until Clear.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "herdgate:token"
	}
	return &Redis{
		client:  client,
		key:     key,
		ttl:     ttl,
		timeout: defaultRedisTimeout,
	}
}

func (r *Redis) Save(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		log.Print("herdgate: redis credential save failed")
	}
}

func (r *Redis) Read() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Print("herdgate: redis credential read failed")
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

func (r *Redis) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		log.Print("herdgate: redis credential clear failed")
	}
}
