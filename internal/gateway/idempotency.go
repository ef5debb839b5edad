package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache replays the response of an already-seen Idempotency-Key so
// a retried POST does not emit a second command.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp Response) error
}

// Idempotency is the Redis-backed ResponseCache.
type Idempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotency(client *redis.Client, ttl time.Duration) *Idempotency {
	return &Idempotency{client: client, ttl: ttl}
}

type Response struct {
	Status int
	Result []byte
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	val, err := i.client.Get(ctx, "idemp:"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp Response
	err = json.Unmarshal(val, &resp)
	return &resp, err
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, "idemp:"+key, data, i.ttl).Err()
}
