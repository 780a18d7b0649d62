package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/banclabs/cajero/pkg/helpers"
)

// CodeStore holds pending email verification codes with a TTL.
type CodeStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	Delete(ctx context.Context, email string) error
}

// RedisCodes keeps codes in Redis, surviving ledger restarts in
// development setups that run one.
type RedisCodes struct {
	rdb *redis.Client
}

func NewRedisCodes(rdb *redis.Client) *RedisCodes {
	return &RedisCodes{rdb: rdb}
}

func (c *RedisCodes) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, helpers.KeyVerificationCode(email), code, ttl).Err()
}

func (c *RedisCodes) Get(ctx context.Context, email string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, helpers.KeyVerificationCode(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCodes) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, helpers.KeyVerificationCode(email)).Err()
}

type memoryCode struct {
	code      string
	expiresAt time.Time
}

// MemoryCodes is the fallback code store when no Redis is configured.
type MemoryCodes struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	now   func() time.Time
}

func NewMemoryCodes() *MemoryCodes {
	return &MemoryCodes{codes: make(map[string]memoryCode), now: time.Now}
}

func (c *MemoryCodes) Put(_ context.Context, email, code string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = memoryCode{code: code, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCodes) Get(_ context.Context, email string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mc, ok := c.codes[email]
	if !ok {
		return "", false, nil
	}
	if c.now().After(mc.expiresAt) {
		delete(c.codes, email)
		return "", false, nil
	}
	return mc.code, true, nil
}

func (c *MemoryCodes) Delete(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, email)
	return nil
}
