package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AttemptTracker counts consecutive wrong PINs per user.
type AttemptTracker interface {
	// Locked reports whether the user has used up their attempts.
	Locked(ctx context.Context, userID uuid.UUID) (bool, error)
	// Fail records a wrong PIN and reports whether the user is now locked.
	Fail(ctx context.Context, userID uuid.UUID) (bool, error)
	// Reset clears the counter after a correct PIN or an admin reset.
	Reset(ctx context.Context, userID uuid.UUID) error
}

const keyPrefixPinAttempts = "pin_attempts:"

// RedisAttempts keeps the counter in Redis so every API instance shares it.
// Each failure pushes the expiry out by the lockout window.
type RedisAttempts struct {
	redis       *redis.Client
	maxAttempts int
	lockout     time.Duration
}

func NewRedisAttempts(client *redis.Client, maxAttempts int, lockout time.Duration) *RedisAttempts {
	return &RedisAttempts{redis: client, maxAttempts: maxAttempts, lockout: lockout}
}

func (a *RedisAttempts) Locked(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := a.redis.Get(ctx, keyPrefixPinAttempts+userID.String()).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pin attempts: %w", err)
	}
	return n >= a.maxAttempts, nil
}

func (a *RedisAttempts) Fail(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := keyPrefixPinAttempts + userID.String()

	pipe := a.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, a.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("record pin attempt: %w", err)
	}
	return incr.Val() >= int64(a.maxAttempts), nil
}

func (a *RedisAttempts) Reset(ctx context.Context, userID uuid.UUID) error {
	return a.redis.Del(ctx, keyPrefixPinAttempts+userID.String()).Err()
}

// MemoryAttempts is the single-process tracker used when Redis is disabled.
type MemoryAttempts struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]attemptEntry
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

type attemptEntry struct {
	count   int
	expires time.Time
}

func NewMemoryAttempts(maxAttempts int, lockout time.Duration) *MemoryAttempts {
	return &MemoryAttempts{
		entries:     make(map[uuid.UUID]attemptEntry),
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

func (a *MemoryAttempts) Locked(_ context.Context, userID uuid.UUID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current(userID).count >= a.maxAttempts, nil
}

func (a *MemoryAttempts) Fail(_ context.Context, userID uuid.UUID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.current(userID)
	e.count++
	e.expires = a.now().Add(a.lockout)
	a.entries[userID] = e
	return e.count >= a.maxAttempts, nil
}

func (a *MemoryAttempts) Reset(_ context.Context, userID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, userID)
	return nil
}

// current must be called with mu held. Expired entries are dropped.
func (a *MemoryAttempts) current(userID uuid.UUID) attemptEntry {
	e, ok := a.entries[userID]
	if ok && !a.now().Before(e.expires) {
		delete(a.entries, userID)
		return attemptEntry{}
	}
	return e
}
