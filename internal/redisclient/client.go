package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

//go:embed scripts/touch_session.lua
var touchSessionScript string

// ErrSessionNotFound is returned for unknown or expired admin sessions
var ErrSessionNotFound = errors.New("session not found")

// ErrLockHeld is returned when another request owns a lock
var ErrLockHeld = errors.New("lock held")

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
	touchScript   *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromRedis(rdb), nil
}

// NewFromRedis wraps an existing go-redis client
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
		touchScript:   redis.NewScript(touchSessionScript),
	}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireLock takes a lock and returns the owner token needed to release it
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	ok, err := c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

// WaitLock retries AcquireLock until it succeeds or ctx is done
func (c *Client) WaitLock(ctx context.Context, lockKey string, ttl time.Duration) (string, error) {
	for {
		token, err := c.AcquireLock(ctx, lockKey, ttl)
		if !errors.Is(err, ErrLockHeld) {
			return token, err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// ReleaseLock releases a lock if token still owns it
func (c *Client) ReleaseLock(ctx context.Context, lockKey, token string) error {
	_, err := c.releaseScript.Run(ctx, c.rdb, []string{fmt.Sprintf("lock:%s", lockKey)}, token).Result()
	if err != nil {
		return fmt.Errorf("release lock script failed: %w", err)
	}
	return nil
}

// SetAdminSession stores an admin session token with TTL
func (c *Client) SetAdminSession(ctx context.Context, tokenID, email string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("admin-session:%s", tokenID), email, ttl).Err()
}

// GetAdminSession returns the email bound to an admin session
func (c *Client) GetAdminSession(ctx context.Context, tokenID string) (string, error) {
	email, err := c.rdb.Get(ctx, fmt.Sprintf("admin-session:%s", tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return email, err
}

// DeleteAdminSession ends an admin session
func (c *Client) DeleteAdminSession(ctx context.Context, tokenID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("admin-session:%s", tokenID)).Err()
}
