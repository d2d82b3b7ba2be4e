package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

// Session slots of one storefront visitor
const (
	slotLanguage = "language"
	slotBranch   = "branch"
	slotCart     = "cart"
)

// Session persists the language, selected branch and cart of a visitor.
// Every slot expires after ttl of inactivity.
type Session struct {
	c   *Client
	id  string
	ttl time.Duration
}

// Session returns the slot store for a visitor session id
func (c *Client) Session(id string, ttl time.Duration) *Session {
	return &Session{c: c, id: id, ttl: ttl}
}

// ID returns the visitor session id
func (s *Session) ID() string {
	return s.id
}

func (s *Session) key(slot string) string {
	return fmt.Sprintf("session:%s:%s", s.id, slot)
}

func (s *Session) get(ctx context.Context, slot string) (string, error) {
	val, err := s.c.rdb.Get(ctx, s.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *Session) set(ctx context.Context, slot, value string) error {
	return s.c.rdb.Set(ctx, s.key(slot), value, s.ttl).Err()
}

// LoadLanguage returns the stored language or "" when none is stored
func (s *Session) LoadLanguage(ctx context.Context) (string, error) {
	return s.get(ctx, slotLanguage)
}

// SaveLanguage stores the language preference
func (s *Session) SaveLanguage(ctx context.Context, lang string) error {
	return s.set(ctx, slotLanguage, lang)
}

// LoadBranch returns the stored branch id or "" when none is stored
func (s *Session) LoadBranch(ctx context.Context) (string, error) {
	return s.get(ctx, slotBranch)
}

// SaveBranch stores the selected branch id
func (s *Session) SaveBranch(ctx context.Context, branchID string) error {
	return s.set(ctx, slotBranch, branchID)
}

// LoadCart decodes the stored cart
func (s *Session) LoadCart(ctx context.Context) ([]models.CartLine, error) {
	raw, err := s.get(ctx, slotCart)
	if err != nil || raw == "" {
		return nil, err
	}
	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

// SaveCart stores the whole cart
func (s *Session) SaveCart(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.set(ctx, slotCart, string(data))
}

// Touch extends the expiry of every slot that exists
func (s *Session) Touch(ctx context.Context) error {
	keys := []string{s.key(slotLanguage), s.key(slotBranch), s.key(slotCart)}
	_, err := s.c.touchScript.Run(ctx, s.c.rdb, keys, int(s.ttl.Seconds())).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("touch session script failed: %w", err)
	}
	return nil
}
