package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/roach88/foodsheet/internal/cart"
)

const redisKeyPrefix = "foodsheet:session:"

// RedisManager stores each session as a Redis hash with a TTL, so sessions
// survive restarts and can be shared by several server processes.
type RedisManager struct {
	client *redis.Client
	cfg    Config
}

// NewRedisManager connects to the Redis server at redisURL
// (redis://[:password@]host:port/db) and checks the connection.
func NewRedisManager(ctx context.Context, redisURL string, cfg Config) (*RedisManager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client, cfg), nil
}

// NewRedisManagerWithClient wraps an existing client. Close closes it.
func NewRedisManagerWithClient(client *redis.Client, cfg Config) *RedisManager {
	return &RedisManager{client: client, cfg: cfg.withDefaults()}
}

func (r *RedisManager) sessionKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisManager) Create(ctx context.Context) (*Session, error) {
	s := newSession(r.cfg)
	if err := r.write(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (r *RedisManager) Get(ctx context.Context, id string) (*Session, error) {
	result, err := r.client.HGetAll(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrSessionNotFound
	}

	s := &Session{ID: id, Page: Page(result["page"]), Cart: cart.New()}
	if v, ok := result["cart"]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), s.Cart); err != nil {
			return nil, fmt.Errorf("session %s: decode cart: %w", id, err)
		}
	}
	s.CreatedAt = parseTime(result["created_at"])
	s.UpdatedAt = parseTime(result["updated_at"])
	s.ExpiresAt = parseTime(result["expires_at"])
	return s, nil
}

func (r *RedisManager) Save(ctx context.Context, s *Session) error {
	n, err := r.client.Exists(ctx, r.sessionKey(s.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	now := r.cfg.Clock.Now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(r.cfg.TTL)
	if err := r.write(ctx, s); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (r *RedisManager) write(ctx context.Context, s *Session) error {
	c := s.Cart
	if c == nil {
		c = cart.New()
	}
	cartJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	key := r.sessionKey(s.ID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"id":         s.ID,
		"page":       string(s.Page),
		"cart":       string(cartJSON),
		"created_at": s.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": s.UpdatedAt.Format(time.RFC3339Nano),
		"expires_at": s.ExpiresAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, r.cfg.TTL)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisManager) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisManager) Close() error {
	return r.client.Close()
}

// parseTime reads a timestamp written by write; bad input yields the zero
// time.
func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ Manager = (*RedisManager)(nil)
