package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository handles session persistence in Redis. Expiry is
// delegated to Redis TTLs, so expired sessions disappear on their own.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// sessionKey generates the Redis key for a session token digest
func sessionKey(tokenHash string) string {
	return fmt.Sprintf("session:%s", tokenHash)
}

// Store persists a session hash with a TTL matching its expiry.
func (r *RedisSessionRepository) Store(ctx context.Context, tokenHash string, session *Session) error {
	key := sessionKey(tokenHash)

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session expiration time is in the past")
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":    session.UserID.String(),
		"email":      session.Email,
		"created_at": session.CreatedAt.Unix(),
		"expires_at": session.ExpiresAt.Unix(),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get retrieves a session by its token digest.
func (r *RedisSessionRepository) Get(ctx context.Context, tokenHash string) (*Session, error) {
	data, err := r.client.HGetAll(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse session user id: %w", err)
	}

	createdAtUnix, _ := strconv.ParseInt(data["created_at"], 10, 64)
	expiresAtUnix, _ := strconv.ParseInt(data["expires_at"], 10, 64)

	return &Session{
		UserID:    userID,
		Email:     data["email"],
		CreatedAt: time.Unix(createdAtUnix, 0),
		ExpiresAt: time.Unix(expiresAtUnix, 0),
	}, nil
}

// Delete removes a session. Deleting an absent key is a no-op in Redis, which
// gives us idempotent logout for free.
func (r *RedisSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if err := r.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
