package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "auth:token:"

type TokenRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenRepository(client *redis.Client, ttl time.Duration) *TokenRepository {
	return &TokenRepository{
		client: client,
		ttl:    ttl,
	}
}

// StoreToken records the active token for a user so logout can invalidate it
// before the JWT itself expires.
func (r *TokenRepository) StoreToken(ctx context.Context, token, userID string) error {
	return r.client.Set(ctx, tokenKeyPrefix+token, userID, r.ttl).Err()
}

func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("token not found or expired")
		}
		return "", err
	}

	return userID, nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, token string) error {
	return r.client.Del(ctx, tokenKeyPrefix+token).Err()
}
