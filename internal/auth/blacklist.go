// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked token IDs in redis until their natural
// expiry, so signout takes effect before the token lapses.
type Blacklist struct {
	redis *redis.Client
}

func NewBlacklist(redisClient *redis.Client) *Blacklist {
	return &Blacklist{redis: redisClient}
}

func (b *Blacklist) Revoke(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	key := "blacklist:" + jti
	if err := b.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := "blacklist:" + jti

	exists, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}
