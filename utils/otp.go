package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetCooldown is how long a customer must wait between password reset
// requests. Keyed in Redis so the limit holds across server instances.
const ResetCooldown = 2 * time.Minute

// CheckResetCooldown marks the identity as throttled and returns the
// remaining wait if a previous request is still inside the cooldown window.
func CheckResetCooldown(ctx context.Context, rdb *redis.Client, email string) (time.Duration, error) {
	key := fmt.Sprintf("reset_cooldown:%s", email)

	ok, err := rdb.SetNX(ctx, key, 1, ResetCooldown).Result()
	if err != nil {
		return 0, err
	}
	if ok {
		return 0, nil
	}

	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		ttl = 0
	}
	return ttl, nil
}
