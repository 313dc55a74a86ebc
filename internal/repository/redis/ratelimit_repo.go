package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const RateLimitPrefix = "rl"

// incrWithTTL bumps the counter and starts its window on the first hit.
var incrWithTTL = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type RateLimitRepository struct {
	Client *redis.Client
}

// Hit counts one attempt under key and returns the count in the window.
func (r *RateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrWithTTL.Run(ctx, r.Client, []string{RateLimitPrefix + ":" + key}, window.Milliseconds()).Int64()
}
