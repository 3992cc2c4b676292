package criteria

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"apartment-scout/internal/common/logger"
)

// Cache memoizes synthesized criteria per description so repeated searches with
// the same wording skip an inference round trip. It is strictly best-effort:
// a broken Redis never fails a search.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "criteria-cache"}),
	}
}

func cacheKey(description string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(description)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "criteria:" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, description string) (*UserCriteria, bool) {
	key := cacheKey(description)
	data, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var crit UserCriteria
	if err := json.Unmarshal([]byte(data), &crit); err != nil {
		// Stale or corrupted entry, drop it.
		c.rdb.Del(ctx, key)
		return nil, false
	}
	return &crit, true
}

func (c *Cache) Put(ctx context.Context, description string, crit *UserCriteria) {
	data, err := json.Marshal(crit)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(description), data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
