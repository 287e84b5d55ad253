package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache is a short-TTL read-through cache of executed result sets,
// keyed by a hash of the effective SQL text. Cache failures are logged and
// swallowed; the cache must never block or fail the pipeline.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	log.Println("🚀 Initialized query result cache: Redis")
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) Get(ctx context.Context, sql string) ([]map[string]interface{}, bool) {
	data, err := c.client.Get(ctx, cacheKey(sql)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("ResultCache -> Get -> error: %v", err)
		return nil, false
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		log.Printf("ResultCache -> Get -> corrupt entry dropped: %v", err)
		_ = c.client.Del(ctx, cacheKey(sql)).Err()
		return nil, false
	}
	return rows, true
}

func (c *ResultCache) Set(ctx context.Context, sql string, rows []map[string]interface{}) {
	data, err := json.Marshal(rows)
	if err != nil {
		log.Printf("ResultCache -> Set -> marshal error: %v", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(sql), string(data), c.ttl).Err(); err != nil {
		log.Printf("ResultCache -> Set -> error: %v", err)
	}
}

func cacheKey(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return fmt.Sprintf("resultcache:%s", hex.EncodeToString(sum[:]))
}
