package cache

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

// RedisCache 是基于 Redis 的 EmbeddingCache 实现，多副本共享。
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建一个 RedisCache 实例。
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get 返回缓存的向量, 未命中或反序列化失败时返回 false。
func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		// redis.Nil 和连接错误同样处理: 当作未命中。
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, false
	}
	return vector, true
}

// Put 将向量序列化后写入 Redis, 写入失败静默忽略。
func (c *RedisCache) Put(ctx context.Context, text string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(text), data, entryTTL)
}

var _ EmbeddingCache = (*RedisCache)(nil)
