package cache

import (
	"context"

	"Athena_1.0/pkg/util"
)

// 进程内缓存的容量上限。
const lruCapacity = 1024

// LocalCache 是基于进程内 LRU 的 EmbeddingCache 实现，
// 在未配置 Redis 时作为退化方案使用。
type LocalCache struct {
	lru *util.LRUCache[string, []float32]
}

// NewLocalCache 创建一个 LocalCache 实例。
func NewLocalCache() (*LocalCache, error) {
	lru, err := util.NewLRU[string, []float32](lruCapacity, entryTTL)
	if err != nil {
		return nil, err
	}
	return &LocalCache{lru: lru}, nil
}

// Get 返回缓存的向量, 未命中时返回 false。
func (c *LocalCache) Get(_ context.Context, text string) ([]float32, bool) {
	return c.lru.Get(cacheKey(text))
}

// Put 写入一个向量。
func (c *LocalCache) Put(_ context.Context, text string, vector []float32) {
	c.lru.Put(cacheKey(text), vector)
}

var _ EmbeddingCache = (*LocalCache)(nil)
