// Package cache 为搜索路径提供查询向量缓存。
//
// 同一个查询串往往会被反复提交 (翻页、前端重试)，每次都调用 Embedding
// 提供商既慢又花钱。缓存以查询文本的摘要为键、嵌入向量为值，只在搜索
// 路径上做读穿透；创建路径不经过缓存，文档内容本来就只会被嵌入一次。
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// 缓存条目的统一过期时间。Embedding 模型不变时向量是稳定的，
// TTL 只是为了限制模型升级后旧向量的存活窗口。
const entryTTL = time.Hour

// EmbeddingCache 定义了查询向量缓存的行为。
// 实现必须容忍缓存后端不可用: Get 未命中即可, Put 失败静默忽略。
type EmbeddingCache interface {
	// Get 返回缓存的向量, 未命中时第二个返回值为 false。
	Get(ctx context.Context, text string) ([]float32, bool)
	// Put 写入一个向量, 写入失败不影响调用方。
	Put(ctx context.Context, text string, vector []float32)
}

// cacheKey 计算查询文本的缓存键。
// 用摘要而不是原文做键，避免超长查询串撑爆键空间。
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
