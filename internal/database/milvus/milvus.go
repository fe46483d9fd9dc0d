package milvus

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"Athena_1.0/internal/config"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// 文档集合的字段名。Schema 是固定的: 主键、标题元数据和向量。
	FieldID        = "id"
	FieldTitle     = "title"
	FieldEmbedding = "embedding"

	idMaxLength    = 64
	titleMaxLength = 512
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient 包含了 Milvus 客户端实例和相关配置。
type MilvusClient struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
	// 用于控制后台自动刷新协程的取消函数。
	cancelAutoFlush context.CancelFunc
}

// SearchMatch 是一次向量相似度搜索命中的结果。
// Score 是 Milvus 按集合度量类型返回的原始分数，不做任何归一化。
type SearchMatch struct {
	ID    string
	Title string
	Score float32
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		// 使用配置中的地址创建 Milvus 客户端。
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		log.Println("✅ 成功连接到 Milvus!")
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close 安全地关闭与 Milvus 的连接。
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.StopAutoFlush(context.Background()) // 使用一个独立的上下文来停止自动刷新。
		c.Client.Close()
		log.Println("ℹ️ 已安全关闭 Milvus 连接。")
	}
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	_, err := c.Client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection 确保文档集合存在、已建索引并已加载。
// 集合 Schema 是固定的三字段结构，维度和度量类型来自配置。
func (c *MilvusClient) EnsureCollection(ctx context.Context) error {
	collCfg := c.Config.Collection

	exists, err := c.Client.HasCollection(ctx, collCfg.Name)
	if err != nil {
		return fmt.Errorf("检查集合是否存在时出错: %w", err)
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(collCfg.Name).
			WithDescription(collCfg.Description).
			WithField(entity.NewField().
				WithName(FieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(idMaxLength).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(FieldTitle).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(titleMaxLength)).
			WithField(entity.NewField().
				WithName(FieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(collCfg.Dim)))

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}

		idx, err := c.buildIndexFromConfig()
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collCfg.Name, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("为字段 '%s' 创建索引失败: %w", FieldEmbedding, err)
		}
		log.Printf("✅ 成功创建集合: %s", collCfg.Name)
	}

	if err := c.Client.LoadCollection(ctx, collCfg.Name, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collCfg.Name, err)
	}

	return nil
}

// Upsert 按文档 ID 插入或更新一条向量记录，title 作为元数据一并存储，
// 这样搜索结果可以直接携带标题而无需回查关系库。
func (c *MilvusClient) Upsert(ctx context.Context, id, title string, vector []float32) error {
	idCol := entity.NewColumnVarChar(FieldID, []string{id})
	titleCol := entity.NewColumnVarChar(FieldTitle, []string{title})
	vectorCol := entity.NewColumnFloatVector(FieldEmbedding, len(vector), [][]float32{vector})

	_, err := c.Client.Upsert(ctx, c.Config.Collection.Name, "" /* default partition */, idCol, titleCol, vectorCol)
	if err != nil {
		return fmt.Errorf("failed to upsert data into Milvus: %w", err)
	}
	return nil
}

// Search 执行向量相似度搜索并返回 topK 个最近邻。
func (c *MilvusClient) Search(ctx context.Context, vector []float32, topK int) ([]SearchMatch, error) {
	collCfg := c.Config.Collection

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	searchVectors := []entity.Vector{entity.FloatVector(vector)}

	results, err := c.Client.Search(
		ctx,
		collCfg.Name,
		nil,
		"",
		[]string{FieldID, FieldTitle},
		searchVectors,
		FieldEmbedding,
		entity.MetricType(collCfg.MetricType),
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("在集合 '%s' 中搜索失败: %w", collCfg.Name, err)
	}

	var matches []SearchMatch
	for _, res := range results {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(FieldID).(*entity.ColumnVarChar)
		if !ok {
			log.Println("⚠️ 搜索结果缺少 id 字段，已跳过。")
			continue
		}
		idData := idCol.Data()

		var titleData []string
		if titleCol, ok := findColumn(FieldTitle).(*entity.ColumnVarChar); ok {
			titleData = titleCol.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			match := SearchMatch{
				ID:    idData[i],
				Score: res.Scores[i],
			}
			if titleData != nil {
				match.Title = titleData[i]
			}
			matches = append(matches, match)
		}
	}

	return matches, nil
}

// FlushCollection 手动触发一次刷新操作，将内存中的数据写入磁盘。
func (c *MilvusClient) FlushCollection(ctx context.Context) error {
	collName := c.Config.Collection.Name
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// StartAutoFlush 启动后台自动刷新任务。
func (c *MilvusClient) StartAutoFlush(interval time.Duration) {
	if c.cancelAutoFlush != nil {
		log.Println("⚠️ 自动刷新任务已在运行中，无需重复启动。")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelAutoFlush = cancel
	collName := c.Config.Collection.Name

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("🚀 已启动后台自动刷新任务，每隔 %s 刷新一次集合 '%s'。", interval, collName)

		for {
			select {
			case <-ctx.Done():
				log.Println("ℹ️ 自动刷新任务已停止。")
				return
			case <-ticker.C:
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := c.Client.Flush(flushCtx, collName, false); err != nil {
					log.Printf("❌ 自动刷新集合 '%s' 失败: %v", collName, err)
				}
				flushCancel()
			}
		}
	}()
}

// StopAutoFlush 停止后台自动刷新任务，并执行最后一次刷新以确保数据一致性。
func (c *MilvusClient) StopAutoFlush(ctx context.Context) {
	if c.cancelAutoFlush != nil {
		c.cancelAutoFlush()
		c.cancelAutoFlush = nil

		if err := c.FlushCollection(ctx); err != nil {
			log.Printf("❌ 停止自动刷新时，最终刷新失败: %v", err)
		}
	}
}

// buildIndexFromConfig 是一个辅助函数，用于从配置构建索引实体。
func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	collCfg := c.Config.Collection
	metricType := entity.MetricType(collCfg.MetricType)

	switch collCfg.IndexType {
	case "IVF_FLAT":
		nlist := collCfg.Nlist
		if nlist <= 0 {
			nlist = 128
		}
		return entity.NewIndexIvfFlat(metricType, nlist)
	case "HNSW":
		return entity.NewIndexHNSW(metricType, 8, 96)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", collCfg.IndexType)
	}
}
