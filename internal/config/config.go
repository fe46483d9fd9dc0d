package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CollectionConfig 定义了文档向量集合的 Schema 配置。
// 集合固定包含三个字段: id (VarChar, 主键)、title (VarChar) 和 embedding (FloatVector)。
type CollectionConfig struct {
	Name        string `yaml:"name"`        // 集合名称
	Description string `yaml:"description"` // 集合描述
	Dim         int    `yaml:"dim"`         // 向量维度 (由所使用的 Embedding 模型决定)
	MetricType  string `yaml:"metricType"`  // 相似度度量类型 (例如: "COSINE", "L2", "IP")
	IndexType   string `yaml:"indexType"`   // 索引类型 (例如: "IVF_FLAT", "HNSW", "AUTOINDEX")
	Nlist       int    `yaml:"nlist"`       // IVF 索引的聚类数量 (仅适用于 IVF 系列索引)
}

// MilvusConfig 定义了 Milvus 数据库的连接和集合配置。
type MilvusConfig struct {
	Address       string           `yaml:"address"`       // Milvus 服务地址
	Collection    CollectionConfig `yaml:"collection"`    // 文档集合配置
	FlushInterval string           `yaml:"flushInterval"` // 后台自动刷新间隔 (例如: "30s"), 为空时不启动
}

// RedisConfig 定义了 Redis 数据库的连接配置。
// Address 为空时不启用 Redis, 查询向量缓存退化为进程内 LRU。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	Milvus MilvusConfig `yaml:"milvus"` // Milvus 数据库配置
	MySQL  MySQLConfig  `yaml:"mysql"`  // MySQL 数据库配置
	Redis  RedisConfig  `yaml:"redis"`  // Redis 数据库配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务器的配置。
type ServerConfig struct {
	Address         string `yaml:"address"`         // 监听地址 (例如: ":8080")
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 优雅关闭的最长等待时间 (例如: "10s")
}

// EmbeddingConfig 定义了 Embedding 提供商的配置。
// APIKey 为空时会回退读取 EMBEDDING_API_KEY 环境变量。
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // Embedding 提供商 (例如: "gemini", "openai", "huggingface", "ollama")
	Model    string `yaml:"model"`    // 要使用的模型名称
	APIKey   string `yaml:"apiKey"`   // API 密钥
	BaseURL  string `yaml:"baseURL"`  // 服务基础 URL (可选，某些提供商不需要)
}

// APIKeyOrEnv 返回配置中的 API 密钥，为空时回退到环境变量。
func (c *EmbeddingConfig) APIKeyOrEnv() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("EMBEDDING_API_KEY")
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket", "leakyBucket", "fixedWindow"
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
	LeakyBucket LeakyBucketConfig `yaml:"leakyBucket"`
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// LeakyBucketConfig 定义了漏桶算法的配置。
type LeakyBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	Server     ServerConfig     `yaml:"server"`     // HTTP 服务器配置
	Embedding  EmbeddingConfig  `yaml:"embedding"`  // Embedding 配置部分
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
	Databases  DatabaseConfigs  `yaml:"databases"`  // 数据库配置
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	// 读取 YAML 文件内容。
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	// 将 YAML 内容解析到 cfg 结构体中。
	err = yaml.Unmarshal(yamlFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	return &cfg, nil
}
