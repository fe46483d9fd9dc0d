package embedding

import (
	"fmt"

	"Athena_1.0/internal/config"
)

// NewEmdModel 根据配置中的提供商、模型、API 密钥和基础 URL 创建并返回一个新的 Embedding 模型实例。
//
// 参数:
//
//	cfg: Embedding 提供商配置 (提供商、模型名称、API 密钥、基础 URL)。
//
// 返回值:
//
//	Embedding: 新创建的 Embedding 模型实例。
//	error: 如果提供商不支持或模型初始化失败，则返回错误。
func NewEmdModel(cfg *config.EmbeddingConfig) (Embedding, error) {
	apiKey := cfg.APIKeyOrEnv()

	// 根据提供商类型创建相应的 Embedding 模型实例。
	switch cfg.Provider {
	case "gemini":
		return NewGoogleModel(apiKey, cfg.Model)
	case "openai":
		return NewOpenAIModel(apiKey, cfg.Model)
	case "huggingface":
		return NewHuggingFaceModel(apiKey, cfg.Model, cfg.BaseURL)
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
