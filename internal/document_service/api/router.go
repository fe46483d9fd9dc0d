package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置和返回一个 Gin 引擎实例。
//
// 路由边界同时承担两类兜底职责: 未匹配的路径返回纯文本 404、方法不匹配
// 返回纯文本 405；handler 内未捕获的 panic 在这里被恢复并转换为通用的
// 500 JSON 响应，原始错误细节不会泄漏给客户端。
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()

	// CORS 必须在 recovery 之前注册, 这样 panic 路径上的响应也带着标头。
	r.Use(gin.Logger(), CORSMiddleware(), gin.CustomRecovery(handlePanic))

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not found")
	})
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r.Group("/api")
	{
		api.POST("/documents", h.CreateDocument)
		api.GET("/documents", h.ListDocuments)
		api.GET("/documents/:id", h.GetDocument)
		api.GET("/search", h.Search)
		api.GET("/health", h.Health)
	}

	return r
}

// handlePanic 将未捕获的 panic 收敛为一个不带细节的 500 响应。
func handlePanic(c *gin.Context, _ interface{}) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
