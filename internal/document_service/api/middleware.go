package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware 创建一个 Gin 中间件，为每一个响应统一附加 CORS 标头。
// 所有路径共用这一处逻辑, 包括 404/405、健康检查以及 panic 恢复后的
// 500 响应, 各个 handler 不允许重复设置这些标头。
// OPTIONS 预检请求在这里直接短路返回 200 空响应体，不再进入任何 handler。
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
