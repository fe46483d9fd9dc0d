package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"Athena_1.0/internal/document_service/service"
	"Athena_1.0/internal/document_service/store"
	"Athena_1.0/internal/models"
	"Athena_1.0/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HealthCheck 是一个具名的依赖健康检查。
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	service *service.Service
	log     *logger.Logger
	checks  []HealthCheck
}

// NewHandler 创建一个新的 Handler 实例。
// checks 是健康检查端点要探测的依赖列表, 可以为空。
func NewHandler(s *service.Service, log *logger.Logger, checks ...HealthCheck) *Handler {
	return &Handler{service: s, log: log, checks: checks}
}

// CreateDocumentRequest 定义了创建文档请求的 JSON 结构。
// 两个字段都必填; 缺失或类型不符属于校验错误, 直接以 400 上报,
// 不依赖 router 的兜底 500。
type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreateDocument 处理文档创建请求。
func (h *Handler) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmbeddingFailed) {
			// 已知的依赖失败类别, 以可区分的消息上报。
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate embedding"})
			return
		}
		h.reportInternal(c, err, "document creation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      doc.ID,
		"title":   doc.Title,
		"content": doc.Content,
	})
}

// GetDocument 处理按 ID 读取单个文档的请求。
func (h *Handler) GetDocument(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.service.GetDocument(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			c.String(http.StatusNotFound, "Document not found")
			return
		}
		h.reportInternal(c, err, "document lookup failed")
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListDocuments 返回最近创建的文档列表 (最多 50 条, 按创建时间倒序)。
func (h *Handler) ListDocuments(c *gin.Context) {
	summaries, err := h.service.ListDocuments(c.Request.Context())
	if err != nil {
		h.reportInternal(c, err, "document listing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

// Search 处理相似度搜索请求。
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
		return
	}

	// limit 是可选参数; 解析失败时沿用默认值而不是报错。
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	resp, err := h.service.SearchDocuments(c.Request.Context(), query, limit)
	if err != nil {
		if errors.Is(err, service.ErrEmbeddingFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate embedding"})
			return
		}
		h.reportInternal(c, err, "search failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health 依次探测各个依赖的健康状况。
// 任意一个依赖异常时返回 503, 响应体中给出每个依赖的状态。
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	detail := make(map[string]string, len(h.checks))

	for _, check := range h.checks {
		if err := check.Check(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			detail[check.Name] = err.Error()
		} else {
			detail[check.Name] = "ok"
		}
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "dependencies": detail})
}

// reportInternal 记录错误细节并向客户端返回不带细节的通用 500。
func (h *Handler) reportInternal(c *gin.Context, err error, message string) {
	h.log.WithRequest(models.RequestInfo{
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		RemoteAddr: c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}).WithError(models.ErrorInfo{
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
	}).Error(message)

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
