package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deckgen-ai-api/internal/domain/repository"
	"deckgen-ai-api/internal/workflow/port"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	factory port.ChatModelFactory
	store   repository.PresentationStore

	version string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(factory port.ChatModelFactory, store repository.PresentationStore, version string) *HealthHandler {
	return &HealthHandler{
		factory: factory,
		store:   store,
		version: version,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status        string                     `json:"status"`
	Presentations int                        `json:"presentations"`
	Checks        map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]*readinessCheck{
		"llm_factory": {Status: "ok"},
		"store":       {Status: "ok"},
	}

	ready := true
	if h == nil || h.factory == nil {
		checks["llm_factory"].Status = "missing"
		checks["llm_factory"].Error = "llm factory not configured"
		ready = false
	}
	if h == nil || h.store == nil {
		checks["store"].Status = "missing"
		checks["store"].Error = "presentation store not configured"
		ready = false
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if h != nil && h.store != nil {
		resp.Presentations = h.store.Len()
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 检查服务是否存活
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
