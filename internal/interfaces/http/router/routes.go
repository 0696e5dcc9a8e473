// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// HealthRoutes 系统探活路由
type HealthRoutes interface {
	Health(c *gin.Context)
	Ready(c *gin.Context)
	Live(c *gin.Context)
}

// PresentationRoutes 演示文稿路由
type PresentationRoutes interface {
	Create(c *gin.Context)
	Edit(c *gin.Context)
	Download(c *gin.Context)
}

// DiagramRoutes 图表路由
type DiagramRoutes interface {
	Sketch(c *gin.Context)
}

// ImageRoutes 配图路由
type ImageRoutes interface {
	Generate(c *gin.Context)
}

// RegisterRoutes 注册业务路由，路径保持在根层级以兼容既有前端
func RegisterRoutes(engine *gin.Engine, handlers Handlers) {
	engine.POST("/create_ppt", handlers.Presentation.Create)
	engine.POST("/edit_ppt", handlers.Presentation.Edit)
	engine.GET("/download_ppt/:presentation_id", handlers.Presentation.Download)

	engine.POST("/sketch", handlers.Diagram.Sketch)
	engine.POST("/generate", handlers.Image.Generate)
}
