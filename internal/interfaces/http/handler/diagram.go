package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deckgen-ai-api/internal/application/deck"
	"deckgen-ai-api/internal/interfaces/http/dto"
	"deckgen-ai-api/pkg/logger"
)

// DiagramHandler 图表处理器
type DiagramHandler struct {
	diagrammer *deck.Diagrammer
}

// NewDiagramHandler 创建图表处理器
func NewDiagramHandler(diagrammer *deck.Diagrammer) *DiagramHandler {
	return &DiagramHandler{diagrammer: diagrammer}
}

// Sketch 根据描述生成图表标记
// @Summary 生成图表标记
// @Description 把自然语言描述转成图表描述语言与说明
// @Tags Diagrams
// @Accept json
// @Produce json
// @Param body body dto.SketchRequest true "图表请求"
// @Success 200 {object} dto.SketchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /sketch [post]
func (h *DiagramHandler) Sketch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SketchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.diagrammer.Sketch(ctx, &deck.DiagramInput{Instruction: req.Message})
	if err != nil {
		logger.Error(ctx, "failed to sketch diagram", err)
		dto.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SketchResponse{
		Result: dto.SketchResult{
			Markup:      result.Markup,
			Explanation: result.Explanation,
		},
	})
}
