package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"deckgen-ai-api/internal/domain/entity"
	"deckgen-ai-api/internal/domain/repository"
	"deckgen-ai-api/internal/infrastructure/imagegen"
	"deckgen-ai-api/internal/interfaces/http/dto"
	apperrors "deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/logger"
)

// ImageHandler AI 配图处理器
type ImageHandler struct {
	generator imagegen.Generator
	renderer  Renderer
	store     repository.PresentationStore
}

// NewImageHandler 创建配图处理器
func NewImageHandler(generator imagegen.Generator, renderer Renderer, store repository.PresentationStore) *ImageHandler {
	return &ImageHandler{
		generator: generator,
		renderer:  renderer,
		store:     store,
	}
}

// Generate 为指定幻灯片生成 AI 配图
// @Summary 生成 AI 配图
// @Description 根据描述生成图片，写入指定幻灯片并重新渲染
// @Tags Images
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "配图请求"
// @Success 200 {object} dto.GenerateImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /generate [post]
func (h *ImageHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.generator == nil {
		dto.ServiceUnavailable(c, "image generation is not enabled")
		return
	}

	ctx = logger.WithContext(ctx, logger.PresentationIDKey, req.PresentationID)

	var encoded string
	err := h.store.Update(ctx, req.PresentationID, func(record *entity.PresentationRecord) error {
		idx := *req.SlideIndex
		if idx < 0 || idx >= len(record.Content.Slides) {
			return apperrors.New(apperrors.CodeSlideIndexOutOfRange,
				fmt.Sprintf("slide index %d out of range [0, %d)", idx, len(record.Content.Slides)))
		}

		imgBytes, err := h.generator.Generate(ctx, req.Description)
		if err != nil {
			return err
		}
		encoded = base64.StdEncoding.EncodeToString(imgBytes)

		// 与编辑流程相同：副本渲染成功后才写回记录
		next := record.Content.Clone()
		next.Slides[idx].ImageData = encoded

		artifact, err := h.renderer.Render(ctx, next)
		if err != nil {
			return err
		}

		record.Content = next
		record.Artifact = artifact
		record.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		logger.Error(ctx, "failed to generate slide image", err, "slide_index", req.SlideIndex)
		dto.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateImageResponse{Base64: encoded})
}
