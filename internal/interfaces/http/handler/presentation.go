// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deckgen-ai-api/internal/application/deck"
	"deckgen-ai-api/internal/domain/entity"
	"deckgen-ai-api/internal/domain/repository"
	"deckgen-ai-api/internal/interfaces/http/dto"
	"deckgen-ai-api/pkg/logger"
	"deckgen-ai-api/pkg/metrics"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Renderer 把演示文稿内容渲染为二进制文稿
type Renderer interface {
	Render(ctx context.Context, content *entity.Presentation) ([]byte, error)
}

// PresentationHandler 演示文稿处理器
type PresentationHandler struct {
	generator *deck.Generator
	editor    *deck.Editor
	renderer  Renderer
	store     repository.PresentationStore
}

// NewPresentationHandler 创建演示文稿处理器
func NewPresentationHandler(
	generator *deck.Generator,
	editor *deck.Editor,
	renderer Renderer,
	store repository.PresentationStore,
) *PresentationHandler {
	return &PresentationHandler{
		generator: generator,
		editor:    editor,
		renderer:  renderer,
		store:     store,
	}
}

// Create 根据描述创建新的演示文稿
// @Summary 创建演示文稿
// @Description 根据自然语言描述生成结构化内容并渲染为 pptx
// @Tags Presentations
// @Accept json
// @Produce json
// @Param body body dto.CreatePptRequest true "创建请求"
// @Success 200 {object} dto.PptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /create_ppt [post]
func (h *PresentationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.generator.Generate(ctx, &deck.GenerateInput{
		Description: req.Description,
		NumSlides:   req.NumSlides,
		Audience:    req.Audience,
		Tone:        req.Tone,
	})
	if err != nil {
		logger.Error(ctx, "failed to generate deck", err, "description_len", len(req.Description))
		dto.FromError(c, err)
		return
	}

	artifact, err := h.renderer.Render(ctx, out.Content)
	if err != nil {
		logger.Error(ctx, "failed to render deck", err)
		dto.FromError(c, err)
		return
	}

	id := uuid.New().String()
	record := entity.NewPresentationRecord(id, req.Description, out.Content, artifact)
	if err := h.store.Create(ctx, record); err != nil {
		logger.Error(ctx, "failed to store presentation", err)
		dto.InternalError(c, "failed to store presentation")
		return
	}
	metrics.StoredPresentations.Set(float64(h.store.Len()))

	logger.Info(logger.WithContext(ctx, logger.PresentationIDKey, id), "presentation created",
		"slides", len(out.Content.Slides),
	)

	c.JSON(http.StatusOK, dto.PptResponse{
		PresentationID: id,
		Slides:         dto.NewSlideViews(out.Content),
		Message:        "Presentation created successfully!",
	})
}

// Edit 按指令编辑指定幻灯片上的元素
// @Summary 编辑演示文稿
// @Description 编辑指定幻灯片上的单个元素并重新渲染
// @Tags Presentations
// @Accept json
// @Produce json
// @Param body body dto.EditPptRequest true "编辑请求"
// @Success 200 {object} dto.PptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /edit_ppt [post]
func (h *PresentationHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.EditPptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx = logger.WithContext(ctx, logger.PresentationIDKey, req.PresentationID)

	var updated *entity.Presentation
	err := h.store.Update(ctx, req.PresentationID, func(record *entity.PresentationRecord) error {
		slide, err := h.editor.Edit(ctx, &deck.EditInput{
			Content:     record.Content,
			SlideIndex:  *req.SlideIndex,
			ElementID:   req.ElementID,
			Instruction: req.EditInstruction,
			CurrentText: req.CurrentContent,
		})
		if err != nil {
			return err
		}

		// 改动先应用到副本并渲染，全部成功后才写回记录
		next := record.Content.Clone()
		next.Slides[*req.SlideIndex] = *slide

		artifact, err := h.renderer.Render(ctx, next)
		if err != nil {
			return err
		}

		record.Content = next
		record.Artifact = artifact
		record.UpdatedAt = time.Now()
		updated = next
		return nil
	})
	if err != nil {
		logger.Error(ctx, "failed to edit presentation", err,
			"slide_index", req.SlideIndex,
			"element_id", req.ElementID,
		)
		dto.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PptResponse{
		PresentationID: req.PresentationID,
		Slides:         dto.NewSlideViews(updated),
		Message:        "Presentation edited successfully!",
	})
}

// Download 下载最新渲染的 pptx 文件
// @Summary 下载演示文稿
// @Description 下载最近一次生成或编辑后的 pptx 文件
// @Tags Presentations
// @Produce octet-stream
// @Param presentation_id path string true "演示文稿 ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /download_ppt/{presentation_id} [get]
func (h *PresentationHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("presentation_id")

	record, err := h.store.Get(ctx, id)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	name := "presentation"
	if record.Content != nil && strings.TrimSpace(record.Content.Name) != "" {
		name = record.Content.Name
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pptx", name))
	c.Data(http.StatusOK, pptxContentType, record.Artifact)
}
