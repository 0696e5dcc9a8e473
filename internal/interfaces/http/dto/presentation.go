package dto

import (
	"deckgen-ai-api/internal/domain/entity"
)

// CreatePptRequest 创建演示文稿请求
type CreatePptRequest struct {
	Description string `json:"description" binding:"required"`
	NumSlides   int    `json:"num_slides"`
	Audience    string `json:"audience"`
	Tone        string `json:"tone"`
}

// EditPptRequest 编辑指定幻灯片元素请求
type EditPptRequest struct {
	PresentationID  string `json:"presentation_id" binding:"required"`
	SlideIndex      *int   `json:"slide_index" binding:"required"`
	ElementID       string `json:"element_id" binding:"required"`
	EditInstruction string `json:"edit_instruction" binding:"required"`
	CurrentContent  string `json:"current_content"`
}

// SlideView 面向前端展示的单页摘要
type SlideView struct {
	SlideIndex       int      `json:"slide_index"`
	Title            string   `json:"title"`
	BulletPoints     []string `json:"bullet_points"`
	ImageDescription string   `json:"image_description"`
}

// PptResponse 创建/编辑演示文稿的响应
type PptResponse struct {
	PresentationID string      `json:"presentation_id"`
	Slides         []SlideView `json:"slides"`
	Message        string      `json:"message"`
}

// NewSlideViews 把结构化内容转成响应用的幻灯片列表
func NewSlideViews(content *entity.Presentation) []SlideView {
	if content == nil {
		return nil
	}
	views := make([]SlideView, 0, len(content.Slides))
	for i := range content.Slides {
		s := &content.Slides[i]
		views = append(views, SlideView{
			SlideIndex:       i,
			Title:            s.Title,
			BulletPoints:     s.BulletPoints,
			ImageDescription: s.ImageDescription,
		})
	}
	return views
}

// GenerateImageRequest AI 配图生成请求
type GenerateImageRequest struct {
	Description    string `json:"description" binding:"required"`
	SlideIndex     *int   `json:"slide_index" binding:"required"`
	PresentationID string `json:"presentation_id" binding:"required"`
}

// GenerateImageResponse AI 配图生成响应
type GenerateImageResponse struct {
	Base64 string `json:"base64"`
}
