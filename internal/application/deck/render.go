package deck

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"

	"deckgen-ai-api/internal/config"
	"deckgen-ai-api/internal/domain/entity"
	apperrors "deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/logger"
	"deckgen-ai-api/pkg/metrics"
)

const (
	fontSizeTitle       = 36
	fontSizeBullet      = 18
	fontSizePlaceholder = 10

	bulletGlyph = "🔷 "

	// 占位框边框厚度，2pt。
	placeholderFrameEMU = int64(emuPerInch / 36)
)

// Renderer 把结构化的演示文稿内容渲染为二进制 pptx。
type Renderer struct {
	creator string
}

func NewRenderer(cfg *config.Config) *Renderer {
	creator := "DeckGen"
	if cfg != nil && cfg.Render.Creator != "" {
		creator = cfg.Render.Creator
	}
	return &Renderer{creator: creator}
}

// Render 每次全量重建文稿，幻灯片顺序与内容顺序一致。
func (r *Renderer) Render(ctx context.Context, content *entity.Presentation) ([]byte, error) {
	if content == nil {
		return nil, apperrors.Wrap(fmt.Errorf("content is nil"), apperrors.CodeRenderFailed, "deck render failed")
	}

	start := time.Now()

	p := ppt.New()
	p.GetDocumentProperties().Title = content.Name
	p.GetDocumentProperties().Creator = r.creator

	theme := ResolveTheme(content.OverallTheme)

	for i := range content.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}
		r.renderSlide(slide, &content.Slides[i], theme)
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRenderFailed, "failed to create pptx writer")
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRenderFailed, "failed to write pptx")
	}

	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	metrics.RenderArtifactSize.Observe(float64(buf.Len()))
	logger.Debug(ctx, "deck rendered",
		"slides", len(content.Slides),
		"theme", theme.Name,
		"bytes", buf.Len(),
	)

	return buf.Bytes(), nil
}

func (r *Renderer) renderSlide(slide *ppt.Slide, s *entity.Slide, theme Theme) {
	for _, region := range PlanSlide(s) {
		switch region.Kind {
		case RegionTitle:
			r.renderTitle(slide, region, s.Title, theme)
		case RegionBullets:
			r.renderBullets(slide, region, s.BulletPoints, theme)
		case RegionImage:
			r.renderImage(slide, region, s, theme)
		}
	}
}

func (r *Renderer) renderTitle(slide *ppt.Slide, region Region, title string, theme Theme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(region.X).SetOffsetY(region.Y)
	shape.SetWidth(region.Width).SetHeight(region.Height)

	tr := shape.CreateTextRun(title)
	tr.GetFont().SetSize(fontSizeTitle).SetBold(true).SetColor(ppt.NewColor(theme.PrimaryColor))
}

func (r *Renderer) renderBullets(slide *ppt.Slide, region Region, bullets []string, theme Theme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(region.X).SetOffsetY(region.Y)
	shape.SetWidth(region.Width).SetHeight(region.Height)

	for i, bp := range bullets {
		if i > 0 {
			shape.CreateParagraph()
		}
		tr := shape.CreateTextRun(bulletGlyph + bp)
		tr.GetFont().SetSize(fontSizeBullet).SetColor(ppt.NewColor(theme.SecondaryColor))
	}
}

// renderImage 优先放置图片数据，没有数据时绘制带边框的占位框与配图建议。
func (r *Renderer) renderImage(slide *ppt.Slide, region Region, s *entity.Slide, theme Theme) {
	if s.ImageData != "" {
		imgBytes, err := base64.StdEncoding.DecodeString(s.ImageData)
		if err == nil {
			imgShape := slide.CreateDrawingShape()
			imgShape.SetImageData(imgBytes, "image/png")
			imgShape.SetOffsetX(region.X).SetOffsetY(region.Y)
			imgShape.SetWidth(region.Width).SetHeight(region.Height)
			return
		}
		// 数据坏了退回占位框，保住整页渲染。
	}

	// 外层形状作边框，内层形状作底。
	frame := slide.CreateRichTextShape()
	frame.SetOffsetX(region.X).SetOffsetY(region.Y)
	frame.SetWidth(region.Width).SetHeight(region.Height)
	frame.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(theme.AccentColor)))

	inner := slide.CreateRichTextShape()
	inner.SetOffsetX(region.X + placeholderFrameEMU).SetOffsetY(region.Y + placeholderFrameEMU)
	inner.SetWidth(region.Width - 2*placeholderFrameEMU).SetHeight(region.Height - 2*placeholderFrameEMU)
	inner.SetFill(ppt.NewFill().SetSolid(ppt.NewColor("FFF8FAFC")))

	tr := inner.CreateTextRun(fmt.Sprintf("Image Suggestion:\n'%s'", s.ImageDescription))
	tr.GetFont().SetSize(fontSizePlaceholder).SetColor(ppt.NewColor(theme.SecondaryColor))
	inner.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}
