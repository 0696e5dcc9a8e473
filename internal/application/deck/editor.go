package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"deckgen-ai-api/internal/config"
	"deckgen-ai-api/internal/domain/entity"
	wfchain "deckgen-ai-api/internal/workflow/chain"
	wfmodel "deckgen-ai-api/internal/workflow/model"
	apperrors "deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/logger"
	"deckgen-ai-api/pkg/metrics"
)

const bulletElementPrefix = "bullet_point_"

type EditInput struct {
	Content     *entity.Presentation
	SlideIndex  int
	ElementID   string
	Instruction string
	CurrentText string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// Editor 驱动单页编辑链，把模型产出合并回原幻灯片。
// Edit 是纯函数：不修改传入的 Content，返回合并后的新幻灯片。
type Editor struct {
	cfg   *config.Config
	chain *wfchain.SlideEditChain
	sem   *semaphore.Weighted
}

func NewEditor(cfg *config.Config, chain *wfchain.SlideEditChain, sem *semaphore.Weighted) *Editor {
	return &Editor{cfg: cfg, chain: chain, sem: sem}
}

func (e *Editor) Edit(ctx context.Context, in *EditInput) (*entity.Slide, error) {
	if in == nil || in.Content == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "content is required")
	}
	if strings.TrimSpace(in.Instruction) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "edit_instruction is required")
	}
	// 下标越界在调用模型之前就拒绝。
	if in.SlideIndex < 0 || in.SlideIndex >= len(in.Content.Slides) {
		return nil, apperrors.New(apperrors.CodeSlideIndexOutOfRange,
			fmt.Sprintf("slide index %d out of range [0, %d)", in.SlideIndex, len(in.Content.Slides)))
	}

	element := elementLabel(in.ElementID)
	start := time.Now()
	updated, err := e.edit(ctx, in)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SlideEditTotal.WithLabelValues(element, status).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "slide edited",
		"slide_index", in.SlideIndex,
		"element_id", in.ElementID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return updated, nil
}

func (e *Editor) edit(ctx context.Context, in *EditInput) (*entity.Slide, error) {
	current := in.Content.Slides[in.SlideIndex]

	slideJSON, err := json.Marshal(&current)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEditValidationFailed, "failed to encode slide")
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "llm concurrency limit")
	}
	defer e.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout())
	defer cancel()

	msg, err := e.chain.Invoke(ctx, &wfmodel.SlideEditInput{
		SlideJSON:   string(slideJSON),
		ElementID:   in.ElementID,
		CurrentText: in.CurrentText,
		Instruction: in.Instruction,
		Provider:    in.Provider,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return nil, wrapLLMError(err, "slide edit failed")
	}

	proposed, _, err := ParseSlide(msg.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEditValidationFailed, "failed to parse edit output")
	}
	if err := ValidateSlide(proposed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEditValidationFailed, "edit output validation failed").
			WithDetail(err.Error())
	}

	merged := mergeSlide(&current, proposed, in.ElementID)
	return merged, nil
}

func (e *Editor) requestTimeout() time.Duration {
	if e.cfg != nil && e.cfg.LLM.RequestTimeout > 0 {
		return e.cfg.LLM.RequestTimeout
	}
	return 90 * time.Second
}

// mergeSlide 按目标元素做定点合并：已识别的元素只接受该元素的改动，
// 其余字段沿用原值；未识别的元素整页采纳模型产出。图片数据始终保留。
func mergeSlide(current, proposed *entity.Slide, elementID string) *entity.Slide {
	merged := current.Clone()

	switch {
	case elementID == "title":
		merged.Title = proposed.Title
	case elementID == "image_description":
		merged.ImageDescription = proposed.ImageDescription
	case strings.HasPrefix(elementID, bulletElementPrefix):
		idx, err := strconv.Atoi(strings.TrimPrefix(elementID, bulletElementPrefix))
		if err != nil || idx < 0 || idx >= len(merged.BulletPoints) || idx >= len(proposed.BulletPoints) {
			merged = proposed.Clone()
		} else {
			merged.BulletPoints[idx] = proposed.BulletPoints[idx]
		}
	default:
		merged = proposed.Clone()
	}

	merged.ImageData = current.ImageData
	return &merged
}

func elementLabel(elementID string) string {
	switch {
	case elementID == "title":
		return "title"
	case elementID == "image_description":
		return "image_description"
	case strings.HasPrefix(elementID, bulletElementPrefix):
		return "bullet_point"
	default:
		return "other"
	}
}
