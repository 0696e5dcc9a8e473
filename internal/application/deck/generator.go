package deck

import (
	"context"
	"errors"
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

// NewLLMSemaphore 构造全局 LLM 并发闸，所有调用 LLM 的服务共用一把。
func NewLLMSemaphore(cfg *config.Config) *semaphore.Weighted {
	n := int64(8)
	if cfg != nil && cfg.LLM.MaxConcurrent > 0 {
		n = cfg.LLM.MaxConcurrent
	}
	return semaphore.NewWeighted(n)
}

type GenerateInput struct {
	Description string
	NumSlides   int
	Audience    string
	Tone        string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

type GenerateOutput struct {
	Content *entity.Presentation
	Raw     string
}

// Generator 驱动大纲生成链，产出经过校验的演示文稿内容。
type Generator struct {
	cfg   *config.Config
	chain *wfchain.DeckOutlineChain
	sem   *semaphore.Weighted
}

func NewGenerator(cfg *config.Config, chain *wfchain.DeckOutlineChain, sem *semaphore.Weighted) *Generator {
	return &Generator{cfg: cfg, chain: chain, sem: sem}
}

func (g *Generator) Generate(ctx context.Context, in *GenerateInput) (*GenerateOutput, error) {
	if in == nil || strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "description is required")
	}

	start := time.Now()
	out, err := g.generate(ctx, in)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DeckGenerationTotal.WithLabelValues(status).Inc()
	metrics.DeckGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.DeckSlideCount.Observe(float64(len(out.Content.Slides)))
	logger.Info(ctx, "deck generated",
		"name", out.Content.Name,
		"slides", len(out.Content.Slides),
		"theme", out.Content.OverallTheme,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (g *Generator) generate(ctx context.Context, in *GenerateInput) (*GenerateOutput, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "llm concurrency limit")
	}
	defer g.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, g.requestTimeout())
	defer cancel()

	msg, err := g.chain.Invoke(ctx, &wfmodel.DeckGenerateInput{
		Description: in.Description,
		NumSlides:   in.NumSlides,
		Audience:    in.Audience,
		Tone:        in.Tone,
		Provider:    in.Provider,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return nil, wrapLLMError(err, "deck generation failed")
	}

	content, raw, err := ParseDeck(msg.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to parse deck output")
	}
	if err := ValidatePresentation(content); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSchemaValidationFailed, "deck output validation failed").
			WithDetail(err.Error())
	}

	return &GenerateOutput{Content: content, Raw: raw}, nil
}

func (g *Generator) requestTimeout() time.Duration {
	if g.cfg != nil && g.cfg.LLM.RequestTimeout > 0 {
		return g.cfg.LLM.RequestTimeout
	}
	return 90 * time.Second
}

// wrapLLMError 区分超时与其它上游失败。
func wrapLLMError(err error, message string) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeLLMProviderTimeout, message)
	}
	return apperrors.Wrap(err, apperrors.CodeLLMProviderError, message)
}
