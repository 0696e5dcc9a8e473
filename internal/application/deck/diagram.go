package deck

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"deckgen-ai-api/internal/config"
	"deckgen-ai-api/internal/domain/entity"
	wfchain "deckgen-ai-api/internal/workflow/chain"
	wfmodel "deckgen-ai-api/internal/workflow/model"
	apperrors "deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/logger"
)

type DiagramInput struct {
	Instruction string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// Diagrammer 把自然语言描述转成图表标记与说明，不触碰演示文稿状态。
type Diagrammer struct {
	cfg   *config.Config
	chain *wfchain.DiagramChain
	sem   *semaphore.Weighted
}

func NewDiagrammer(cfg *config.Config, chain *wfchain.DiagramChain, sem *semaphore.Weighted) *Diagrammer {
	return &Diagrammer{cfg: cfg, chain: chain, sem: sem}
}

func (d *Diagrammer) Sketch(ctx context.Context, in *DiagramInput) (*entity.DiagramResult, error) {
	if in == nil || strings.TrimSpace(in.Instruction) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "message is required")
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "llm concurrency limit")
	}
	defer d.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, d.requestTimeout())
	defer cancel()

	start := time.Now()
	msg, err := d.chain.Invoke(ctx, &wfmodel.DiagramInput{
		Instruction: in.Instruction,
		Provider:    in.Provider,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return nil, wrapLLMError(err, "diagram sketch failed")
	}

	result, _, err := ParseDiagram(msg.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDiagramFailed, "failed to parse diagram output")
	}
	if err := ValidateDiagram(result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDiagramFailed, "diagram output validation failed").
			WithDetail(err.Error())
	}

	logger.Info(ctx, "diagram sketched", "elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (d *Diagrammer) requestTimeout() time.Duration {
	if d.cfg != nil && d.cfg.LLM.RequestTimeout > 0 {
		return d.cfg.LLM.RequestTimeout
	}
	return 90 * time.Second
}
