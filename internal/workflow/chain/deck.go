package chain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "deckgen-ai-api/internal/domain/service"
	wfmodel "deckgen-ai-api/internal/workflow/model"
	wfnode "deckgen-ai-api/internal/workflow/node"
	workflowport "deckgen-ai-api/internal/workflow/port"
	workflowprompt "deckgen-ai-api/internal/workflow/prompt"
	"deckgen-ai-api/pkg/logger"
)

type DeckOutlineChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.DeckGenerateInput, *schema.Message]
	chainErr  error
}

func NewDeckOutlineChain(factory workflowport.ChatModelFactory) *DeckOutlineChain {
	return &DeckOutlineChain{factory: factory}
}

func (c *DeckOutlineChain) Invoke(ctx context.Context, in *wfmodel.DeckGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type deckChainState struct {
	In       *wfmodel.DeckGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *DeckOutlineChain) getChain() (compose.Runnable[*wfmodel.DeckGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *DeckOutlineChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.DeckGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.DeckGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.DeckGenerateInput) (*deckChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &deckChainState{In: in}, nil
		}),
		compose.WithNodeName("deck_outline.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *deckChainState) (*deckChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatDeckOutlineMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("deck_outline.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *deckChainState) (*deckChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "deck_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildDeckModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildDeckModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("deck_outline.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *deckChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("deck_outline.finalize"),
	)

	return chain.Compile(ctx)
}

var defaultPromptRegistry = workflowprompt.NewRegistry()

func formatDeckOutlineMessages(ctx context.Context, in *wfmodel.DeckGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptDeckOutlineV1)
	if err != nil {
		return nil, err
	}

	numSlides := "由你规划"
	if in.NumSlides > 0 {
		numSlides = strconv.Itoa(in.NumSlides)
	}
	audience := strings.TrimSpace(in.Audience)
	if audience == "" {
		audience = "通用受众"
	}
	tone := strings.TrimSpace(in.Tone)
	if tone == "" {
		tone = "与描述相符"
	}

	vars := map[string]any{
		"description": strings.TrimSpace(in.Description),
		"num_slides":  numSlides,
		"audience":    audience,
		"tone":        tone,
	}
	return tpl.Format(ctx, vars)
}

func buildDeckModelOptions(in *wfmodel.DeckGenerateInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "deck_outline",
					"strict": false,
					"schema": deckJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func deckJSONSchema() map[string]any {
	// 说明：schema 以“最小可用”为目标，避免过度约束导致模型输出失败。
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"name", "slides", "overall_theme"},
		"properties": map[string]any{
			"name":          map[string]any{"type": "string"},
			"overall_theme": map[string]any{"type": "string"},
			"slides": map[string]any{
				"type":  "array",
				"items": slideJSONSchema(),
			},
		},
	}
}

func slideJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"title", "bullet_points", "image_description"},
		"properties": map[string]any{
			"title":             map[string]any{"type": "string"},
			"bullet_points":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"image_description": map[string]any{"type": "string"},
		},
	}
}
