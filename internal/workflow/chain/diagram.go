package chain

import (
	"context"
	"fmt"
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

type DiagramChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.DiagramInput, *schema.Message]
	chainErr  error
}

func NewDiagramChain(factory workflowport.ChatModelFactory) *DiagramChain {
	return &DiagramChain{factory: factory}
}

func (c *DiagramChain) Invoke(ctx context.Context, in *wfmodel.DiagramInput) (*schema.Message, error) {
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

type diagramChainState struct {
	In       *wfmodel.DiagramInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *DiagramChain) getChain() (compose.Runnable[*wfmodel.DiagramInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *DiagramChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.DiagramInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.DiagramInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.DiagramInput) (*diagramChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &diagramChainState{In: in}, nil
		}),
		compose.WithNodeName("diagram.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *diagramChainState) (*diagramChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatDiagramMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("diagram.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *diagramChainState) (*diagramChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "diagram_sketch", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildDiagramModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildDiagramModelOptions(st.In, false)...)
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
		compose.WithNodeName("diagram.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *diagramChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("diagram.finalize"),
	)

	return chain.Compile(ctx)
}

func formatDiagramMessages(ctx context.Context, in *wfmodel.DiagramInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptDiagramSketchV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"instruction": strings.TrimSpace(in.Instruction),
	}
	return tpl.Format(ctx, vars)
}

func buildDiagramModelOptions(in *wfmodel.DiagramInput, enableSchema bool) []model.Option {
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
					"name":   "diagram_sketch",
					"strict": false,
					"schema": diagramJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func diagramJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"markup", "explanation"},
		"properties": map[string]any{
			"markup":      map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
		},
	}
}
