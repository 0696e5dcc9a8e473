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

type SlideEditChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.SlideEditInput, *schema.Message]
	chainErr  error
}

func NewSlideEditChain(factory workflowport.ChatModelFactory) *SlideEditChain {
	return &SlideEditChain{factory: factory}
}

func (c *SlideEditChain) Invoke(ctx context.Context, in *wfmodel.SlideEditInput) (*schema.Message, error) {
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

type slideEditChainState struct {
	In       *wfmodel.SlideEditInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *SlideEditChain) getChain() (compose.Runnable[*wfmodel.SlideEditInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *SlideEditChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.SlideEditInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.SlideEditInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.SlideEditInput) (*slideEditChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &slideEditChainState{In: in}, nil
		}),
		compose.WithNodeName("slide_edit.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *slideEditChainState) (*slideEditChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatSlideEditMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("slide_edit.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *slideEditChainState) (*slideEditChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "slide_edit", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildSlideEditModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildSlideEditModelOptions(st.In, false)...)
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
		compose.WithNodeName("slide_edit.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *slideEditChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("slide_edit.finalize"),
	)

	return chain.Compile(ctx)
}

func formatSlideEditMessages(ctx context.Context, in *wfmodel.SlideEditInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptSlideEditV1)
	if err != nil {
		return nil, err
	}

	currentText := strings.TrimSpace(in.CurrentText)
	if currentText == "" {
		currentText = "(空)"
	}

	vars := map[string]any{
		"slide_json":   strings.TrimSpace(in.SlideJSON),
		"element_id":   strings.TrimSpace(in.ElementID),
		"current_text": currentText,
		"instruction":  strings.TrimSpace(in.Instruction),
	}
	return tpl.Format(ctx, vars)
}

func buildSlideEditModelOptions(in *wfmodel.SlideEditInput, enableSchema bool) []model.Option {
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
					"name":   "slide_edit",
					"strict": false,
					"schema": slideJSONSchema(),
				},
			},
		}))
	}

	return opts
}
