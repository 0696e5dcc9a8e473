package deck

import (
	"context"
	"testing"

	wfchain "deckgen-ai-api/internal/workflow/chain"
	apperrors "deckgen-ai-api/pkg/errors"
)

func newTestGenerator(content string) (*Generator, *fakeChatModel) {
	cm := &fakeChatModel{content: content}
	chain := wfchain.NewDeckOutlineChain(&fakeFactory{chatModel: cm})
	return NewGenerator(nil, chain, NewLLMSemaphore(nil)), cm
}

const validDeckJSON = `{
  "name": "智能客服方案",
  "overall_theme": "professional",
  "slides": [
    {"title": "背景", "bullet_points": ["人工成本高", "响应慢"], "image_description": "客服现状"},
    {"title": "方案", "bullet_points": ["大模型对话", "知识库检索"], "image_description": ""}
  ]
}`

func TestGenerate(t *testing.T) {
	gen, cm := newTestGenerator("```json\n" + validDeckJSON + "\n```")

	out, err := gen.Generate(context.Background(), &GenerateInput{
		Description: "面向企业的智能客服产品介绍",
		NumSlides:   2,
		Audience:    "企业决策者",
		Tone:        "专业",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cm.calls.Load() != 1 {
		t.Errorf("model calls = %d, want 1", cm.calls.Load())
	}

	if out.Content.Name != "智能客服方案" {
		t.Errorf("Name = %q", out.Content.Name)
	}
	if len(out.Content.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(out.Content.Slides))
	}
	if out.Content.Slides[0].Title != "背景" {
		t.Errorf("Slides[0].Title = %q", out.Content.Slides[0].Title)
	}
	if out.Raw == "" {
		t.Error("Raw should contain the extracted JSON")
	}
}

func TestGenerateEmptyDescription(t *testing.T) {
	gen, cm := newTestGenerator(validDeckJSON)

	_, err := gen.Generate(context.Background(), &GenerateInput{Description: "   "})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
	if cm.calls.Load() != 0 {
		t.Error("model must not be called without a description")
	}
}

func TestGenerateInvalidJSON(t *testing.T) {
	gen, _ := newTestGenerator("这不是 JSON")

	_, err := gen.Generate(context.Background(), &GenerateInput{Description: "任意主题"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeGenerationFailed {
		t.Fatalf("expected CodeGenerationFailed, got %v", err)
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	gen, _ := newTestGenerator(`{"name": "缺标题", "overall_theme": "default", "slides": [{"title": "", "bullet_points": ["要点"]}]}`)

	_, err := gen.Generate(context.Background(), &GenerateInput{Description: "任意主题"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeSchemaValidationFailed {
		t.Fatalf("expected CodeSchemaValidationFailed, got %v", err)
	}
	if appErr.Detail == "" {
		t.Error("validation failure should carry detail")
	}
}
