package deck

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"deckgen-ai-api/internal/domain/entity"
	wfchain "deckgen-ai-api/internal/workflow/chain"
	apperrors "deckgen-ai-api/pkg/errors"
)

// fakeChatModel 返回预设内容，用于在不访问任何上游的情况下驱动工作流链。
type fakeChatModel struct {
	content string
	err     error
	calls   atomic.Int64
}

func (m *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

type fakeFactory struct {
	chatModel *fakeChatModel
}

func (f *fakeFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.chatModel, nil
}

func newTestEditor(content string) (*Editor, *fakeChatModel) {
	cm := &fakeChatModel{content: content}
	chain := wfchain.NewSlideEditChain(&fakeFactory{chatModel: cm})
	return NewEditor(nil, chain, NewLLMSemaphore(nil)), cm
}

func editorContent() *entity.Presentation {
	return &entity.Presentation{
		Name: "产品介绍",
		Slides: []entity.Slide{
			{Title: "概述", BulletPoints: []string{"定位", "目标用户"}, ImageData: "aW1n"},
			{Title: "路线图", BulletPoints: []string{"Q1", "Q2"}},
		},
		OverallTheme: "professional",
	}
}

func TestEditTitleOnly(t *testing.T) {
	editor, cm := newTestEditor(`{"title": "全新概述", "bullet_points": ["完全不同"], "image_description": "别的图"}`)
	content := editorContent()

	updated, err := editor.Edit(context.Background(), &EditInput{
		Content:     content,
		SlideIndex:  0,
		ElementID:   "title",
		Instruction: "把标题改得更有冲击力",
	})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if cm.calls.Load() != 1 {
		t.Errorf("model calls = %d, want 1", cm.calls.Load())
	}

	if updated.Title != "全新概述" {
		t.Errorf("Title = %q, want %q", updated.Title, "全新概述")
	}
	if len(updated.BulletPoints) != 2 || updated.BulletPoints[0] != "定位" {
		t.Errorf("bullet points changed on title edit: %v", updated.BulletPoints)
	}
	if updated.ImageData != "aW1n" {
		t.Error("image data must survive title edit")
	}
	// 输入内容本身不可被修改
	if content.Slides[0].Title != "概述" {
		t.Error("Edit mutated the input content")
	}
}

func TestEditBulletPoint(t *testing.T) {
	editor, _ := newTestEditor(`{"title": "概述", "bullet_points": ["定位", "面向企业客户"], "image_description": ""}`)

	updated, err := editor.Edit(context.Background(), &EditInput{
		Content:     editorContent(),
		SlideIndex:  0,
		ElementID:   "bullet_point_1",
		Instruction: "突出企业客户",
	})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.BulletPoints[1] != "面向企业客户" {
		t.Errorf("BulletPoints[1] = %q", updated.BulletPoints[1])
	}
	if updated.BulletPoints[0] != "定位" {
		t.Errorf("untouched bullet changed: %q", updated.BulletPoints[0])
	}
}

func TestEditUnknownElementReplacesSlide(t *testing.T) {
	editor, _ := newTestEditor(`{"title": "重写的一页", "bullet_points": ["新要点"], "image_description": "新图"}`)

	updated, err := editor.Edit(context.Background(), &EditInput{
		Content:     editorContent(),
		SlideIndex:  0,
		ElementID:   "whole_slide",
		Instruction: "整页重写",
	})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.Title != "重写的一页" || len(updated.BulletPoints) != 1 {
		t.Errorf("slide not replaced: %+v", updated)
	}
	if updated.ImageData != "aW1n" {
		t.Error("image data must survive whole-slide replacement")
	}
}

func TestEditSlideIndexOutOfRange(t *testing.T) {
	editor, cm := newTestEditor(`{"title": "无关", "bullet_points": []}`)

	_, err := editor.Edit(context.Background(), &EditInput{
		Content:     editorContent(),
		SlideIndex:  5,
		ElementID:   "title",
		Instruction: "改一下",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeSlideIndexOutOfRange {
		t.Fatalf("expected CodeSlideIndexOutOfRange, got %v", err)
	}
	// 越界必须在调用模型之前被拒绝
	if cm.calls.Load() != 0 {
		t.Errorf("model called %d times for out-of-range index", cm.calls.Load())
	}
}

func TestEditMissingInstruction(t *testing.T) {
	editor, cm := newTestEditor(`{}`)

	_, err := editor.Edit(context.Background(), &EditInput{
		Content:    editorContent(),
		SlideIndex: 0,
		ElementID:  "title",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
	if cm.calls.Load() != 0 {
		t.Error("model must not be called without an instruction")
	}
}

func TestEditInvalidModelOutput(t *testing.T) {
	editor, _ := newTestEditor(`{"title": "", "bullet_points": ["要点"]}`)

	_, err := editor.Edit(context.Background(), &EditInput{
		Content:     editorContent(),
		SlideIndex:  0,
		ElementID:   "title",
		Instruction: "改标题",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeEditValidationFailed {
		t.Fatalf("expected CodeEditValidationFailed, got %v", err)
	}
}

func TestMergeSlideBulletIndexOutOfRange(t *testing.T) {
	current := entity.Slide{Title: "原", BulletPoints: []string{"a"}, ImageData: "数据"}
	proposed := entity.Slide{Title: "新", BulletPoints: []string{"x", "y", "z"}}

	merged := mergeSlide(&current, &proposed, "bullet_point_9")
	if merged.Title != "新" {
		t.Errorf("expected whole-slide replacement, got title %q", merged.Title)
	}
	if merged.ImageData != "数据" {
		t.Error("image data must be preserved")
	}
}
