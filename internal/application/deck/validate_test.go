package deck

import (
	"strings"
	"testing"

	"deckgen-ai-api/internal/domain/entity"
)

func validPresentation() *entity.Presentation {
	return &entity.Presentation{
		Name: "年度汇报",
		Slides: []entity.Slide{
			{Title: "开场", BulletPoints: []string{"欢迎"}},
			{Title: "数据", BulletPoints: []string{"营收增长"}, ImageDescription: "柱状图"},
		},
		OverallTheme: "corporate",
	}
}

func TestValidatePresentationOK(t *testing.T) {
	if err := ValidatePresentation(validPresentation()); err != nil {
		t.Fatalf("ValidatePresentation() error = %v", err)
	}
}

func TestValidatePresentationIssues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *entity.Presentation)
		wantSub string
	}{
		{
			name:    "empty name",
			mutate:  func(p *entity.Presentation) { p.Name = "  " },
			wantSub: "name is required",
		},
		{
			name:    "no slides",
			mutate:  func(p *entity.Presentation) { p.Slides = nil },
			wantSub: "slides must not be empty",
		},
		{
			name:    "empty slide title",
			mutate:  func(p *entity.Presentation) { p.Slides[1].Title = "" },
			wantSub: "slides[1].title is required",
		},
		{
			name:    "empty bullet",
			mutate:  func(p *entity.Presentation) { p.Slides[0].BulletPoints = []string{"好", " "} },
			wantSub: "slides[0].bullet_points[1] is empty",
		},
		{
			name:    "title too long",
			mutate:  func(p *entity.Presentation) { p.Slides[0].Title = strings.Repeat("标", maxTitleRunes+1) },
			wantSub: "slides[0].title too long",
		},
		{
			name: "too many slides",
			mutate: func(p *entity.Presentation) {
				for len(p.Slides) <= maxSlides {
					p.Slides = append(p.Slides, entity.Slide{Title: "页"})
				}
			},
			wantSub: "too many slides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPresentation()
			tt.mutate(p)
			err := ValidatePresentation(p)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr PresentationValidationError
			ok := false
			if e, isType := err.(PresentationValidationError); isType {
				vErr = e
				ok = true
			}
			if !ok {
				t.Fatalf("expected PresentationValidationError, got %T", err)
			}
			if !strings.Contains(vErr.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", vErr.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidateSlide(t *testing.T) {
	if err := ValidateSlide(&entity.Slide{Title: "结论"}); err != nil {
		t.Errorf("ValidateSlide() error = %v", err)
	}
	if err := ValidateSlide(&entity.Slide{}); err == nil {
		t.Error("expected error for empty title")
	}
	if err := ValidateSlide(nil); err == nil {
		t.Error("expected error for nil slide")
	}
}

func TestValidateDiagram(t *testing.T) {
	if err := ValidateDiagram(&entity.DiagramResult{Markup: "graph TD; A-->B", Explanation: "说明"}); err != nil {
		t.Errorf("ValidateDiagram() error = %v", err)
	}
	if err := ValidateDiagram(&entity.DiagramResult{Explanation: "只有说明"}); err == nil {
		t.Error("expected error for missing markup")
	}
	// 说明可以为空
	if err := ValidateDiagram(&entity.DiagramResult{Markup: "graph TD; A-->B"}); err != nil {
		t.Errorf("explanation should be optional, got %v", err)
	}
}
