package deck

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"deckgen-ai-api/internal/domain/entity"
)

const (
	maxSlides          = 64
	maxBulletPoints    = 64
	maxTitleRunes      = 512
	maxBulletRunes     = 2000
	maxNameRunes       = 255
	maxImageDescByRune = 4000
)

type PresentationValidationError struct {
	Issues []string
}

func (e PresentationValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "presentation validation failed"
	}
	return "presentation validation failed: " + strings.Join(e.Issues, "; ")
}

// ValidatePresentation 对模型产出的演示文稿内容做强约束校验，避免脏数据进入渲染流水线。
func ValidatePresentation(p *entity.Presentation) error {
	var issues []string
	if p == nil {
		return PresentationValidationError{Issues: []string{"presentation is nil"}}
	}

	if strings.TrimSpace(p.Name) == "" {
		issues = append(issues, "name is required")
	} else if utf8.RuneCountInString(p.Name) > maxNameRunes {
		issues = append(issues, "name too long")
	}

	if len(p.Slides) == 0 {
		issues = append(issues, "slides must not be empty")
	}
	if len(p.Slides) > maxSlides {
		issues = append(issues, fmt.Sprintf("too many slides: %d > %d", len(p.Slides), maxSlides))
	}

	for i := range p.Slides {
		issues = append(issues, slideIssues(&p.Slides[i], fmt.Sprintf("slides[%d]", i))...)
	}

	if len(issues) > 0 {
		return PresentationValidationError{Issues: issues}
	}
	return nil
}

// ValidateSlide 校验单页幻灯片，编辑流程复用。
func ValidateSlide(s *entity.Slide) error {
	if s == nil {
		return PresentationValidationError{Issues: []string{"slide is nil"}}
	}
	issues := slideIssues(s, "slide")
	if len(issues) > 0 {
		return PresentationValidationError{Issues: issues}
	}
	return nil
}

func slideIssues(s *entity.Slide, path string) []string {
	var issues []string

	if strings.TrimSpace(s.Title) == "" {
		issues = append(issues, path+".title is required")
	} else if utf8.RuneCountInString(s.Title) > maxTitleRunes {
		issues = append(issues, path+".title too long")
	}

	if len(s.BulletPoints) > maxBulletPoints {
		issues = append(issues, fmt.Sprintf("%s has too many bullet points: %d > %d", path, len(s.BulletPoints), maxBulletPoints))
	}
	for j, bp := range s.BulletPoints {
		if strings.TrimSpace(bp) == "" {
			issues = append(issues, fmt.Sprintf("%s.bullet_points[%d] is empty", path, j))
		} else if utf8.RuneCountInString(bp) > maxBulletRunes {
			issues = append(issues, fmt.Sprintf("%s.bullet_points[%d] too long", path, j))
		}
	}

	if utf8.RuneCountInString(s.ImageDescription) > maxImageDescByRune {
		issues = append(issues, path+".image_description too long")
	}

	return issues
}

type DiagramValidationError struct {
	Issues []string
}

func (e DiagramValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "diagram validation failed"
	}
	return "diagram validation failed: " + strings.Join(e.Issues, "; ")
}

// ValidateDiagram 校验图表产出：标记不能为空，说明可选。
func ValidateDiagram(d *entity.DiagramResult) error {
	if d == nil {
		return DiagramValidationError{Issues: []string{"diagram is nil"}}
	}
	if strings.TrimSpace(d.Markup) == "" {
		return DiagramValidationError{Issues: []string{"markup is required"}}
	}
	return nil
}
