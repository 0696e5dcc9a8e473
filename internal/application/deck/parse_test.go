package deck

import (
	"strings"
	"testing"
)

func TestParseDeck(t *testing.T) {
	raw := "```json\n{\"name\":\"Go 入门\",\"slides\":[{\"title\":\"简介\",\"bullet_points\":[\"静态类型\",\"并发友好\"],\"image_description\":\"吉祥物\"}],\"overall_theme\":\"professional\"}\n```"

	p, jsonText, err := ParseDeck(raw)
	if err != nil {
		t.Fatalf("ParseDeck() error = %v", err)
	}
	if !strings.HasPrefix(jsonText, "{") {
		t.Errorf("expected extracted json text, got %q", jsonText)
	}
	if p.Name != "Go 入门" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Slides) != 1 {
		t.Fatalf("len(Slides) = %d", len(p.Slides))
	}
	if p.Slides[0].Title != "简介" {
		t.Errorf("Title = %q", p.Slides[0].Title)
	}
	if len(p.Slides[0].BulletPoints) != 2 {
		t.Errorf("len(BulletPoints) = %d", len(p.Slides[0].BulletPoints))
	}
	if p.OverallTheme != "professional" {
		t.Errorf("OverallTheme = %q", p.OverallTheme)
	}
}

func TestParseDeckErrors(t *testing.T) {
	if _, _, err := ParseDeck(""); err == nil {
		t.Error("expected error for empty output")
	}
	if _, _, err := ParseDeck("not json at all"); err == nil {
		t.Error("expected error for non-json output")
	}
}

func TestParseSlide(t *testing.T) {
	s, _, err := ParseSlide(`{"title":"总结","bullet_points":["回顾"],"image_description":""}`)
	if err != nil {
		t.Fatalf("ParseSlide() error = %v", err)
	}
	if s.Title != "总结" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.ImageDescription != "" {
		t.Errorf("ImageDescription = %q", s.ImageDescription)
	}
}

func TestParseDiagram(t *testing.T) {
	d, _, err := ParseDiagram("说明如下：{\"markup\":\"graph TD; A-->B\",\"explanation\":\"流程从 A 到 B\"}")
	if err != nil {
		t.Fatalf("ParseDiagram() error = %v", err)
	}
	if d.Markup != "graph TD; A-->B" {
		t.Errorf("Markup = %q", d.Markup)
	}
	if d.Explanation != "流程从 A 到 B" {
		t.Errorf("Explanation = %q", d.Explanation)
	}
}
