package deck

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"testing"

	"deckgen-ai-api/internal/domain/entity"
	apperrors "deckgen-ai-api/pkg/errors"
)

var textRunRe = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)

// slideTexts 解包 pptx，按幻灯片顺序返回每页的文本串序列。
func slideTexts(t *testing.T, artifact []byte) [][]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	if err != nil {
		t.Fatalf("artifact is not a zip: %v", err)
	}

	files := make(map[string]*zip.File)
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			files[f.Name] = f
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		var all []string
		for _, f := range zr.File {
			all = append(all, f.Name)
		}
		t.Fatalf("no slide parts in artifact, parts: %q", all)
	}

	var out [][]string
	for _, name := range names {
		rc, err := files[name].Open()
		if err != nil {
			t.Fatal(err)
		}
		xmlBytes, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}

		var texts []string
		for _, m := range textRunRe.FindAllStringSubmatch(string(xmlBytes), -1) {
			texts = append(texts, m[1])
		}
		out = append(out, texts)
	}
	return out
}

// 1x1 透明 PNG
var tinyPNG = func() []byte {
	b, _ := base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
	return b
}()

func TestRender(t *testing.T) {
	r := NewRenderer(nil)

	artifact, err := r.Render(context.Background(), validPresentation())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(artifact) == 0 {
		t.Fatal("empty artifact")
	}
	// pptx 是 zip 容器，必须以 PK 开头
	if !bytes.HasPrefix(artifact, []byte("PK")) {
		t.Errorf("artifact does not look like a zip: % x", artifact[:4])
	}
}

func TestRenderWithImageData(t *testing.T) {
	r := NewRenderer(nil)
	p := validPresentation()
	p.Slides[1].ImageData = base64.StdEncoding.EncodeToString(tinyPNG)

	artifact, err := r.Render(context.Background(), p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(artifact) == 0 {
		t.Fatal("empty artifact")
	}
}

func TestRenderBadImageDataFallsBack(t *testing.T) {
	r := NewRenderer(nil)
	p := validPresentation()
	p.Slides[1].ImageData = "不是 base64！"

	if _, err := r.Render(context.Background(), p); err != nil {
		t.Fatalf("Render() should fall back to placeholder, got %v", err)
	}
}

func TestRenderNilContent(t *testing.T) {
	r := NewRenderer(nil)

	_, err := r.Render(context.Background(), nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeRenderFailed {
		t.Fatalf("expected CodeRenderFailed, got %v", err)
	}
}

func TestRenderBulletOrderPreserved(t *testing.T) {
	r := NewRenderer(nil)
	p := &entity.Presentation{
		Name: "要点顺序",
		Slides: []entity.Slide{
			{Title: "要点页", BulletPoints: []string{"A", "B", "C"}},
		},
	}

	artifact, err := r.Render(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	slides := slideTexts(t, artifact)
	if len(slides) != 1 {
		t.Fatalf("slide count = %d, want 1", len(slides))
	}

	var bullets []string
	for _, text := range slides[0] {
		if strings.HasPrefix(text, bulletGlyph) {
			bullets = append(bullets, text)
		}
	}
	want := []string{bulletGlyph + "A", bulletGlyph + "B", bulletGlyph + "C"}
	if !reflect.DeepEqual(bullets, want) {
		t.Errorf("bullets = %q, want %q", bullets, want)
	}
}

func TestRenderIdempotentText(t *testing.T) {
	r := NewRenderer(nil)
	p := validPresentation()

	a, err := r.Render(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	textsA := slideTexts(t, a)
	textsB := slideTexts(t, b)
	if len(textsA) != len(p.Slides) {
		t.Fatalf("slide count = %d, want %d", len(textsA), len(p.Slides))
	}
	// 相同内容两次渲染，每页文本完全一致
	if !reflect.DeepEqual(textsA, textsB) {
		t.Errorf("renders differ:\n%q\n%q", textsA, textsB)
	}
	if len(textsA[0]) == 0 || textsA[0][0] != p.Slides[0].Title {
		t.Errorf("slide 0 texts = %q, want title %q first", textsA[0], p.Slides[0].Title)
	}
}
