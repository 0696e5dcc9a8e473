package deck

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"deckgen-ai-api/internal/domain/entity"
)

func regionByKind(regions []Region, kind RegionKind) (Region, bool) {
	for _, r := range regions {
		if r.Kind == kind {
			return r, true
		}
	}
	return Region{}, false
}

func TestPlanSlideBulletsAndImage(t *testing.T) {
	s := &entity.Slide{
		Title:            "架构概览",
		BulletPoints:     []string{"网关", "服务层"},
		ImageDescription: "系统架构图",
	}

	regions := PlanSlide(s)
	if len(regions) != 3 {
		t.Fatalf("len(regions) = %d, want 3", len(regions))
	}
	if regions[0].Kind != RegionTitle || regions[1].Kind != RegionBullets || regions[2].Kind != RegionImage {
		t.Fatalf("region order = %v %v %v", regions[0].Kind, regions[1].Kind, regions[2].Kind)
	}

	contentWidth := slideWidthEMU - marginLeftEMU - marginRightEMU
	wantTextWidth := contentWidth - imageWidthEMU - gutterEMU
	bullets := regions[1]
	if bullets.Width != wantTextWidth {
		t.Errorf("bullets width = %d, want %d", bullets.Width, wantTextWidth)
	}

	image := regions[2]
	if image.X != marginLeftEMU+wantTextWidth+gutterEMU {
		t.Errorf("image X = %d, want %d", image.X, marginLeftEMU+wantTextWidth+gutterEMU)
	}
	if image.Width != imageWidthEMU || image.Height != imageHeightEMU {
		t.Errorf("image size = %dx%d, want %dx%d", image.Width, image.Height, imageWidthEMU, imageHeightEMU)
	}

	bodyTop := marginTopEMU + bodyOffsetEMU
	bodyHeight := slideHeightEMU - marginTopEMU - marginBottomEMU - bodyOffsetEMU
	if image.Y != bodyTop+(bodyHeight-imageHeightEMU)/2 {
		t.Errorf("image not vertically centered: Y = %d", image.Y)
	}
}

func TestPlanSlideImageOnly(t *testing.T) {
	s := &entity.Slide{Title: "封面", ImageDescription: "主视觉"}

	regions := PlanSlide(s)
	if len(regions) != 2 {
		t.Fatalf("len(regions) = %d, want 2", len(regions))
	}
	image, ok := regionByKind(regions, RegionImage)
	if !ok {
		t.Fatal("missing image region")
	}
	if image.X != (slideWidthEMU-imageWidthEMU)/2 {
		t.Errorf("image not horizontally centered: X = %d", image.X)
	}
}

func TestPlanSlideBulletsOnly(t *testing.T) {
	s := &entity.Slide{Title: "要点", BulletPoints: []string{"一", "二"}}

	regions := PlanSlide(s)
	if len(regions) != 2 {
		t.Fatalf("len(regions) = %d, want 2", len(regions))
	}
	bullets, ok := regionByKind(regions, RegionBullets)
	if !ok {
		t.Fatal("missing bullets region")
	}
	if bullets.Width != slideWidthEMU-marginLeftEMU-marginRightEMU {
		t.Errorf("bullets width = %d, want full content width", bullets.Width)
	}
}

func TestPlanSlideTitleOnly(t *testing.T) {
	regions := PlanSlide(&entity.Slide{Title: "纯标题"})
	if len(regions) != 1 || regions[0].Kind != RegionTitle {
		t.Fatalf("regions = %v, want single title region", regions)
	}
	if len(PlanSlide(nil)) != 1 {
		t.Error("nil slide should still produce a title region")
	}
}

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"professional", "professional"},
		{"CORPORATE blue", "professional"},
		{"一个 energetic 的风格", "energetic"},
		{"Dynamic startup pitch", "energetic"},
		{"minimalist", "minimalist"},
		{"", "default"},
		{"随便什么", "default"},
	}
	for _, tt := range tests {
		if got := ResolveTheme(tt.hint); got.Name != tt.want {
			t.Errorf("ResolveTheme(%q).Name = %q, want %q", tt.hint, got.Name, tt.want)
		}
	}
}

func genSlide() gopter.Gen {
	return gopter.CombineGens(
		gen.AnyString(),
		gen.SliceOf(gen.AnyString()),
		gen.AnyString(),
	).Map(func(vals []interface{}) *entity.Slide {
		return &entity.Slide{
			Title:            vals[0].(string),
			BulletPoints:     vals[1].([]string),
			ImageDescription: vals[2].(string),
		}
	})
}

func TestResolveThemeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any hint resolves to a known palette",
		prop.ForAll(func(hint string) bool {
			theme := ResolveTheme(hint)
			switch theme.Name {
			case themeDefault.Name, themeProfessional.Name, themeEnergetic.Name, themeMinimalist.Name:
				return theme.PrimaryColor != "" && theme.SecondaryColor != "" && theme.AccentColor != ""
			}
			return false
		}, gen.AnyString()),
	)

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPlanSlideProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("regions stay within the canvas",
		prop.ForAll(func(s *entity.Slide) bool {
			for _, r := range PlanSlide(s) {
				if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
					return false
				}
				if r.X+r.Width > slideWidthEMU || r.Y+r.Height > slideHeightEMU {
					return false
				}
			}
			return true
		}, genSlide()),
	)

	properties.Property("title region always comes first",
		prop.ForAll(func(s *entity.Slide) bool {
			regions := PlanSlide(s)
			return len(regions) >= 1 && regions[0].Kind == RegionTitle
		}, genSlide()),
	)

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
