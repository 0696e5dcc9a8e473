package deck

import (
	"strings"

	"deckgen-ai-api/internal/domain/entity"
)

// 布局单位为 EMU，与 pptx 坐标体系一致。
// 画布为 16:9 宽屏（10 x 5.625 英寸），所有几何尺寸按 0.75 的比例
// 从 13.333 x 7.5 英寸的设计稿换算而来。
const (
	emuPerInch = 914400

	canvasScale = 0.75

	slideWidthEMU  = int64(10 * emuPerInch)
	slideHeightEMU = int64(7.5 * canvasScale * emuPerInch)

	marginLeftEMU   = int64(0.75 * canvasScale * emuPerInch)
	marginRightEMU  = int64(0.75 * canvasScale * emuPerInch)
	marginTopEMU    = int64(0.5 * canvasScale * emuPerInch)
	marginBottomEMU = int64(0.5 * canvasScale * emuPerInch)

	titleHeightEMU = int64(1 * canvasScale * emuPerInch)
	// 正文区从标题下方 1.2 英寸（设计稿尺度）处开始。
	bodyOffsetEMU = int64(1.2 * canvasScale * emuPerInch)

	imageWidthEMU  = int64(4 * canvasScale * emuPerInch)
	imageHeightEMU = int64(3 * canvasScale * emuPerInch)
	gutterEMU      = int64(0.5 * canvasScale * emuPerInch)
)

// Theme 描述一套幻灯片的配色，颜色为 AARRGGBB 十六进制。
type Theme struct {
	Name           string
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
}

var (
	themeDefault = Theme{
		Name:           "default",
		PrimaryColor:   "FF000000",
		SecondaryColor: "FF323232",
		AccentColor:    "FF0070C0",
	}
	themeProfessional = Theme{
		Name:           "professional",
		PrimaryColor:   "FF1E1E1E",
		SecondaryColor: "FF505050",
		AccentColor:    "FF4472C4",
	}
	themeEnergetic = Theme{
		Name:           "energetic",
		PrimaryColor:   "FF000000",
		SecondaryColor: "FF323232",
		AccentColor:    "FFFF7800",
	}
	themeMinimalist = Theme{
		Name:           "minimalist",
		PrimaryColor:   "FF0A0A0A",
		SecondaryColor: "FF3C3C3C",
		AccentColor:    "FF969696",
	}
)

// ResolveTheme 按主题提示词做大小写不敏感的子串匹配，未命中时回落到默认配色。
func ResolveTheme(hint string) Theme {
	lower := strings.ToLower(hint)
	switch {
	case strings.Contains(lower, "professional") || strings.Contains(lower, "corporate"):
		return themeProfessional
	case strings.Contains(lower, "energetic") || strings.Contains(lower, "dynamic"):
		return themeEnergetic
	case strings.Contains(lower, "minimalist"):
		return themeMinimalist
	default:
		return themeDefault
	}
}

type RegionKind string

const (
	RegionTitle   RegionKind = "title"
	RegionBullets RegionKind = "bullets"
	RegionImage   RegionKind = "image"
)

// Region 是一块放置内容的矩形区域，坐标与尺寸均为 EMU。
type Region struct {
	Kind   RegionKind
	X      int64
	Y      int64
	Width  int64
	Height int64
}

// PlanSlide 根据单页内容计算区域布局。区域只描述几何；
// 配色由 ResolveTheme 单独解析，渲染阶段把主题样式套用到各区域上，
// 两者合起来构成一页的完整布局方案。
//
// 布局规则：
//   - 始终包含标题区；
//   - 同时有要点与配图时，配图固定 4x3 英寸靠右并在正文区垂直居中，要点占据左侧剩余宽度；
//   - 只有配图时，配图在正文区水平与垂直居中；
//   - 只有要点时，要点占满整个正文区。
func PlanSlide(s *entity.Slide) []Region {
	contentWidth := slideWidthEMU - marginLeftEMU - marginRightEMU
	contentHeight := slideHeightEMU - marginTopEMU - marginBottomEMU

	bodyTop := marginTopEMU + bodyOffsetEMU
	bodyHeight := contentHeight - bodyOffsetEMU

	regions := []Region{{
		Kind:   RegionTitle,
		X:      marginLeftEMU,
		Y:      marginTopEMU,
		Width:  contentWidth,
		Height: titleHeightEMU,
	}}
	if s == nil {
		return regions
	}

	hasBullets := s.HasBullets()
	hasImage := s.HasImage()

	switch {
	case hasBullets && hasImage:
		textWidth := contentWidth - imageWidthEMU - gutterEMU
		regions = append(regions, Region{
			Kind:   RegionBullets,
			X:      marginLeftEMU,
			Y:      bodyTop,
			Width:  textWidth,
			Height: bodyHeight,
		})
		regions = append(regions, Region{
			Kind:   RegionImage,
			X:      marginLeftEMU + textWidth + gutterEMU,
			Y:      bodyTop + (bodyHeight-imageHeightEMU)/2,
			Width:  imageWidthEMU,
			Height: imageHeightEMU,
		})
	case hasImage:
		regions = append(regions, Region{
			Kind:   RegionImage,
			X:      (slideWidthEMU - imageWidthEMU) / 2,
			Y:      bodyTop + (bodyHeight-imageHeightEMU)/2,
			Width:  imageWidthEMU,
			Height: imageHeightEMU,
		})
	case hasBullets:
		regions = append(regions, Region{
			Kind:   RegionBullets,
			X:      marginLeftEMU,
			Y:      bodyTop,
			Width:  contentWidth,
			Height: bodyHeight,
		})
	}

	return regions
}
