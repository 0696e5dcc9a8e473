// Package entity 定义领域实体
package entity

import (
	"time"
)

// Slide 单页幻灯片的结构化内容
type Slide struct {
	Title            string   `json:"title"`
	BulletPoints     []string `json:"bullet_points,omitempty"`
	ImageDescription string   `json:"image_description,omitempty"`
	// ImageData base64 编码的图片数据；存在时渲染优先于 ImageDescription
	ImageData string `json:"image_data,omitempty"`
}

// HasImage 判断幻灯片是否包含图片区域（描述或数据任一存在）
func (s *Slide) HasImage() bool {
	return s != nil && (s.ImageData != "" || s.ImageDescription != "")
}

// HasBullets 判断幻灯片是否有要点
func (s *Slide) HasBullets() bool {
	return s != nil && len(s.BulletPoints) > 0
}

// Clone 返回幻灯片的深拷贝
func (s *Slide) Clone() Slide {
	out := Slide{
		Title:            s.Title,
		ImageDescription: s.ImageDescription,
		ImageData:        s.ImageData,
	}
	if len(s.BulletPoints) > 0 {
		out.BulletPoints = make([]string, len(s.BulletPoints))
		copy(out.BulletPoints, s.BulletPoints)
	}
	return out
}

// Presentation 整个演示文稿的结构化内容
type Presentation struct {
	Name string `json:"name"`
	// Slides 按展示顺序排列；编辑以位置下标定位
	Slides []Slide `json:"slides"`
	// OverallTheme 风格名称，大小写不敏感地匹配主题表
	OverallTheme string `json:"overall_theme,omitempty"`
}

// Clone 返回演示文稿的深拷贝
func (p *Presentation) Clone() *Presentation {
	out := &Presentation{
		Name:         p.Name,
		OverallTheme: p.OverallTheme,
		Slides:       make([]Slide, 0, len(p.Slides)),
	}
	for i := range p.Slides {
		out.Slides = append(out.Slides, p.Slides[i].Clone())
	}
	return out
}

// DiagramResult 图表描述语言生成结果，与演示文稿状态无关
type DiagramResult struct {
	Markup      string `json:"markup"`
	Explanation string `json:"explanation,omitempty"`
}

// PresentationRecord 服务端存储的演示文稿记录，进程生命周期内有效
type PresentationRecord struct {
	ID          string
	Description string
	Content     *Presentation
	// Artifact 最近一次渲染出的二进制文稿
	Artifact  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPresentationRecord 创建演示文稿记录
func NewPresentationRecord(id, description string, content *Presentation, artifact []byte) *PresentationRecord {
	now := time.Now()
	return &PresentationRecord{
		ID:          id,
		Description: description,
		Content:     content,
		Artifact:    artifact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Snapshot 返回记录的深拷贝，调用方可以在锁外安全读取
func (r *PresentationRecord) Snapshot() *PresentationRecord {
	out := &PresentationRecord{
		ID:          r.ID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Content != nil {
		out.Content = r.Content.Clone()
	}
	if len(r.Artifact) > 0 {
		out.Artifact = append([]byte(nil), r.Artifact...)
	}
	return out
}
