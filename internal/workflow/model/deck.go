package model

// DeckGenerateInput 演示文稿生成工作流输入
type DeckGenerateInput struct {
	Description string
	NumSlides   int
	Audience    string
	Tone        string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// SlideEditInput 幻灯片编辑工作流输入
type SlideEditInput struct {
	// SlideJSON 当前幻灯片的 JSON 序列化文本
	SlideJSON string
	// ElementID 目标元素标识（title / image_description / bullet_points / bullet_point_N）
	ElementID string
	// CurrentText 目标元素的当前文本
	CurrentText string
	// Instruction 用户的自然语言编辑指令
	Instruction string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// DiagramInput 图表生成工作流输入
type DiagramInput struct {
	Instruction string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
