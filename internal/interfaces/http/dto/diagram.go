package dto

// SketchRequest 图表生成请求
type SketchRequest struct {
	Message string `json:"message" binding:"required"`
}

// SketchResponse 图表生成响应
type SketchResponse struct {
	Result SketchResult `json:"result"`
}

// SketchResult 图表标记与说明
type SketchResult struct {
	Markup      string `json:"markup"`
	Explanation string `json:"explanation"`
}
