package deck

import (
	"encoding/json"
	"fmt"
	"strings"

	"deckgen-ai-api/internal/domain/entity"
	wfnode "deckgen-ai-api/internal/workflow/node"
)

// ParseDeck 从模型输出中解析整套演示文稿内容，并返回“截取后的 JSON 文本”。
func ParseDeck(rawText string) (*entity.Presentation, string, error) {
	jsonText := wfnode.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, jsonText, fmt.Errorf("empty deck output")
	}

	var p entity.Presentation
	if err := json.Unmarshal([]byte(jsonText), &p); err != nil {
		return nil, jsonText, fmt.Errorf("failed to parse deck json: %w", err)
	}
	return &p, jsonText, nil
}

// ParseSlide 从模型输出中解析单页幻灯片内容。
func ParseSlide(rawText string) (*entity.Slide, string, error) {
	jsonText := wfnode.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, jsonText, fmt.Errorf("empty slide output")
	}

	var s entity.Slide
	if err := json.Unmarshal([]byte(jsonText), &s); err != nil {
		return nil, jsonText, fmt.Errorf("failed to parse slide json: %w", err)
	}
	return &s, jsonText, nil
}

// ParseDiagram 从模型输出中解析图表标记与说明。
func ParseDiagram(rawText string) (*entity.DiagramResult, string, error) {
	jsonText := wfnode.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, jsonText, fmt.Errorf("empty diagram output")
	}

	var d entity.DiagramResult
	if err := json.Unmarshal([]byte(jsonText), &d); err != nil {
		return nil, jsonText, fmt.Errorf("failed to parse diagram json: %w", err)
	}
	return &d, jsonText, nil
}
