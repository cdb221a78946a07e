package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"plate_reader/internal/feature/plate/domain/entity"
)

type characterJSON struct {
	Char string  `json:"char"`
	X    float64 `json:"x"`
}

type responseJSON struct {
	Characters []characterJSON `json:"characters"`
}

// ParseDetections はモデル応答のJSONを検出結果に変換します。
// コードフェンスで囲まれた応答も受け付け、文字テーブルにない文字は捨てます。
func ParseDetections(text string) ([]entity.Detection, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var resp responseJSON
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	dets := make([]entity.Detection, 0, len(resp.Characters))
	for _, c := range resp.Characters {
		class, ok := entity.LookupGlyph(strings.TrimSpace(c.Char))
		if !ok {
			continue
		}
		dets = append(dets, entity.Detection{Left: c.X, ClassID: int(class)})
	}
	return dets, nil
}
