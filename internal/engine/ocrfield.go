package engine

import (
	"sort"
	"strings"
)

// OcrField is a single recognized text fragment as emitted by an external
// recognition engine: the text, the engine's confidence for it, and the
// top-left corner of its bounding box.
type OcrField struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
	TopY       float64 `json:"top_y"`
	LeftX      float64 `json:"left_x"`
}

// NormalizeFields turns an unordered field list into lines in approximate
// reading order: fields below the confidence threshold are dropped, the rest
// are stable-sorted by vertical position, ties broken by horizontal position.
// Fields are not merged across a row; one field becomes one line.
// An empty input yields an empty output.
func NormalizeFields(fields []OcrField, minConfidence float32) []string {
	kept := make([]OcrField, 0, len(fields))
	for _, f := range fields {
		if f.Confidence < minConfidence {
			continue
		}
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		kept = append(kept, f)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].TopY != kept[j].TopY {
			return kept[i].TopY < kept[j].TopY
		}
		return kept[i].LeftX < kept[j].LeftX
	})
	lines := make([]string, 0, len(kept))
	for _, f := range kept {
		lines = append(lines, strings.TrimSpace(f.Text))
	}
	return lines
}

// FlattenFields renders the normalized reading order as one text block, for
// strategies that consume flattened receipt text.
func FlattenFields(fields []OcrField, minConfidence float32) string {
	return strings.Join(NormalizeFields(fields, minConfidence), "\n")
}
