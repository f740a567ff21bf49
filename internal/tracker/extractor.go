package tracker

import (
	"strings"

	"qa-agent/internal/entity"
)

const maxMeaningfulTextLen = 200

// ExtractElementDetail normalizes a raw node captured by the browser layer
// into the immutable snapshot stored with every interaction. A nil node
// yields an empty detail so the recording path always has something to
// append.
func ExtractElementDetail(node *entity.RawDOMNode) entity.ElementDetail {
	if node == nil {
		return entity.ElementDetail{}
	}

	detail := entity.ElementDetail{
		NodeID:         node.NodeID,
		BackendNodeID:  node.BackendNodeID,
		TagName:        strings.ToLower(strings.TrimSpace(node.NodeName)),
		IsVisible:      node.IsVisible,
		IsScrollable:   node.IsScrollable,
		MeaningfulText: meaningfulText(node.Text),
		NativeXPath:    strings.TrimSpace(node.XPath),
	}

	if node.ElementIndex != nil {
		idx := *node.ElementIndex
		detail.ElementIndex = &idx
	}

	if len(node.Attributes) > 0 {
		attrs := make(map[string]string, len(node.Attributes))
		for name, value := range node.Attributes {
			attrs[name] = value
		}
		detail.Attributes = attrs
	}

	if node.AbsolutePosition != nil {
		pos := *node.AbsolutePosition
		detail.AbsolutePosition = &pos
	}

	if node.Snapshot != nil {
		detail.Snapshot = &entity.SnapshotDetail{
			IsClickable: node.Snapshot.IsClickable,
			CursorStyle: node.Snapshot.CursorStyle,
		}
	}

	if node.AX != nil {
		detail.Accessibility = extractAccessibility(node.AX)
	}

	detail.Selectors = SynthesizeSelectors(detail)

	return detail
}

func extractAccessibility(ax *entity.RawAXNode) *entity.AccessibilityDetail {
	out := &entity.AccessibilityDetail{
		Role:        ax.Role,
		Name:        ax.Name,
		Description: ax.Description,
		Ignored:     ax.Ignored,
	}

	if len(ax.Properties) > 0 {
		props := make(map[string]string, len(ax.Properties))
		for _, p := range ax.Properties {
			if p.Name == "" {
				continue
			}
			props[p.Name] = p.Value
		}
		if len(props) > 0 {
			out.Properties = props
		}
	}

	return out
}

// meaningfulText collapses whitespace and clamps the captured text so log
// entries stay bounded no matter what the page renders.
func meaningfulText(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}

	return truncateRunes(strings.Join(fields, " "), maxMeaningfulTextLen)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
