package browser

import (
	"qa-agent/internal/entity"
)

// parseRawNode converts the map an Evaluate call returned for a describe
// script into a RawDOMNode. A nil or non-map result yields nil, which the
// tracking layer treats as "no element observed".
func parseRawNode(result interface{}) *entity.RawDOMNode {
	nodeMap, ok := result.(map[string]interface{})
	if !ok {
		return nil
	}

	node := &entity.RawDOMNode{
		NodeName:     getString(nodeMap, "nodeName"),
		IsVisible:    getBool(nodeMap, "isVisible"),
		IsScrollable: getBool(nodeMap, "isScrollable"),
		Text:         getString(nodeMap, "text"),
		XPath:        getString(nodeMap, "xpath"),
	}

	if raw, ok := nodeMap["elementIndex"].(float64); ok {
		idx := int(raw)
		node.ElementIndex = &idx
	}

	if raw, ok := nodeMap["nodeId"].(float64); ok {
		node.NodeID = int64(raw)
	}

	if raw, ok := nodeMap["backendNodeId"].(float64); ok {
		node.BackendNodeID = int64(raw)
	}

	if attrs, ok := nodeMap["attributes"].(map[string]interface{}); ok {
		node.Attributes = make(map[string]string, len(attrs))
		for name, value := range attrs {
			if str, ok := value.(string); ok {
				node.Attributes[name] = str
			}
		}
	}

	if pos, ok := nodeMap["absolutePosition"].(map[string]interface{}); ok {
		node.AbsolutePosition = &entity.Rect{
			X:      getFloat(pos, "x"),
			Y:      getFloat(pos, "y"),
			Width:  getFloat(pos, "width"),
			Height: getFloat(pos, "height"),
		}
	}

	if snap, ok := nodeMap["snapshot"].(map[string]interface{}); ok {
		node.Snapshot = &entity.RawSnapshot{
			IsClickable: getBool(snap, "isClickable"),
			CursorStyle: getString(snap, "cursorStyle"),
		}
	}

	if ax, ok := nodeMap["ax"].(map[string]interface{}); ok {
		node.AX = &entity.RawAXNode{
			Role:        getString(ax, "role"),
			Name:        getString(ax, "name"),
			Description: getString(ax, "description"),
			Ignored:     getBool(ax, "ignored"),
		}

		if props, ok := ax["properties"].(map[string]interface{}); ok {
			for name, value := range props {
				if str, ok := value.(string); ok {
					node.AX.Properties = append(node.AX.Properties, entity.AXProperty{
						Name:  name,
						Value: str,
					})
				}
			}
		}
	}

	return node
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}

	return ""
}

func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}

	return false
}

func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}

	if v, ok := m[key].(int); ok {
		return float64(v)
	}

	return 0
}

func getInt(m map[string]interface{}, key string) int {
	return int(getFloat(m, key))
}
