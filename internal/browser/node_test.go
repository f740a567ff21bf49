package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawNode(t *testing.T) {
	t.Run("full describe result", func(t *testing.T) {
		result := map[string]interface{}{
			"elementIndex": float64(7),
			"nodeName":     "BUTTON",
			"attributes": map[string]interface{}{
				"id":    "submit-btn",
				"class": "btn btn-primary",
			},
			"isVisible":    true,
			"isScrollable": false,
			"absolutePosition": map[string]interface{}{
				"x":      float64(120),
				"y":      float64(340.5),
				"width":  float64(88),
				"height": float64(32),
			},
			"snapshot": map[string]interface{}{
				"isClickable": true,
				"cursorStyle": "pointer",
			},
			"ax": map[string]interface{}{
				"role":        "button",
				"name":        "Submit",
				"description": "",
				"ignored":     false,
				"properties": map[string]interface{}{
					"expanded": "false",
				},
			},
			"text":  "Submit",
			"xpath": "/html[1]/body[1]/form[1]/button[1]",
		}

		node := parseRawNode(result)
		require.NotNil(t, node)

		require.NotNil(t, node.ElementIndex)
		assert.Equal(t, 7, *node.ElementIndex)
		assert.Equal(t, "BUTTON", node.NodeName)
		assert.Equal(t, "submit-btn", node.Attributes["id"])
		assert.Equal(t, "btn btn-primary", node.Attributes["class"])
		assert.True(t, node.IsVisible)
		assert.False(t, node.IsScrollable)

		require.NotNil(t, node.AbsolutePosition)
		assert.Equal(t, 120.0, node.AbsolutePosition.X)
		assert.Equal(t, 340.5, node.AbsolutePosition.Y)

		require.NotNil(t, node.Snapshot)
		assert.True(t, node.Snapshot.IsClickable)
		assert.Equal(t, "pointer", node.Snapshot.CursorStyle)

		require.NotNil(t, node.AX)
		assert.Equal(t, "button", node.AX.Role)
		assert.Equal(t, "Submit", node.AX.Name)
		require.Len(t, node.AX.Properties, 1)
		assert.Equal(t, "expanded", node.AX.Properties[0].Name)
		assert.Equal(t, "false", node.AX.Properties[0].Value)

		assert.Equal(t, "Submit", node.Text)
		assert.Equal(t, "/html[1]/body[1]/form[1]/button[1]", node.XPath)
	})

	t.Run("nil element index stays absent", func(t *testing.T) {
		node := parseRawNode(map[string]interface{}{
			"elementIndex": nil,
			"nodeName":     "DIV",
		})

		require.NotNil(t, node)
		assert.Nil(t, node.ElementIndex)
		assert.Equal(t, "DIV", node.NodeName)
	})

	t.Run("nil result yields nil node", func(t *testing.T) {
		assert.Nil(t, parseRawNode(nil))
	})

	t.Run("non map result yields nil node", func(t *testing.T) {
		assert.Nil(t, parseRawNode("unexpected"))
		assert.Nil(t, parseRawNode([]interface{}{}))
	})

	t.Run("non string attribute values skipped", func(t *testing.T) {
		node := parseRawNode(map[string]interface{}{
			"nodeName": "INPUT",
			"attributes": map[string]interface{}{
				"name":  "username",
				"bogus": float64(3),
			},
		})

		require.NotNil(t, node)
		assert.Equal(t, map[string]string{"name": "username"}, node.Attributes)
	})
}
