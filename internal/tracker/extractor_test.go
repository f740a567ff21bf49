package tracker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-agent/internal/entity"
)

func intPtr(v int) *int {
	return &v
}

func TestExtractElementDetailNilNode(t *testing.T) {
	detail := ExtractElementDetail(nil)

	assert.False(t, detail.HasElementIndex())
	assert.Empty(t, detail.TagName)
	assert.Empty(t, detail.Attributes)
	assert.Empty(t, detail.Selectors)

	_, ok := detail.Key()
	assert.False(t, ok)
}

func TestExtractElementDetailNormalization(t *testing.T) {
	node := &entity.RawDOMNode{
		ElementIndex: intPtr(5),
		NodeName:     "  BUTTON ",
		Attributes: map[string]string{
			"id":    "submit-btn",
			"class": "btn btn-primary",
		},
		IsVisible:        true,
		AbsolutePosition: &entity.Rect{X: 10, Y: 20, Width: 100, Height: 30},
		Snapshot:         &entity.RawSnapshot{IsClickable: true, CursorStyle: "pointer"},
		AX: &entity.RawAXNode{
			Role: "button",
			Name: "Submit",
			Properties: []entity.AXProperty{
				{Name: "focusable", Value: "true"},
			},
		},
		Text:  "  Submit \n\t the   form  ",
		XPath: " /html/body/div[1]/button ",
	}

	detail := ExtractElementDetail(node)

	assert.Equal(t, "button", detail.TagName)
	assert.Equal(t, "Submit the form", detail.MeaningfulText)
	assert.Equal(t, "/html/body/div[1]/button", detail.NativeXPath)
	assert.True(t, detail.IsVisible)

	require.True(t, detail.HasElementIndex())
	assert.Equal(t, 5, *detail.ElementIndex)

	key, ok := detail.Key()
	require.True(t, ok)
	assert.Equal(t, "element_5", key)

	require.NotNil(t, detail.AbsolutePosition)
	assert.Equal(t, 100.0, detail.AbsolutePosition.Width)

	require.NotNil(t, detail.Snapshot)
	assert.True(t, detail.Snapshot.IsClickable)
	assert.Equal(t, "pointer", detail.Snapshot.CursorStyle)

	require.NotNil(t, detail.Accessibility)
	assert.Equal(t, "button", detail.Accessibility.Role)
	assert.Equal(t, "true", detail.Accessibility.Properties["focusable"])

	assert.NotEmpty(t, detail.Selectors)
}

func TestExtractElementDetailCopiesAttributes(t *testing.T) {
	attrs := map[string]string{"id": "field"}
	node := &entity.RawDOMNode{NodeName: "input", Attributes: attrs}

	detail := ExtractElementDetail(node)
	attrs["id"] = "mutated"

	assert.Equal(t, "field", detail.Attr("id"))
}

func TestExtractElementDetailTextBound(t *testing.T) {
	node := &entity.RawDOMNode{
		NodeName: "p",
		Text:     strings.Repeat("x", 500),
	}

	detail := ExtractElementDetail(node)

	assert.Len(t, []rune(detail.MeaningfulText), maxMeaningfulTextLen)
}

func TestExtractElementDetailOptionalFieldsAbsent(t *testing.T) {
	detail := ExtractElementDetail(&entity.RawDOMNode{NodeName: "div"})

	assert.Nil(t, detail.AbsolutePosition)
	assert.Nil(t, detail.Snapshot)
	assert.Nil(t, detail.Accessibility)
	assert.Nil(t, detail.ElementIndex)
	assert.Empty(t, detail.Attributes)
}
