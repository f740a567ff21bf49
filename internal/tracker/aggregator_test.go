package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-agent/internal/entity"
)

func TestAutomationScriptDataDedup(t *testing.T) {
	r := newTestRecorder()

	first := &entity.RawDOMNode{
		ElementIndex: intPtr(5),
		NodeName:     "button",
		Attributes:   map[string]string{"data-testid": "save"},
	}
	recurrence := &entity.RawDOMNode{
		ElementIndex: intPtr(5),
		NodeName:     "button",
		Attributes:   map[string]string{"data-testid": "save-changed"},
	}
	other := &entity.RawDOMNode{
		ElementIndex: intPtr(2),
		NodeName:     "input",
		Attributes:   map[string]string{"name": "username"},
	}

	r.TrackClick(entity.ClickEvent{Node: first})
	r.TrackClick(entity.ClickEvent{Node: recurrence})
	r.TrackTypeText(entity.TypeTextEvent{Node: other, Text: "alice"})

	data := r.AutomationScriptData()

	require.Len(t, data.ElementLibrary, 2)

	saved := data.ElementLibrary["element_5"]
	assert.Equal(t, 5, saved.ElementIndex)
	assert.Equal(t, 2, saved.InteractionsCount)
	// First sighting wins; the recurrence's drifted attributes are ignored.
	assert.Equal(t, "[data-testid='save']", saved.Selectors[entity.StrategyCSSDataTestID])

	field := data.ElementLibrary["element_2"]
	assert.Equal(t, 1, field.InteractionsCount)
	assert.Equal(t, "input", field.TagName)
}

func TestActionSequenceNumbering(t *testing.T) {
	r := newTestRecorder()

	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com"})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackTypeText(entity.TypeTextEvent{Node: buttonNode(2), Text: "hi"})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})

	data := r.AutomationScriptData()

	require.Len(t, data.ActionSequence, 4)
	for i, step := range data.ActionSequence {
		assert.Equal(t, i+1, step.StepNumber)
	}

	assert.Equal(t, entity.InteractionNavigate, data.ActionSequence[0].ActionType)
	assert.Empty(t, data.ActionSequence[0].ElementReference)
	assert.Equal(t, "element_1", data.ActionSequence[1].ElementReference)
	assert.Equal(t, "element_2", data.ActionSequence[2].ElementReference)
	assert.Equal(t, "element_1", data.ActionSequence[3].ElementReference)
}

func TestMalformedEntriesExcludedFromProjections(t *testing.T) {
	r := newTestRecorder()

	unindexed := &entity.RawDOMNode{
		NodeName:   "button",
		Attributes: map[string]string{"id": "ghost"},
	}
	r.TrackClick(entity.ClickEvent{Node: unindexed})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})

	summary := r.InteractionsSummary()
	assert.Equal(t, 2, summary.TotalInteractions)
	assert.Equal(t, 1, summary.UniqueElements)

	data := r.AutomationScriptData()
	assert.Len(t, data.ElementLibrary, 1)
	require.Len(t, data.ActionSequence, 1)
	assert.Equal(t, "element_1", data.ActionSequence[0].ElementReference)
	assert.Equal(t, 1, data.ActionSequence[0].StepNumber)
}

func TestEmptyLogProjections(t *testing.T) {
	r := newTestRecorder()

	summary := r.InteractionsSummary()
	assert.Equal(t, 0, summary.TotalInteractions)
	assert.Equal(t, 0, summary.UniqueElements)
	assert.NotNil(t, summary.ActionTypes)
	assert.Empty(t, summary.ActionTypes)
	assert.NotNil(t, summary.Interactions)

	data := r.AutomationScriptData()
	assert.NotNil(t, data.ElementLibrary)
	assert.Empty(t, data.ElementLibrary)
	assert.NotNil(t, data.ActionSequence)
	assert.Empty(t, data.ActionSequence)
	assert.NotNil(t, data.FrameworkSelectors)
	assert.Equal(t, 0, data.Page.TotalElementsInteracted)

	raw, err := r.ExportJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 0, decoded["total_interactions"])
}

func TestFrameworkSelectorsLookup(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5)})

	data := r.AutomationScriptData()

	byStrategy := data.FrameworkSelectors[entity.StrategyCSSID]
	require.NotNil(t, byStrategy)
	assert.Equal(t, "#submit-btn", byStrategy["element_5"])

	assert.Equal(t, "submit-btn", data.FrameworkSelectors[entity.StrategySeleniumID]["element_5"])
}

func TestInteractionsSummaryActionTypes(t *testing.T) {
	r := newTestRecorder()

	r.TrackTypeText(entity.TypeTextEvent{Node: buttonNode(2), Text: "x"})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com"})

	summary := r.InteractionsSummary()

	assert.Equal(t, []entity.InteractionType{
		entity.InteractionClick,
		entity.InteractionNavigate,
		entity.InteractionTypeText,
	}, summary.ActionTypes)
	assert.Equal(t, 4, summary.TotalInteractions)
	assert.Equal(t, 2, summary.UniqueElements)
	require.NotNil(t, summary.Automation)
	assert.Len(t, summary.Automation.ActionSequence, 4)
	require.NotNil(t, summary.Context)
	assert.Equal(t, "https://example.com", summary.Context.CurrentURL)
}

func TestProjectionsAreIdempotent(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackTypeText(entity.TypeTextEvent{Node: buttonNode(2), Text: "x"})

	first := r.AutomationScriptData()
	second := r.AutomationScriptData()

	assert.Equal(t, first.ElementLibrary, second.ElementLibrary)
	assert.Equal(t, first.ActionSequence, second.ActionSequence)
	assert.Equal(t, first.FrameworkSelectors, second.FrameworkSelectors)
	assert.Equal(t, 2, r.Len())
}
