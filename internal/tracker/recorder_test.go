package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qa-agent/internal/entity"
)

func newTestRecorder() *Recorder {
	return NewRecorder(Params{Logger: zap.NewNop()})
}

func buttonNode(index int) *entity.RawDOMNode {
	return &entity.RawDOMNode{
		ElementIndex: intPtr(index),
		NodeName:     "button",
		Attributes:   map[string]string{"id": "submit-btn"},
		IsVisible:    true,
		Text:         "Submit",
	}
}

func TestTrackClickAppendsEntry(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5)})

	require.Equal(t, 1, r.Len())

	entry := r.Interactions()[0]
	assert.Equal(t, entity.InteractionClick, entry.ActionType)
	assert.Equal(t, "left", entry.Metadata.Button)
	assert.False(t, entry.Metadata.CtrlHeld)
	assert.Equal(t, "button", entry.Element.TagName)
	assert.Greater(t, entry.Timestamp, 0.0)
}

func TestTrackClickKeepsButtonAndModifiers(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5), Button: "right", CtrlHeld: true})

	entry := r.Interactions()[0]
	assert.Equal(t, "right", entry.Metadata.Button)
	assert.True(t, entry.Metadata.CtrlHeld)
}

func TestTrackTypeTextMetadata(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(2),
		NodeName:     "input",
		Attributes:   map[string]string{"name": "username"},
	}
	r.TrackTypeText(entity.TypeTextEvent{Node: node, Text: "alice", ClearExisting: true})

	entry := r.Interactions()[0]
	assert.Equal(t, entity.InteractionTypeText, entry.ActionType)
	assert.Equal(t, "alice", entry.Metadata.Text)
	assert.True(t, entry.Metadata.ClearExisting)
	assert.Equal(t, "input", entry.Element.TagName)
}

func TestTrackNavigateRecordsContext(t *testing.T) {
	r := newTestRecorder()

	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com/login"})
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com/home"})
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com/login"})

	assert.Equal(t, 3, r.Len())

	entry := r.Interactions()[0]
	assert.Equal(t, entity.InteractionNavigate, entry.ActionType)
	assert.Equal(t, "https://example.com/login", entry.Metadata.URL)
	assert.False(t, entry.Element.HasElementIndex())

	execContext := r.Context()
	assert.Equal(t, "https://example.com/login", execContext.CurrentURL)
	assert.Equal(t, []string{"https://example.com/login", "https://example.com/home"}, execContext.VisitedURLs)
}

func TestTrackOrderAndTimestamps(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(2)})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(3)})

	interactions := r.Interactions()
	require.Len(t, interactions, 3)

	for i := 1; i < len(interactions); i++ {
		assert.GreaterOrEqual(t, interactions[i].Timestamp, interactions[i-1].Timestamp)
	}

	assert.Equal(t, 1, *interactions[0].Element.ElementIndex)
	assert.Equal(t, 3, *interactions[2].Element.ElementIndex)
}

func TestTrackWithNilNodeStillAppends(t *testing.T) {
	r := newTestRecorder()

	assert.NotPanics(t, func() {
		r.TrackClick(entity.ClickEvent{})
		r.TrackTypeText(entity.TypeTextEvent{Text: "ghost"})
		r.TrackHover(entity.HoverEvent{})
		r.TrackUploadFile(entity.UploadFileEvent{Path: "/tmp/report.pdf"})
	})

	require.Equal(t, 4, r.Len())

	for _, entry := range r.Interactions() {
		assert.Empty(t, entry.Element.TagName)
		assert.False(t, entry.Element.HasElementIndex())
	}

	assert.Equal(t, "/tmp/report.pdf", r.Interactions()[3].Metadata.FilePath)
}

func TestClearInteractions(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com"})
	r.PutSessionData("auth", "token")
	require.Equal(t, 2, r.Len())

	r.ClearInteractions()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Interactions())

	execContext := r.Context()
	assert.Empty(t, execContext.CurrentURL)
	assert.Empty(t, execContext.VisitedURLs)
	assert.Empty(t, execContext.SessionData)
}

func TestInteractionsReturnsCopy(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(1)})

	out := r.Interactions()
	out[0].ActionType = entity.InteractionHover

	assert.Equal(t, entity.InteractionClick, r.Interactions()[0].ActionType)
}

func TestSessionData(t *testing.T) {
	r := newTestRecorder()

	r.PutSessionData("user", "alice")

	execContext := r.Context()
	assert.Equal(t, "alice", execContext.SessionData["user"])

	execContext.SessionData["user"] = "mallory"
	assert.Equal(t, "alice", r.Context().SessionData["user"])
}
