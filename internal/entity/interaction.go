package entity

// InteractionType classifies one recorded browser interaction.
type InteractionType string

const (
	InteractionClick      InteractionType = "click"
	InteractionTypeText   InteractionType = "type_text"
	InteractionNavigate   InteractionType = "navigate"
	InteractionHover      InteractionType = "hover"
	InteractionUploadFile InteractionType = "upload_file"
)

// RequiresElement reports whether interactions of this type target a DOM
// element. Navigations do not; their log entries carry an empty detail.
func (t InteractionType) RequiresElement() bool {
	return t != InteractionNavigate
}

// Interaction is one append-only log entry: what happened, when, and the
// element snapshot taken at that moment.
type Interaction struct {
	ActionType InteractionType     `json:"action_type"`
	Timestamp  float64             `json:"timestamp"`
	Element    ElementDetail       `json:"element_details"`
	Metadata   InteractionMetadata `json:"metadata"`
}

// InteractionMetadata carries the action-specific payload. Only the fields
// relevant to the entry's action type are set.
type InteractionMetadata struct {
	Button        string `json:"button,omitempty"`
	CtrlHeld      bool   `json:"ctrl_held,omitempty"`
	Text          string `json:"text,omitempty"`
	ClearExisting bool   `json:"clear_existing,omitempty"`
	URL           string `json:"url,omitempty"`
	FilePath      string `json:"file_path,omitempty"`
}

type ClickEvent struct {
	Node     *RawDOMNode
	Button   string
	CtrlHeld bool
}

type TypeTextEvent struct {
	Node          *RawDOMNode
	Text          string
	ClearExisting bool
}

type NavigateEvent struct {
	URL string
}

type HoverEvent struct {
	Node *RawDOMNode
}

type UploadFileEvent struct {
	Node *RawDOMNode
	Path string
}

// ExecutionContext accumulates where a run has been. It rides along with the
// interaction log so exports can reconstruct the navigation history.
type ExecutionContext struct {
	CurrentURL  string            `json:"current_url,omitempty"`
	VisitedURLs []string          `json:"visited_urls,omitempty"`
	SessionData map[string]string `json:"session_data,omitempty"`
}
