package entity

// Framework identifies a supported test-automation target.
type Framework string

const (
	FrameworkSelenium   Framework = "selenium"
	FrameworkPlaywright Framework = "playwright"
	FrameworkCypress    Framework = "cypress"
)

// InteractionsSummary is the flat, human-inspectable projection of the
// interaction log.
type InteractionsSummary struct {
	TotalInteractions int                   `json:"total_interactions"`
	ActionTypes       []InteractionType     `json:"action_types"`
	Interactions      []Interaction         `json:"interactions"`
	UniqueElements    int                   `json:"unique_elements"`
	Automation        *AutomationScriptData `json:"automation_data,omitempty"`
	Context           *ExecutionContext     `json:"execution_context,omitempty"`
}

// AutomationScriptData is the code-generation-oriented projection: deduped
// element library, ordered action sequence, and a selector-strategy lookup
// across all touched elements.
type AutomationScriptData struct {
	ElementLibrary     map[string]ElementLibraryEntry         `json:"element_library"`
	ActionSequence     []ActionSequenceEntry                  `json:"action_sequence"`
	FrameworkSelectors map[SelectorStrategy]map[string]string `json:"framework_selectors"`
	Page               PageMetadata                           `json:"page_metadata"`
}

type ElementLibraryEntry struct {
	ElementIndex      int                  `json:"element_index"`
	TagName           string               `json:"tag_name"`
	Selectors         SelectorCatalogue    `json:"selectors"`
	Attributes        map[string]string    `json:"attributes,omitempty"`
	Position          *Rect                `json:"position,omitempty"`
	Accessibility     *AccessibilityDetail `json:"accessibility,omitempty"`
	MeaningfulText    string               `json:"meaningful_text,omitempty"`
	InteractionsCount int                  `json:"interactions_count"`
}

type ActionSequenceEntry struct {
	StepNumber       int                 `json:"step_number"`
	ActionType       InteractionType     `json:"action_type"`
	ElementReference string              `json:"element_reference,omitempty"`
	Selectors        SelectorCatalogue   `json:"selectors,omitempty"`
	Metadata         InteractionMetadata `json:"metadata"`
	ElementContext   ElementContext      `json:"element_context"`
	Timestamp        float64             `json:"timestamp"`
}

// ElementContext is the slimmed-down element view embedded in sequence
// entries so generated steps stay debuggable without a library lookup.
type ElementContext struct {
	TagName        string            `json:"tag_name,omitempty"`
	MeaningfulText string            `json:"meaningful_text,omitempty"`
	IsVisible      bool              `json:"is_visible"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

type PageMetadata struct {
	TotalElementsInteracted int               `json:"total_elements_interacted"`
	InteractionTypes        []InteractionType `json:"interaction_types"`
	GeneratedAt             float64           `json:"generated_at"`
}

// FrameworkExportBundle is everything a generator needs to write a test for
// one framework: ordered steps with code snippets, page-object definitions,
// and the setup scaffolding around them.
type FrameworkExportBundle struct {
	Framework   string                `json:"framework"`
	TestSteps   []FrameworkStep       `json:"test_steps"`
	PageObjects map[string]PageObject `json:"page_objects"`
	Setup       FrameworkSetup        `json:"setup_data"`
}

type FrameworkStep struct {
	StepNumber       int             `json:"step_number"`
	Description      string          `json:"description"`
	ActionType       InteractionType `json:"action_type"`
	ElementReference string          `json:"element_reference,omitempty"`
	Code             string          `json:"code,omitempty"`
}

type PageObject struct {
	TagName        string            `json:"tag_name"`
	Locator        string            `json:"locator,omitempty"`
	Selectors      SelectorCatalogue `json:"selectors,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	MeaningfulText string            `json:"meaningful_text,omitempty"`
}

type FrameworkSetup struct {
	RequiredImports []string `json:"required_imports"`
	SetupMethods    []string `json:"setup_methods"`
	TeardownMethods []string `json:"teardown_methods"`
}
