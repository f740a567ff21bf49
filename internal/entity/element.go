package entity

import "fmt"

// RawDOMNode is the untreated element descriptor the browser layer hands over
// together with an interaction event. Fields mirror what the in-page
// description script could observe; anything unobserved stays at the zero
// value.
type RawDOMNode struct {
	ElementIndex     *int
	NodeID           int64
	BackendNodeID    int64
	NodeName         string
	Attributes       map[string]string
	IsVisible        bool
	IsScrollable     bool
	AbsolutePosition *Rect
	Snapshot         *RawSnapshot
	AX               *RawAXNode
	Text             string
	XPath            string
}

type RawSnapshot struct {
	IsClickable bool
	CursorStyle string
}

type RawAXNode struct {
	Role        string
	Name        string
	Description string
	Ignored     bool
	Properties  []AXProperty
}

type AXProperty struct {
	Name  string
	Value string
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementDetail is the normalized, self-contained snapshot of one element at
// interaction time. The extractor builds it once; it is never mutated
// afterwards, so later DOM changes cannot leak into recorded history.
type ElementDetail struct {
	ElementIndex     *int                 `json:"element_index,omitempty"`
	NodeID           int64                `json:"node_id,omitempty"`
	BackendNodeID    int64                `json:"backend_node_id,omitempty"`
	TagName          string               `json:"tag_name"`
	Attributes       map[string]string    `json:"attributes,omitempty"`
	IsVisible        bool                 `json:"is_visible"`
	IsScrollable     bool                 `json:"is_scrollable,omitempty"`
	AbsolutePosition *Rect                `json:"absolute_position,omitempty"`
	Snapshot         *SnapshotDetail      `json:"snapshot,omitempty"`
	Accessibility    *AccessibilityDetail `json:"accessibility,omitempty"`
	MeaningfulText   string               `json:"meaningful_text,omitempty"`
	NativeXPath      string               `json:"native_xpath,omitempty"`
	Selectors        SelectorCatalogue    `json:"selectors,omitempty"`
}

type SnapshotDetail struct {
	IsClickable bool   `json:"is_clickable"`
	CursorStyle string `json:"cursor_style,omitempty"`
}

type AccessibilityDetail struct {
	Role        string            `json:"role,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Ignored     bool              `json:"ignored,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// Attr returns the value of the named attribute, or "" when absent.
func (d *ElementDetail) Attr(name string) string {
	return d.Attributes[name]
}

func (d *ElementDetail) HasElementIndex() bool {
	return d.ElementIndex != nil
}

// Key returns the element-library key for this detail. Details without an
// element index cannot be keyed and are reported as such.
func (d *ElementDetail) Key() (string, bool) {
	if d.ElementIndex == nil {
		return "", false
	}

	return fmt.Sprintf("element_%d", *d.ElementIndex), true
}

// SelectorStrategy names one way of locating an element. The values are part
// of the export format consumed by code generators and must stay stable.
type SelectorStrategy string

const (
	StrategyDataTestID       SelectorStrategy = "data_testid"
	StrategyCSSDataTestID    SelectorStrategy = "css_data_testid"
	StrategyXPathDataTestID  SelectorStrategy = "xpath_data_testid"
	StrategyPlaywrightTestID SelectorStrategy = "playwright_testid"
	StrategyDataCy           SelectorStrategy = "data_cy"
	StrategyCSSDataCy        SelectorStrategy = "css_data_cy"
	StrategyXPathDataCy      SelectorStrategy = "xpath_data_cy"
	StrategyID               SelectorStrategy = "id"
	StrategyCSSID            SelectorStrategy = "css_id"
	StrategyXPathID          SelectorStrategy = "xpath_id"
	StrategyName             SelectorStrategy = "name"
	StrategyCSSName          SelectorStrategy = "css_name"
	StrategyXPathName        SelectorStrategy = "xpath_name"
	StrategyCSSAriaLabel     SelectorStrategy = "css_aria_label"
	StrategyXPathAriaLabel   SelectorStrategy = "xpath_aria_label"
	StrategyCSSRole          SelectorStrategy = "css_role"
	StrategyXPathRole        SelectorStrategy = "xpath_role"
	StrategyCSSType          SelectorStrategy = "css_type"
	StrategyXPathType        SelectorStrategy = "xpath_type"
	StrategyCSSPlaceholder   SelectorStrategy = "css_placeholder"
	StrategyXPathPlaceholder SelectorStrategy = "xpath_placeholder"
	StrategyCSSClass         SelectorStrategy = "css_class"
	StrategyXPathClass       SelectorStrategy = "xpath_class"
	StrategyXPathText        SelectorStrategy = "xpath_text"
	StrategyXPathTextExact   SelectorStrategy = "xpath_text_exact"
	StrategyNativeXPath      SelectorStrategy = "native_xpath"
	StrategyIndexBased       SelectorStrategy = "index_based"
	StrategyPlaywrightID     SelectorStrategy = "playwright_id"
	StrategyPlaywrightName   SelectorStrategy = "playwright_name"
	StrategyPlaywrightText   SelectorStrategy = "playwright_text"
	StrategyCypressDataCy    SelectorStrategy = "cypress_data_cy"
	StrategySeleniumID       SelectorStrategy = "selenium_id"
	StrategySeleniumName     SelectorStrategy = "selenium_name"
	StrategySeleniumClass    SelectorStrategy = "selenium_class_name"

	// StrategyTagName marks the bare-tag fallback. It is reported by
	// preferred-selector resolution but never stored in a catalogue.
	StrategyTagName SelectorStrategy = "tag_name"
)

// SelectorCatalogue maps selector strategies to ready-to-use selector
// strings. Strategies that could not be derived are absent; values are never
// empty.
type SelectorCatalogue map[SelectorStrategy]string
