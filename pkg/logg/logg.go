// Package logg holds the shared structured-log field keys so log output
// stays greppable across layers.
package logg

const (
	Layer     = "layer"
	Operation = "op"
	TaskID    = "task_id"
	Action    = "action"
	Selector  = "selector"
	URL       = "url"
	Framework = "framework"
	Scenario  = "scenario"
	Step      = "step"
	Element   = "element_index"
)
