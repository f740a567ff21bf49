package adapters

import (
	"context"

	"qa-agent/internal/entity"
)

type BrowserService interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	ClickAtCoordinates(ctx context.Context, x, y float64) error
	TypeText(ctx context.Context, selector, text string, clearExisting bool) error
	Hover(ctx context.Context, selector string) error
	UploadFile(ctx context.Context, selector, path string) error
	Press(ctx context.Context, key string) error
	Scroll(ctx context.Context, direction string, amount int) error
	WaitForSelector(ctx context.Context, selector string, timeout int) error
	GetElementText(ctx context.Context, selector string) (string, error)
	Screenshot(ctx context.Context, path string) error
	GetPageState(ctx context.Context) (*entity.PageState, error)
	GetElements(ctx context.Context) ([]entity.Element, error)
	DescribeElement(ctx context.Context, selector string) (*entity.RawDOMNode, error)
	DescribeElementAt(ctx context.Context, x, y float64) (*entity.RawDOMNode, error)
	EvaluateJS(ctx context.Context, script string) (interface{}, error)
	IsReady() bool
}

type AIService interface {
	SendMessage(ctx context.Context, messages []entity.AIMessage) (*entity.AIResponse, error)
	CreateTools() []interface{}
}

type AgentService interface {
	ExecuteScenarios(ctx context.Context, scenarios []string) ([]*entity.Task, error)
	Stop()
}

// RecorderService exposes the interaction log to the console layer: session
// summaries, export bundles per target framework, and the raw JSON payload.
type RecorderService interface {
	InteractionsSummary() entity.InteractionsSummary
	AutomationScriptData() entity.AutomationScriptData
	ExportForFramework(name string) entity.FrameworkExportBundle
	ExportJSON() ([]byte, error)
	ClearInteractions()
	Len() int
}
