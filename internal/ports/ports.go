package ports

import (
	"context"

	"qa-agent/internal/entity"
)

type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	ClickAtCoordinates(ctx context.Context, x float64, y float64) error
	TypeText(ctx context.Context, selector string, text string, clearExisting bool) error
	Press(ctx context.Context, key string) error
	Scroll(ctx context.Context, direction string, amount int) error
	Hover(ctx context.Context, selector string) error
	UploadFile(ctx context.Context, selector string, path string) error
	WaitForSelector(ctx context.Context, selector string, timeout int) error
	GetElementText(ctx context.Context, selector string) (string, error)
	Screenshot(ctx context.Context, path string) error
	GetPageState(ctx context.Context) (*entity.PageState, error)
	GetElements(ctx context.Context) ([]entity.Element, error)
	DescribeElement(ctx context.Context, selector string) (*entity.RawDOMNode, error)
	DescribeElementAt(ctx context.Context, x float64, y float64) (*entity.RawDOMNode, error)
	EvaluateJS(ctx context.Context, script string) (interface{}, error)
	IsReady() bool
}

type AIClient interface {
	SendMessage(ctx context.Context, messages []entity.AIMessage) (*entity.AIResponse, error)
	CreateTools() []interface{}
}

// InteractionRecorder is the write side plus read projections of the
// interaction log. One instance lives for one execution session.
type InteractionRecorder interface {
	TrackClick(event entity.ClickEvent)
	TrackTypeText(event entity.TypeTextEvent)
	TrackNavigate(event entity.NavigateEvent)
	TrackHover(event entity.HoverEvent)
	TrackUploadFile(event entity.UploadFileEvent)
	ClearInteractions()
	Len() int
	SetCurrentURL(url string)
	InteractionsSummary() entity.InteractionsSummary
	AutomationScriptData() entity.AutomationScriptData
	ExportForFramework(name string) entity.FrameworkExportBundle
	ExportJSON() ([]byte, error)
}

type AgentExecutor interface {
	ExecuteScenarios(ctx context.Context, scenarios []string) ([]*entity.Task, error)
	Stop()
}
