package usecase

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"qa-agent/internal/config"
	"qa-agent/internal/ports"
	"qa-agent/internal/usecase/adapters"
)

type Service struct {
	Agent    adapters.AgentService
	Browser  adapters.BrowserService
	AI       adapters.AIService
	Recorder adapters.RecorderService
}

type Params struct {
	fx.In

	Logger   *zap.Logger
	Config   *config.Config
	Browser  ports.BrowserManager
	AI       ports.AIClient
	Recorder ports.InteractionRecorder
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Agent:    factory.CreateAgentService(),
		Browser:  factory.CreateBrowserService(),
		AI:       factory.CreateAIService(),
		Recorder: factory.CreateRecorderService(),
	}
}
