package bootstrap

import (
	"time"

	"go.uber.org/fx"

	"qa-agent/internal/ai"
	"qa-agent/internal/browser"
	"qa-agent/internal/config"
	"qa-agent/internal/console"
	"qa-agent/internal/ports"
	"qa-agent/internal/tracker"
	"qa-agent/internal/usecase"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(browser.NewManager, fx.As(new(ports.BrowserManager))),
			fx.Annotate(ai.NewClient, fx.As(new(ports.AIClient))),
			fx.Annotate(tracker.NewRecorder, fx.As(new(ports.InteractionRecorder))),

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(10*time.Second),
	)
}
