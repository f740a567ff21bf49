package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"qa-agent/internal/config"
	"qa-agent/internal/entity"
	"qa-agent/internal/usecase"
	"qa-agent/pkg/logg"
)

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	usecase  *usecase.Service
	ctx      context.Context
	cancel   context.CancelFunc
	sigChan  chan os.Signal
	stopping bool
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Usecase *usecase.Service
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	return &Interface{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase:  params.Usecase,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  sigChan,
		stopping: false,
	}
}

func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	// Setup signal handler
	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in goroutine
	go func() {
		<-i.sigChan
		fmt.Println("\n\n⚠️  Interrupt received, stopping run...")
		i.stopping = true
		i.Stop()
	}()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		if i.stopping {
			break
		}

		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if err.Error() == "exit" {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func (i *Interface) Stop() error {
	if i.stopping {
		return nil
	}

	i.stopping = true
	i.logger.Info("Stopping console interface...")

	// Cancel context first
	i.cancel()

	// Stop agent
	i.usecase.Agent.Stop()

	// Exit program
	fmt.Println("👋 Goodbye!")
	os.Exit(0)

	return nil
}

func (i *Interface) handleCommand(input string) error {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Println("Shutting down...")

		return fmt.Errorf("exit")
	case "run":
		if arg == "" {
			return fmt.Errorf("usage: run <scenario-file>")
		}

		return i.runScenarioFile(arg)
	case "summary":
		return i.printSummary()
	case "export":
		if arg == "" {
			return fmt.Errorf("usage: export <selenium|playwright|cypress>")
		}

		return i.printExport(arg)
	case "save":
		return i.saveExport(arg)
	default:
		return i.runScenarios([]string{input})
	}
}

// runScenarioFile reads a scenario file (scenarios separated by blank lines)
// and runs the whole batch as one accumulated recording session.
func (i *Interface) runScenarioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenario file: %w", err)
	}

	scenarios := splitScenarios(string(data))
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios found in %s", path)
	}

	fmt.Printf("\n📂 Loaded %d scenario(s) from %s\n", len(scenarios), path)

	return i.runScenarios(scenarios)
}

func (i *Interface) runScenarios(scenarios []string) error {
	fmt.Println("───────────────────────────────────────────────────")

	spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
	spin.Suffix = " running scenarios..."
	spin.Start()

	tasks, err := i.usecase.Agent.ExecuteScenarios(i.ctx, scenarios)

	spin.Stop()

	if err != nil {
		fmt.Printf("\n❌ Run failed: %v\n", err)

		return nil
	}

	fmt.Println("\n───────────────────────────────────────────────────")

	completed := 0

	for n, task := range tasks {
		if task == nil {
			continue
		}

		if task.Status == entity.TaskStatusCompleted {
			completed++
			fmt.Printf("✅ Scenario %d completed: %s (%d steps)\n", n+1, task.Result, len(task.Steps))
		} else {
			fmt.Printf("❌ Scenario %d failed: %s\n", n+1, task.Error)
		}
	}

	fmt.Printf("\n%d/%d scenarios passed, %d interactions recorded\n",
		completed, len(tasks), i.usecase.Recorder.Len())
	fmt.Println("Use 'summary', 'export <framework>' or 'save' to inspect the recording.")

	return nil
}

func (i *Interface) printSummary() error {
	summary := i.usecase.Recorder.InteractionsSummary()

	fmt.Printf("\n📊 Interaction summary\n")
	fmt.Printf("  Total interactions: %d\n", summary.TotalInteractions)
	fmt.Printf("  Unique elements:    %d\n", summary.UniqueElements)

	if len(summary.ActionTypes) > 0 {
		types := make([]string, 0, len(summary.ActionTypes))
		for _, t := range summary.ActionTypes {
			types = append(types, string(t))
		}

		fmt.Printf("  Action types:       %s\n", strings.Join(types, ", "))
	}

	if summary.Context != nil && summary.Context.CurrentURL != "" {
		fmt.Printf("  Current URL:        %s\n", summary.Context.CurrentURL)
	}

	for n, interaction := range summary.Interactions {
		target := interaction.Element.TagName
		if interaction.ActionType == entity.InteractionNavigate {
			target = interaction.Metadata.URL
		}

		if target == "" {
			target = "-"
		}

		fmt.Printf("  %3d. %-12s %s\n", n+1, interaction.ActionType, target)
	}

	return nil
}

func (i *Interface) printExport(framework string) error {
	bundle := i.usecase.Recorder.ExportForFramework(framework)

	fmt.Printf("\n🧪 %s export (%d steps)\n", bundle.Framework, len(bundle.TestSteps))

	if len(bundle.Setup.RequiredImports) > 0 {
		fmt.Println("\nImports:")

		for _, imp := range bundle.Setup.RequiredImports {
			fmt.Printf("  %s\n", imp)
		}
	}

	fmt.Println("\nSteps:")

	for _, testStep := range bundle.TestSteps {
		fmt.Printf("  # %d. %s\n", testStep.StepNumber, testStep.Description)

		if testStep.Code != "" {
			fmt.Printf("    %s\n", testStep.Code)
		}
	}

	if len(bundle.PageObjects) > 0 {
		fmt.Printf("\nPage objects: %d element(s)\n", len(bundle.PageObjects))
	}

	return nil
}

func (i *Interface) saveExport(path string) error {
	data, err := i.usecase.Recorder.ExportJSON()
	if err != nil {
		return fmt.Errorf("export interactions: %w", err)
	}

	if path == "" {
		path = filepath.Join(i.config.ExportConfig.Dir,
			fmt.Sprintf("interactions-%s.json", time.Now().Format("20060102-150405")))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Printf("💾 Saved interaction export to %s\n", path)

	return nil
}

func splitScenarios(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	scenarios := make([]string, 0, len(blocks))

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block != "" {
			scenarios = append(scenarios, block)
		}
	}

	return scenarios
}

func (i *Interface) printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║            🧪  QA Browser Agent  🌐                       ║
║                                                           ║
║  AI-driven test scenario execution with full interaction  ║
║  recording and automation script export                   ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  help, h              - Show this help message
  run <file>           - Run scenarios from a file (blank-line separated)
  summary              - Show the recorded interaction summary
  export <framework>   - Print export steps (selenium, playwright, cypress)
  save [path]          - Write the interaction export JSON to disk
  exit, quit, q        - Exit the application

Anything else is treated as a test scenario and executed directly:
  Examples:
    - Open https://example.com and verify the heading says Example Domain
    - Log in with user demo/demo and check the dashboard loads
    - Add two items to the cart and verify the cart badge shows 2

Every browser interaction is recorded with a full selector catalogue.
`
	fmt.Println(help)
}
