package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"qa-agent/internal/config"
	"qa-agent/internal/entity"
	"qa-agent/internal/ports"
	"qa-agent/pkg/apperr"
	"qa-agent/pkg/logg"
	"qa-agent/pkg/tracing"
)

const (
	agentServiceName     = "AgentService"
	agentTracer          = "usecase.agent"
	maxIterations        = 16
	maxConsecutiveErrors = 3
)

type AgentService struct {
	config     *config.Config
	logger     *zap.Logger
	browser    ports.BrowserManager
	ai         ports.AIClient
	recorder   ports.InteractionRecorder
	tracer     trace.Tracer
	stopChan   chan struct{}
	running    bool
	lastURL    string
	lastAction *entity.BrowserAction
}

type AgentServiceParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Browser  ports.BrowserManager
	AI       ports.AIClient
	Recorder ports.InteractionRecorder
}

func NewAgentService(params AgentServiceParams) *AgentService {
	return &AgentService{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, agentServiceName)),
		browser:  params.Browser,
		ai:       params.AI,
		recorder: params.Recorder,
		tracer:   otel.Tracer(agentTracer),
		stopChan: make(chan struct{}),
		running:  false,
	}
}

// ExecuteScenarios runs one execution session. The interaction log is
// cleared exactly once here; the scenarios that follow accumulate into that
// single log so exports keep cross-scenario context. A failed scenario is
// reported on its task and does not abort the remaining ones.
func (s *AgentService) ExecuteScenarios(ctx context.Context, scenarios []string) (tasks []*entity.Task, err error) {
	const op = "ExecuteScenarios"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.Int("scenarios_count", len(scenarios)))
	defer func() {
		step.End(err)
	}()

	if len(scenarios) == 0 {
		return nil, apperr.InvalidReqError(op, "scenarios", errors.New("scenario list cannot be empty"))
	}

	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	s.recorder.ClearInteractions()
	step.AddEvent("interaction log cleared")

	tasks = make([]*entity.Task, 0, len(scenarios))

	for i, scenario := range scenarios {
		fmt.Printf("\n📋 Scenario %d/%d\n", i+1, len(scenarios))

		task, scenarioErr := s.executeScenario(ctx, scenario)
		tasks = append(tasks, task)

		if scenarioErr != nil {
			logger.Warn("Scenario failed",
				zap.String(logg.Scenario, s.truncateText(scenario, 80)),
				zap.Error(scenarioErr))

			code := apperr.Code(scenarioErr)
			if code == apperr.CodeCancelledByUser || errors.Is(scenarioErr, context.Canceled) {
				break
			}
		}
	}

	logger.Info("Execution session finished",
		zap.Int("scenarios", len(tasks)),
		zap.Int("interactions", s.recorder.Len()))

	return tasks, nil
}

func (s *AgentService) executeScenario(ctx context.Context, scenario string) (task *entity.Task, err error) {
	const op = "executeScenario"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("scenario", s.truncateText(scenario, 120)))
	defer func() {
		step.End(err)
	}()

	if strings.TrimSpace(scenario) == "" {
		return nil, apperr.InvalidReqError(op, "scenario", errors.New("scenario cannot be empty"))
	}

	task = &entity.Task{
		ID:        uuid.New(),
		Scenario:  scenario,
		Status:    entity.TaskStatusInProgress,
		CreatedAt: time.Now(),
		Steps:     make([]entity.Step, 0),
	}

	logger = logger.With(zap.String(logg.TaskID, task.ID.String()))
	step.AddEvent("task created")

	systemPrompt := s.buildSystemPrompt(scenario)

	messages := []entity.AIMessage{
		{
			Role:    "user",
			Content: systemPrompt,
		},
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.lastAction = nil
	iteration := 0
	consecutiveErrors := 0

	for s.running && iteration < maxIterations {
		select {
		case <-ctx.Done():
			fmt.Println("\n\n⚠️  Scenario cancelled")
			task.Status = entity.TaskStatusFailed
			task.Error = "context cancelled"

			return task, apperr.Wrap(op, apperr.CodeInternal, ctx.Err(), map[string]any{
				apperr.MetaReason: "context_cancelled",
			})
		case <-s.stopChan:
			fmt.Println("\n\n⚠️  Scenario stopped by user")
			task.Status = entity.TaskStatusFailed
			task.Error = "stopped by user"

			return task, apperr.WrapErrorWithReason(op, apperr.CodeCancelledByUser, "stopped_by_user")
		default:
		}

		if !s.running {
			task.Status = entity.TaskStatusFailed
			task.Error = "stopped by user"

			return task, apperr.WrapErrorWithReason(op, apperr.CodeCancelledByUser, "stopped_by_user")
		}

		iteration++
		fmt.Printf("\n🔄 Iteration %d: ", iteration)

		step.AddEvent("sending message to AI")

		response, err := s.ai.SendMessage(ctx, messages)
		if err != nil {
			logger.Error("AI request failed", zap.Error(err))
			consecutiveErrors++

			if consecutiveErrors >= maxConsecutiveErrors {
				task.Status = entity.TaskStatusFailed
				task.Error = fmt.Sprintf("too many AI errors: %v", err)

				return task, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
					apperr.MetaReason: "too_many_ai_errors",
					apperr.MetaStage:  apperr.StageAI,
				})
			}

			time.Sleep(time.Second * 2)

			continue
		}

		consecutiveErrors = 0

		if response.Thought != "" {
			fmt.Printf("%s\n", response.Thought)

			messages = append(messages, entity.AIMessage{
				Role:    "assistant",
				Content: response.Thought,
			})
		}

		if response.Complete {
			fmt.Printf("✅ Scenario completed: %s\n", response.Result)
			task.Status = entity.TaskStatusCompleted
			task.Result = response.Result
			completedAt := time.Now()
			task.CompletedAt = &completedAt
			step.AddEvent("scenario completed")

			return task, nil
		}

		if response.Action != nil {
			if err := s.handleAction(ctx, task, response.Action, &messages); err != nil {
				logger.Error("Action failed", zap.Error(err))
				consecutiveErrors++

				if consecutiveErrors >= maxConsecutiveErrors {
					task.Status = entity.TaskStatusFailed
					task.Error = fmt.Sprintf("too many consecutive action errors: %v", err)

					return task, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
						apperr.MetaReason: "too_many_action_errors",
						apperr.MetaStage:  apperr.StageInteraction,
					})
				}
			} else {
				consecutiveErrors = 0
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	if iteration >= maxIterations {
		task.Status = entity.TaskStatusFailed
		task.Error = "max iterations reached"

		return task, apperr.WrapErrorWithReason(op, apperr.CodeMaxIterations, "max_iterations_reached")
	}

	return task, nil
}

func (s *AgentService) Stop() {
	const op = "Stop"
	logger := s.logger.With(zap.String(logg.Operation, op))
	logger.Info("Stopping agent...")

	s.running = false
	close(s.stopChan)
}

func (s *AgentService) handleAction(
	ctx context.Context,
	task *entity.Task,
	action *entity.BrowserAction,
	messages *[]entity.AIMessage,
) (err error) {
	const op = "handleAction"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Action, string(action.Type)))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("action_type", string(action.Type)))
	defer func() {
		step.End(err)
	}()

	taskStep := entity.Step{
		ID:          uuid.New(),
		Action:      string(action.Type),
		Description: s.formatActionDescription(action),
		Timestamp:   time.Now(),
	}

	fmt.Printf("🎬 Action: %s - %s\n", action.Type, taskStep.Description)

	if s.isDuplicateAction(action) {
		taskStep.Success = false
		taskStep.Error = "duplicate action detected"
		task.Steps = append(task.Steps, taskStep)

		*messages = append(*messages, entity.AIMessage{
			Role:    "user",
			Content: "This action failed on the previous attempt. Try a completely different approach.",
		})

		return apperr.WrapErrorWithReason(op, apperr.CodeDuplicateAction, "duplicate_action")
	}

	result, screenshot, err := s.executeAction(ctx, action)
	if err != nil {
		logger.Error("Action failed", zap.Error(err))
		taskStep.Success = false
		taskStep.Error = err.Error()
		task.Steps = append(task.Steps, taskStep)

		s.lastAction = action

		errorMsg := fmt.Sprintf("Action '%s' failed: %v.", action.Type, err)

		if action.Type == entity.ActionTypeClick {
			errorMsg += " Use click_at_coordinates(x, y) with coordinates from the element list instead."
		}

		*messages = append(*messages, entity.AIMessage{
			Role:    "user",
			Content: errorMsg,
		})

		return err
	}

	s.lastAction = action
	taskStep.Success = true
	task.Steps = append(task.Steps, taskStep)

	if result != "" {
		if len(screenshot) > 0 {
			fmt.Printf("📸 Screenshot taken\n")
		}

		msg := s.createMessageWithScreenshot("user", result, screenshot)
		*messages = append(*messages, msg)
	}

	return nil
}

func (s *AgentService) isDuplicateAction(action *entity.BrowserAction) bool {
	if s.lastAction == nil {
		return false
	}

	if s.lastAction.Type != action.Type {
		return false
	}

	switch action.Type {
	case entity.ActionTypeNavigate:
		return s.lastAction.URL == action.URL
	case entity.ActionTypeClick, entity.ActionTypeHover:
		return s.lastAction.Selector == action.Selector
	case entity.ActionTypeTypeText:
		return s.lastAction.Selector == action.Selector && s.lastAction.Value == action.Value
	case entity.ActionTypeUploadFile:
		return s.lastAction.Selector == action.Selector && s.lastAction.FilePath == action.FilePath
	case entity.ActionTypeScroll:
		return s.lastAction.Value == action.Value && s.lastAction.WaitFor == action.WaitFor
	case entity.ActionTypeClickCoordinates:
		return s.lastAction.X == action.X && s.lastAction.Y == action.Y
	default:
		return false
	}
}

func (s *AgentService) formatActionDescription(action *entity.BrowserAction) string {
	switch action.Type {
	case entity.ActionTypeNavigate:
		return action.URL
	case entity.ActionTypeClick, entity.ActionTypeHover:
		return fmt.Sprintf("selector: %s", action.Selector)
	case entity.ActionTypeTypeText:
		return fmt.Sprintf("selector: %s, text: %s", action.Selector, action.Value)
	case entity.ActionTypeUploadFile:
		return fmt.Sprintf("selector: %s, file: %s", action.Selector, action.FilePath)
	case entity.ActionTypePress:
		return fmt.Sprintf("key: %s", action.Value)
	case entity.ActionTypeWait:
		return fmt.Sprintf("%dms", action.WaitFor)
	case entity.ActionTypeScroll:
		direction := "down"
		amount := 500

		if action.Value != "" {
			direction = action.Value
		}

		if action.WaitFor > 0 {
			amount = action.WaitFor
		}

		return fmt.Sprintf("direction: %s, amount: %d", direction, amount)
	case entity.ActionTypeClickCoordinates:
		return fmt.Sprintf("x: %.0f, y: %.0f", action.X, action.Y)
	default:
		return ""
	}
}

func (s *AgentService) truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	return text[:maxLen] + "..."
}

func (s *AgentService) buildSystemPrompt(scenario string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a QA automation agent. Execute the test scenario step by step in a real browser.\n\n")
	prompt.WriteString(fmt.Sprintf("Scenario:\n%s\n\n", scenario))

	prompt.WriteString(`Available actions:
- navigate(url)
- click(selector) - prefer [data-testid]/[data-cy] selectors, then #id, then [name]
- click_at_coordinates(x, y) - fallback when selectors fail
- type_text(selector, text, clear_existing)
- press(key)
- scroll(direction, amount)
- hover(selector)
- upload_file(selector, file_path)
- complete_task(result)

IMPORTANT RULES:
1. Interactive elements are listed as: index. [tag] text | selector | coords (x,y) | size WxH
2. Execute the scenario's steps in order; verify each expected outcome before moving on
3. NEVER repeat failed actions - try a different selector or coordinates
4. After clicks you may receive a screenshot - check what actually happened
5. Only complete_task when every step of the scenario is verified
6. If a step cannot be satisfied, complete_task with a failure description

Max 16 iterations.`)

	return prompt.String()
}
