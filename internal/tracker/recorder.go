package tracker

import (
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"qa-agent/internal/entity"
	"qa-agent/pkg/apperr"
	"qa-agent/pkg/logg"
)

const recorderName = "InteractionRecorder"

// Recorder accumulates element interactions for one execution session and
// projects them into export structures on demand.
//
// It is driven from the agent's single action loop and is not safe for
// concurrent use; callers that fan out must serialize access themselves.
type Recorder struct {
	logger       *zap.Logger
	interactions []entity.Interaction
	execContext  entity.ExecutionContext
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewRecorder(params Params) *Recorder {
	return &Recorder{
		logger:       params.Logger.With(zap.String(logg.Layer, recorderName)),
		interactions: make([]entity.Interaction, 0, 64),
		execContext:  entity.ExecutionContext{SessionData: make(map[string]string)},
	}
}

func (r *Recorder) TrackClick(event entity.ClickEvent) {
	const op = "TrackClick"

	button := event.Button
	if button == "" {
		button = "left"
	}

	r.track(op, entity.InteractionClick, event.Node, entity.InteractionMetadata{
		Button:   button,
		CtrlHeld: event.CtrlHeld,
	})
}

func (r *Recorder) TrackTypeText(event entity.TypeTextEvent) {
	const op = "TrackTypeText"

	r.track(op, entity.InteractionTypeText, event.Node, entity.InteractionMetadata{
		Text:          event.Text,
		ClearExisting: event.ClearExisting,
	})
}

func (r *Recorder) TrackNavigate(event entity.NavigateEvent) {
	const op = "TrackNavigate"

	r.track(op, entity.InteractionNavigate, nil, entity.InteractionMetadata{
		URL: event.URL,
	})
	r.SetCurrentURL(event.URL)
}

func (r *Recorder) TrackHover(event entity.HoverEvent) {
	const op = "TrackHover"

	r.track(op, entity.InteractionHover, event.Node, entity.InteractionMetadata{})
}

func (r *Recorder) TrackUploadFile(event entity.UploadFileEvent) {
	const op = "TrackUploadFile"

	r.track(op, entity.InteractionUploadFile, event.Node, entity.InteractionMetadata{
		FilePath: event.Path,
	})
}

// track appends one log entry. Trouble while normalizing the node must never
// knock out the recording path, so extraction degrades to an empty detail
// and the entry is appended regardless.
func (r *Recorder) track(op string, action entity.InteractionType, node *entity.RawDOMNode, meta entity.InteractionMetadata) {
	logger := r.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Action, string(action)))

	detail := r.safeExtract(logger, op, node)

	r.interactions = append(r.interactions, entity.Interaction{
		ActionType: action,
		Timestamp:  wallClock(),
		Element:    detail,
		Metadata:   meta,
	})

	logger.Debug("Interaction recorded",
		zap.Int("total", len(r.interactions)),
		zap.String("tag", detail.TagName),
		zap.Int("selectors", len(detail.Selectors)))
}

func (r *Recorder) safeExtract(logger *zap.Logger, op string, node *entity.RawDOMNode) (detail entity.ElementDetail) {
	defer func() {
		if rec := recover(); rec != nil {
			err := apperr.Wrap(op, apperr.CodeExtractionFailed, fmt.Errorf("%v", rec), map[string]any{
				apperr.MetaReason: "extraction_panic",
				apperr.MetaStage:  apperr.StageTracking,
			})
			logger.Error("Element extraction failed, recording bare entry", zap.Error(err))
			detail = entity.ElementDetail{}
		}
	}()

	return ExtractElementDetail(node)
}

// ClearInteractions starts a fresh log. The agent calls it once per
// execution run; scenarios within a run accumulate.
func (r *Recorder) ClearInteractions() {
	const op = "ClearInteractions"

	r.logger.Info("Interaction log cleared",
		zap.String(logg.Operation, op),
		zap.Int("dropped", len(r.interactions)))

	r.interactions = r.interactions[:0]
	r.execContext = entity.ExecutionContext{SessionData: make(map[string]string)}
}

// Interactions returns a copy of the log in append order.
func (r *Recorder) Interactions() []entity.Interaction {
	out := make([]entity.Interaction, len(r.interactions))
	copy(out, r.interactions)

	return out
}

func (r *Recorder) Len() int {
	return len(r.interactions)
}

// SetCurrentURL notes where the run currently is. Visited URLs are kept in
// first-visit order without duplicates.
func (r *Recorder) SetCurrentURL(url string) {
	if url == "" {
		return
	}

	r.execContext.CurrentURL = url

	for _, seen := range r.execContext.VisitedURLs {
		if seen == url {
			return
		}
	}

	r.execContext.VisitedURLs = append(r.execContext.VisitedURLs, url)
}

func (r *Recorder) PutSessionData(key, value string) {
	if r.execContext.SessionData == nil {
		r.execContext.SessionData = make(map[string]string)
	}

	r.execContext.SessionData[key] = value
}

// Context returns a copy of the execution context.
func (r *Recorder) Context() entity.ExecutionContext {
	out := entity.ExecutionContext{
		CurrentURL:  r.execContext.CurrentURL,
		VisitedURLs: append([]string(nil), r.execContext.VisitedURLs...),
	}

	if len(r.execContext.SessionData) > 0 {
		data := make(map[string]string, len(r.execContext.SessionData))
		for k, v := range r.execContext.SessionData {
			data[k] = v
		}
		out.SessionData = data
	}

	return out
}

// wallClock returns the current time as float seconds, the timestamp unit of
// the export format.
func wallClock() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
