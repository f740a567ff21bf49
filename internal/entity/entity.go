package entity

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID
	Scenario    string
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
	Steps       []Step
	Result      string
	Error       string
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

type Step struct {
	ID          uuid.UUID
	Action      string
	Description string
	Timestamp   time.Time
	Success     bool
	Error       string
	Screenshot  string
}

type BrowserAction struct {
	Type          ActionType
	Selector      string
	Value         string
	URL           string
	WaitFor       int
	X             float64
	Y             float64
	ClearExisting bool
	FilePath      string
	Screenshot    bool
}

type ActionType string

const (
	ActionTypeNavigate         ActionType = "navigate"
	ActionTypeClick            ActionType = "click"
	ActionTypeClickCoordinates ActionType = "click_coordinates"
	ActionTypeTypeText         ActionType = "type_text"
	ActionTypePress            ActionType = "press"
	ActionTypeScroll           ActionType = "scroll"
	ActionTypeWait             ActionType = "wait"
	ActionTypeHover            ActionType = "hover"
	ActionTypeUploadFile       ActionType = "upload_file"
	ActionTypeScreenshot       ActionType = "screenshot"
)

type PageState struct {
	URL       string
	Title     string
	Elements  []Element
	Timestamp time.Time
}

// Element is the page-survey view of an interactive element, compact enough
// to be listed in an LLM prompt. The full interaction-time snapshot is
// ElementDetail.
type Element struct {
	Index       int
	Tag         string
	Text        string
	Selector    string
	Type        string
	Attributes  map[string]string
	Visible     bool
	Clickable   bool
	BoundingBox BoundingBox
}

type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type MessageContent struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type AIMessage struct {
	Role    string
	Content interface{}
}

type AIResponse struct {
	Action   *BrowserAction
	Thought  string
	NextStep string
	Complete bool
	Result   string
}
