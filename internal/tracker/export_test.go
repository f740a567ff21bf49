package tracker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-agent/internal/entity"
)

func TestExportSeleniumClickPrefersCSSID(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5)})

	bundle := r.ExportForFramework("selenium")

	require.Len(t, bundle.TestSteps, 1)
	step := bundle.TestSteps[0]
	assert.Equal(t, 1, step.StepNumber)
	assert.Equal(t, entity.InteractionClick, step.ActionType)
	assert.Equal(t, "element_5", step.ElementReference)
	assert.Contains(t, step.Code, "#submit-btn")
	assert.Contains(t, step.Code, "By.CSS_SELECTOR")
	assert.Contains(t, step.Code, ".click()")
}

func TestExportCypressTypeTextUsesNameSelector(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(2),
		NodeName:     "input",
		Attributes:   map[string]string{"name": "username"},
	}
	r.TrackTypeText(entity.TypeTextEvent{Node: node, Text: "alice"})

	bundle := r.ExportForFramework("cypress")

	require.Len(t, bundle.TestSteps, 1)
	code := bundle.TestSteps[0].Code
	assert.Contains(t, code, "cy.get(")
	assert.Contains(t, code, "username")
	assert.Contains(t, code, ".type('alice')")
}

func TestExportPlaywrightPrefersTestIDOverID(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(1),
		NodeName:     "form",
		Attributes:   map[string]string{"data-testid": "login", "id": "login-form"},
	}
	r.TrackClick(entity.ClickEvent{Node: node})

	bundle := r.ExportForFramework("playwright")

	require.Len(t, bundle.TestSteps, 1)
	code := bundle.TestSteps[0].Code
	assert.Contains(t, code, "data-testid=")
	assert.Contains(t, code, "login")
	assert.NotContains(t, code, "#login-form")
}

func TestExportUnknownFrameworkStaysStructural(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5)})
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com"})

	bundle := r.ExportForFramework("robot")

	assert.Equal(t, "robot", bundle.Framework)
	require.Len(t, bundle.TestSteps, 2)
	for _, step := range bundle.TestSteps {
		assert.Empty(t, step.Code)
		assert.NotEmpty(t, step.Description)
	}

	require.Len(t, bundle.PageObjects, 1)
	assert.Empty(t, bundle.PageObjects["element_5"].Locator)

	assert.NotNil(t, bundle.Setup.RequiredImports)
	assert.Empty(t, bundle.Setup.RequiredImports)
}

func TestExportFrameworkNameNormalized(t *testing.T) {
	r := newTestRecorder()

	bundle := r.ExportForFramework("  Selenium ")

	assert.Equal(t, "selenium", bundle.Framework)
	assert.NotEmpty(t, bundle.Setup.RequiredImports)
}

func TestExportRequiredImports(t *testing.T) {
	tests := []struct {
		framework string
		want      string
	}{
		{framework: "selenium", want: "from selenium.webdriver.common.by import By"},
		{framework: "playwright", want: "from playwright.sync_api import sync_playwright"},
		{framework: "cypress", want: `/// <reference types="cypress" />`},
	}

	r := newTestRecorder()

	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			bundle := r.ExportForFramework(tt.framework)
			assert.Contains(t, bundle.Setup.RequiredImports, tt.want)
		})
	}
}

func TestExportNavigateSteps(t *testing.T) {
	r := newTestRecorder()
	r.TrackNavigate(entity.NavigateEvent{URL: "https://example.com/login"})

	tests := []struct {
		framework string
		want      string
	}{
		{framework: "selenium", want: "driver.get('https://example.com/login')"},
		{framework: "playwright", want: "page.goto('https://example.com/login')"},
		{framework: "cypress", want: "cy.visit('https://example.com/login')"},
	}

	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			bundle := r.ExportForFramework(tt.framework)
			require.Len(t, bundle.TestSteps, 1)
			assert.Equal(t, tt.want, bundle.TestSteps[0].Code)
			assert.Equal(t, "navigate to https://example.com/login", bundle.TestSteps[0].Description)
		})
	}
}

func TestExportHoverSteps(t *testing.T) {
	r := newTestRecorder()
	r.TrackHover(entity.HoverEvent{Node: buttonNode(4)})

	selenium := r.ExportForFramework("selenium")
	require.Len(t, selenium.TestSteps, 1)
	assert.Contains(t, selenium.TestSteps[0].Code, "ActionChains(driver).move_to_element(")
	assert.Contains(t, selenium.Setup.RequiredImports, "from selenium.webdriver.common.action_chains import ActionChains")

	cypress := r.ExportForFramework("cypress")
	assert.Contains(t, cypress.TestSteps[0].Code, ".trigger('mouseover')")

	playwright := r.ExportForFramework("playwright")
	assert.Contains(t, playwright.TestSteps[0].Code, "page.hover(")
}

func TestExportUploadSteps(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(9),
		NodeName:     "input",
		Attributes:   map[string]string{"type": "file", "id": "avatar"},
	}
	r.TrackUploadFile(entity.UploadFileEvent{Node: node, Path: "/tmp/avatar.png"})

	assert.Contains(t, r.ExportForFramework("selenium").TestSteps[0].Code, ".send_keys('/tmp/avatar.png')")
	assert.Contains(t, r.ExportForFramework("playwright").TestSteps[0].Code, "page.set_input_files(")
	assert.Contains(t, r.ExportForFramework("cypress").TestSteps[0].Code, ".selectFile('/tmp/avatar.png')")
}

func TestExportTypeTextClearSemantics(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(2),
		NodeName:     "input",
		Attributes:   map[string]string{"name": "email"},
	}
	r.TrackTypeText(entity.TypeTextEvent{Node: node, Text: "a@b.c", ClearExisting: true})
	r.TrackTypeText(entity.TypeTextEvent{Node: node, Text: "tail"})

	playwright := r.ExportForFramework("playwright")
	require.Len(t, playwright.TestSteps, 2)
	assert.Contains(t, playwright.TestSteps[0].Code, "page.fill(")
	assert.Contains(t, playwright.TestSteps[1].Code, "page.type(")

	cypress := r.ExportForFramework("cypress")
	assert.Contains(t, cypress.TestSteps[0].Code, ".clear().type('a@b.c')")
	assert.Contains(t, cypress.TestSteps[1].Code, ".type('tail')")
	assert.NotContains(t, cypress.TestSteps[1].Code, ".clear()")

	selenium := r.ExportForFramework("selenium")
	assert.Contains(t, selenium.TestSteps[0].Code, ".clear()")
	assert.Contains(t, selenium.TestSteps[0].Code, ".send_keys('a@b.c')")
}

func TestExportClickMetadataVariants(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(1), Button: "right"})
	r.TrackClick(entity.ClickEvent{Node: buttonNode(1), CtrlHeld: true})

	playwright := r.ExportForFramework("playwright")
	assert.Contains(t, playwright.TestSteps[0].Code, "button='right'")
	assert.Contains(t, playwright.TestSteps[1].Code, "modifiers=['Control']")

	cypress := r.ExportForFramework("cypress")
	assert.Contains(t, cypress.TestSteps[0].Code, ".rightclick()")
	assert.Contains(t, cypress.TestSteps[1].Code, ".click({ ctrlKey: true })")
}

func TestExportPageObjects(t *testing.T) {
	r := newTestRecorder()

	r.TrackClick(entity.ClickEvent{Node: buttonNode(5)})

	tests := []struct {
		framework string
		want      string
	}{
		{framework: "selenium", want: "(By.CSS_SELECTOR, '#submit-btn')"},
		{framework: "playwright", want: "page.locator('#submit-btn')"},
		{framework: "cypress", want: "cy.get('#submit-btn')"},
	}

	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			bundle := r.ExportForFramework(tt.framework)

			object, ok := bundle.PageObjects["element_5"]
			require.True(t, ok)
			assert.Equal(t, tt.want, object.Locator)
			assert.Equal(t, "button", object.TagName)
			assert.NotEmpty(t, object.Selectors)
		})
	}
}

func TestExportIndexFallbackSelector(t *testing.T) {
	r := newTestRecorder()

	bare := &entity.RawDOMNode{ElementIndex: intPtr(7), NodeName: "div"}
	r.TrackClick(entity.ClickEvent{Node: bare})

	bundle := r.ExportForFramework("selenium")

	require.Len(t, bundle.TestSteps, 1)
	assert.Contains(t, bundle.TestSteps[0].Code, "[data-element-index='7']")
}

func TestExportQuotesEscapedInGeneratedCode(t *testing.T) {
	r := newTestRecorder()

	node := &entity.RawDOMNode{
		ElementIndex: intPtr(3),
		NodeName:     "input",
		Attributes:   map[string]string{"name": "note"},
	}
	r.TrackTypeText(entity.TypeTextEvent{Node: node, Text: "Don't stop"})

	code := r.ExportForFramework("cypress").TestSteps[0].Code
	assert.Contains(t, code, `Don\'t stop`)
	assert.False(t, strings.Contains(code, ".type('Don't"), "unescaped quote breaks the generated literal")
}
