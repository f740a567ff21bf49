package tracker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"qa-agent/internal/entity"
	"qa-agent/pkg/logg"
)

// ExportForFramework compiles the log into a ready-to-template bundle for
// the named framework. Unknown names still produce a structurally valid
// bundle, just without imports or code, so downstream templating never trips
// over nils.
func (r *Recorder) ExportForFramework(name string) entity.FrameworkExportBundle {
	const op = "ExportForFramework"

	framework := entity.Framework(strings.ToLower(strings.TrimSpace(name)))
	data := r.AutomationScriptData()

	bundle := entity.FrameworkExportBundle{
		Framework:   string(framework),
		TestSteps:   make([]entity.FrameworkStep, 0, len(data.ActionSequence)),
		PageObjects: make(map[string]entity.PageObject, len(data.ElementLibrary)),
		Setup: entity.FrameworkSetup{
			RequiredImports: requiredImports(framework),
			SetupMethods:    []string{},
			TeardownMethods: []string{},
		},
	}

	for _, action := range data.ActionSequence {
		bundle.TestSteps = append(bundle.TestSteps, entity.FrameworkStep{
			StepNumber:       action.StepNumber,
			Description:      stepDescription(action),
			ActionType:       action.ActionType,
			ElementReference: action.ElementReference,
			Code:             emitStepCode(framework, action),
		})
	}

	for key, element := range data.ElementLibrary {
		bundle.PageObjects[key] = entity.PageObject{
			TagName:        element.TagName,
			Locator:        emitLocator(framework, element),
			Selectors:      element.Selectors,
			Attributes:     element.Attributes,
			MeaningfulText: element.MeaningfulText,
		}
	}

	r.logger.Info("Framework export built",
		zap.String(logg.Operation, op),
		zap.String(logg.Framework, string(framework)),
		zap.Int("steps", len(bundle.TestSteps)),
		zap.Int("page_objects", len(bundle.PageObjects)))

	return bundle
}

func stepDescription(action entity.ActionSequenceEntry) string {
	if action.ActionType == entity.InteractionNavigate {
		return fmt.Sprintf("navigate to %s", action.Metadata.URL)
	}

	target := action.ElementContext.TagName
	if target == "" {
		target = "element"
	}

	return fmt.Sprintf("%s on %s", action.ActionType, target)
}

func requiredImports(fw entity.Framework) []string {
	switch fw {
	case entity.FrameworkSelenium:
		return []string{
			"from selenium import webdriver",
			"from selenium.webdriver.common.by import By",
			"from selenium.webdriver.support.ui import WebDriverWait",
			"from selenium.webdriver.support import expected_conditions as EC",
			"from selenium.webdriver.common.action_chains import ActionChains",
		}
	case entity.FrameworkPlaywright:
		return []string{
			"from playwright.sync_api import sync_playwright",
		}
	case entity.FrameworkCypress:
		return []string{
			`/// <reference types="cypress" />`,
		}
	default:
		return []string{}
	}
}
