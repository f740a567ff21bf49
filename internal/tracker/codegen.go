package tracker

import (
	"fmt"
	"strings"

	"qa-agent/internal/entity"
)

// selectorChoice is the resolved selector an emitter works with: the value
// plus the strategy it came from, so emitters can pick locator flavors.
type selectorChoice struct {
	Value    string
	Strategy entity.SelectorStrategy
}

type emitFunc func(sel selectorChoice, action entity.ActionSequenceEntry) string

// stepEmitters holds one emission function per (framework, action type)
// pair. Pairs outside the table degrade to a commented placeholder so
// exports stay total.
var stepEmitters = map[entity.Framework]map[entity.InteractionType]emitFunc{
	entity.FrameworkSelenium: {
		entity.InteractionClick:      emitSeleniumClick,
		entity.InteractionTypeText:   emitSeleniumTypeText,
		entity.InteractionNavigate:   emitSeleniumNavigate,
		entity.InteractionHover:      emitSeleniumHover,
		entity.InteractionUploadFile: emitSeleniumUpload,
	},
	entity.FrameworkPlaywright: {
		entity.InteractionClick:      emitPlaywrightClick,
		entity.InteractionTypeText:   emitPlaywrightTypeText,
		entity.InteractionNavigate:   emitPlaywrightNavigate,
		entity.InteractionHover:      emitPlaywrightHover,
		entity.InteractionUploadFile: emitPlaywrightUpload,
	},
	entity.FrameworkCypress: {
		entity.InteractionClick:      emitCypressClick,
		entity.InteractionTypeText:   emitCypressTypeText,
		entity.InteractionNavigate:   emitCypressNavigate,
		entity.InteractionHover:      emitCypressHover,
		entity.InteractionUploadFile: emitCypressUpload,
	},
}

// emitStepCode resolves the (framework, action) emitter and feeds it the
// best selector the catalogue offers for that framework.
func emitStepCode(fw entity.Framework, action entity.ActionSequenceEntry) string {
	emitters, ok := stepEmitters[fw]
	if !ok {
		return ""
	}

	emit, ok := emitters[action.ActionType]
	if !ok {
		return fmt.Sprintf("# unsupported action: %s", action.ActionType)
	}

	value, strategy, resolved := PreferredSelector(fw, action.Selectors, action.ElementContext.TagName)
	if !resolved && action.ActionType.RequiresElement() {
		return fmt.Sprintf("# %s target could not be resolved", action.ActionType)
	}

	return emit(selectorChoice{Value: value, Strategy: strategy}, action)
}

// emitLocator renders the page-object locator definition for one library
// element.
func emitLocator(fw entity.Framework, element entity.ElementLibraryEntry) string {
	value, strategy, ok := PreferredSelector(fw, element.Selectors, element.TagName)
	if !ok {
		return ""
	}

	switch fw {
	case entity.FrameworkSelenium:
		return fmt.Sprintf("(%s, %s)", seleniumBy(strategy), quoteSingle(value))
	case entity.FrameworkPlaywright:
		return fmt.Sprintf("page.locator(%s)", quoteSingle(value))
	case entity.FrameworkCypress:
		return fmt.Sprintf("cy.get(%s)", quoteSingle(value))
	default:
		return ""
	}
}

func seleniumBy(strategy entity.SelectorStrategy) string {
	switch {
	case strategy == entity.StrategyTagName:
		return "By.TAG_NAME"
	case isXPathStrategy(strategy):
		return "By.XPATH"
	default:
		return "By.CSS_SELECTOR"
	}
}

func seleniumFind(sel selectorChoice) string {
	return fmt.Sprintf("driver.find_element(%s, %s)", seleniumBy(sel.Strategy), quoteSingle(sel.Value))
}

func emitSeleniumClick(sel selectorChoice, _ entity.ActionSequenceEntry) string {
	return seleniumFind(sel) + ".click()"
}

func emitSeleniumTypeText(sel selectorChoice, action entity.ActionSequenceEntry) string {
	send := seleniumFind(sel) + fmt.Sprintf(".send_keys(%s)", quoteSingle(action.Metadata.Text))
	if action.Metadata.ClearExisting {
		return seleniumFind(sel) + ".clear()\n" + send
	}

	return send
}

func emitSeleniumNavigate(_ selectorChoice, action entity.ActionSequenceEntry) string {
	return fmt.Sprintf("driver.get(%s)", quoteSingle(action.Metadata.URL))
}

func emitSeleniumHover(sel selectorChoice, _ entity.ActionSequenceEntry) string {
	return fmt.Sprintf("ActionChains(driver).move_to_element(%s).perform()", seleniumFind(sel))
}

func emitSeleniumUpload(sel selectorChoice, action entity.ActionSequenceEntry) string {
	return seleniumFind(sel) + fmt.Sprintf(".send_keys(%s)", quoteSingle(action.Metadata.FilePath))
}

func emitPlaywrightClick(sel selectorChoice, action entity.ActionSequenceEntry) string {
	var opts []string
	if action.Metadata.Button == "right" {
		opts = append(opts, "button='right'")
	}
	if action.Metadata.CtrlHeld {
		opts = append(opts, "modifiers=['Control']")
	}

	suffix := ""
	if len(opts) > 0 {
		suffix = ", " + strings.Join(opts, ", ")
	}

	return fmt.Sprintf("page.click(%s%s)", quoteSingle(sel.Value), suffix)
}

func emitPlaywrightTypeText(sel selectorChoice, action entity.ActionSequenceEntry) string {
	verb := "type"
	if action.Metadata.ClearExisting {
		verb = "fill"
	}

	return fmt.Sprintf("page.%s(%s, %s)", verb, quoteSingle(sel.Value), quoteSingle(action.Metadata.Text))
}

func emitPlaywrightNavigate(_ selectorChoice, action entity.ActionSequenceEntry) string {
	return fmt.Sprintf("page.goto(%s)", quoteSingle(action.Metadata.URL))
}

func emitPlaywrightHover(sel selectorChoice, _ entity.ActionSequenceEntry) string {
	return fmt.Sprintf("page.hover(%s)", quoteSingle(sel.Value))
}

func emitPlaywrightUpload(sel selectorChoice, action entity.ActionSequenceEntry) string {
	return fmt.Sprintf("page.set_input_files(%s, %s)", quoteSingle(sel.Value), quoteSingle(action.Metadata.FilePath))
}

func cypressGet(sel selectorChoice) string {
	return fmt.Sprintf("cy.get(%s)", quoteSingle(sel.Value))
}

func emitCypressClick(sel selectorChoice, action entity.ActionSequenceEntry) string {
	if action.Metadata.Button == "right" {
		return cypressGet(sel) + ".rightclick()"
	}
	if action.Metadata.CtrlHeld {
		return cypressGet(sel) + ".click({ ctrlKey: true })"
	}

	return cypressGet(sel) + ".click()"
}

func emitCypressTypeText(sel selectorChoice, action entity.ActionSequenceEntry) string {
	typeCall := fmt.Sprintf(".type(%s)", quoteSingle(action.Metadata.Text))
	if action.Metadata.ClearExisting {
		return cypressGet(sel) + ".clear()" + typeCall
	}

	return cypressGet(sel) + typeCall
}

func emitCypressNavigate(_ selectorChoice, action entity.ActionSequenceEntry) string {
	return fmt.Sprintf("cy.visit(%s)", quoteSingle(action.Metadata.URL))
}

func emitCypressHover(sel selectorChoice, _ entity.ActionSequenceEntry) string {
	return cypressGet(sel) + ".trigger('mouseover')"
}

func emitCypressUpload(sel selectorChoice, action entity.ActionSequenceEntry) string {
	return cypressGet(sel) + fmt.Sprintf(".selectFile(%s)", quoteSingle(action.Metadata.FilePath))
}

// quoteSingle renders a single-quoted string literal, valid in both Python
// and JavaScript, escaping what the generated line cannot contain raw.
func quoteSingle(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "'", `\'`)
	v = strings.ReplaceAll(v, "\n", `\n`)

	return "'" + v + "'"
}
