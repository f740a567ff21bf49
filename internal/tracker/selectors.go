package tracker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"qa-agent/internal/entity"
)

const (
	maxSelectorTextLen   = 50
	maxPlaywrightTextLen = 30
	minSelectorTextLen   = 2
)

// SynthesizeSelectors derives every selector the element's attributes can
// support, from the most robust strategy down to positional fallbacks. Pure:
// the same detail always yields the same catalogue.
func SynthesizeSelectors(d entity.ElementDetail) entity.SelectorCatalogue {
	sel := entity.SelectorCatalogue{}

	tag := d.TagName
	if tag == "" {
		tag = "*"
	}

	if v := d.Attr("data-testid"); v != "" {
		sel[entity.StrategyDataTestID] = v
		sel[entity.StrategyCSSDataTestID] = fmt.Sprintf("[data-testid=%s]", cssString(v))
		sel[entity.StrategyXPathDataTestID] = fmt.Sprintf("//%s[@data-testid=%s]", tag, xpathString(v))
		sel[entity.StrategyPlaywrightTestID] = fmt.Sprintf("[data-testid=%s]", cssString(v))
	}

	if v := d.Attr("data-cy"); v != "" {
		sel[entity.StrategyDataCy] = v
		sel[entity.StrategyCSSDataCy] = fmt.Sprintf("[data-cy=%s]", cssString(v))
		sel[entity.StrategyXPathDataCy] = fmt.Sprintf("//%s[@data-cy=%s]", tag, xpathString(v))
	}

	if v := d.Attr("id"); v != "" {
		sel[entity.StrategyID] = v
		sel[entity.StrategyCSSID] = "#" + v
		sel[entity.StrategyXPathID] = fmt.Sprintf("//%s[@id=%s]", tag, xpathString(v))
	}

	if v := d.Attr("name"); v != "" {
		sel[entity.StrategyName] = v
		sel[entity.StrategyCSSName] = fmt.Sprintf("[name=%s]", cssString(v))
		sel[entity.StrategyXPathName] = fmt.Sprintf("//%s[@name=%s]", tag, xpathString(v))
	}

	if v := d.Attr("aria-label"); v != "" {
		sel[entity.StrategyCSSAriaLabel] = fmt.Sprintf("[aria-label=%s]", cssString(v))
		sel[entity.StrategyXPathAriaLabel] = fmt.Sprintf("//%s[@aria-label=%s]", tag, xpathString(v))
	}

	if v := d.Attr("role"); v != "" {
		sel[entity.StrategyCSSRole] = fmt.Sprintf("[role=%s]", cssString(v))
		sel[entity.StrategyXPathRole] = fmt.Sprintf("//%s[@role=%s]", tag, xpathString(v))
	}

	// The type attribute only discriminates on form controls; elsewhere it
	// is too generic to locate anything.
	if v := d.Attr("type"); v != "" && (d.TagName == "input" || d.TagName == "button") {
		sel[entity.StrategyCSSType] = fmt.Sprintf("%s[type=%s]", d.TagName, cssString(v))
		sel[entity.StrategyXPathType] = fmt.Sprintf("//%s[@type=%s]", d.TagName, xpathString(v))
	}

	if v := d.Attr("placeholder"); v != "" {
		sel[entity.StrategyCSSPlaceholder] = fmt.Sprintf("[placeholder=%s]", cssString(v))
		sel[entity.StrategyXPathPlaceholder] = fmt.Sprintf("//%s[@placeholder=%s]", tag, xpathString(v))
	}

	if v := d.Attr("class"); v != "" {
		if classes := strings.Fields(v); len(classes) > 0 {
			sel[entity.StrategyCSSClass] = "." + strings.Join(classes, ".")
			sel[entity.StrategyXPathClass] = fmt.Sprintf("//%s[@class=%s]", tag, xpathString(v))
		}
	}

	if clean := cleanSelectorText(d.MeaningfulText); utf8.RuneCountInString(clean) > minSelectorTextLen {
		sel[entity.StrategyXPathText] = fmt.Sprintf("//%s[contains(text(), '%s')]", tag, truncateRunes(clean, maxSelectorTextLen))
		sel[entity.StrategyXPathTextExact] = fmt.Sprintf("//%s[text()='%s']", tag, clean)
	}

	if d.NativeXPath != "" {
		sel[entity.StrategyNativeXPath] = d.NativeXPath
	}

	if d.ElementIndex != nil {
		sel[entity.StrategyIndexBased] = fmt.Sprintf("[data-element-index='%d']", *d.ElementIndex)
	}

	appendFrameworkSelectors(sel, d)

	return sel
}

// appendFrameworkSelectors layers the framework-native aliases on top of the
// generic catalogue.
func appendFrameworkSelectors(sel entity.SelectorCatalogue, d entity.ElementDetail) {
	if v := d.Attr("data-cy"); v != "" {
		sel[entity.StrategyCypressDataCy] = fmt.Sprintf("[data-cy=%s]", cssString(v))
	}

	if v := d.Attr("id"); v != "" {
		sel[entity.StrategyPlaywrightID] = "#" + v
		sel[entity.StrategySeleniumID] = v
	}

	if v := d.Attr("name"); v != "" {
		sel[entity.StrategyPlaywrightName] = fmt.Sprintf("[name=%s]", cssString(v))
		sel[entity.StrategySeleniumName] = v
	}

	if clean := cleanSelectorText(d.MeaningfulText); utf8.RuneCountInString(clean) > minSelectorTextLen {
		sel[entity.StrategyPlaywrightText] = "text=" + truncateRunes(clean, maxPlaywrightTextLen)
	}

	if v := d.Attr("class"); v != "" {
		if classes := strings.Fields(v); len(classes) > 0 {
			sel[entity.StrategySeleniumClass] = classes[0]
		}
	}
}

// frameworkLadders orders catalogue strategies from most to least robust for
// each framework. PreferredSelector walks the ladder and takes the first
// strategy the catalogue serves.
var frameworkLadders = map[entity.Framework][]entity.SelectorStrategy{
	entity.FrameworkSelenium: {
		entity.StrategyCSSDataTestID,
		entity.StrategyCSSDataCy,
		entity.StrategyCSSID,
		entity.StrategyCSSName,
		entity.StrategyCSSAriaLabel,
		entity.StrategyCSSRole,
		entity.StrategyCSSType,
		entity.StrategyCSSPlaceholder,
		entity.StrategyCSSClass,
		entity.StrategyXPathText,
		entity.StrategyNativeXPath,
		entity.StrategyIndexBased,
	},
	entity.FrameworkPlaywright: {
		entity.StrategyPlaywrightTestID,
		entity.StrategyCSSDataCy,
		entity.StrategyCSSID,
		entity.StrategyCSSName,
		entity.StrategyCSSAriaLabel,
		entity.StrategyCSSRole,
		entity.StrategyCSSType,
		entity.StrategyCSSPlaceholder,
		entity.StrategyCSSClass,
		entity.StrategyPlaywrightText,
		entity.StrategyNativeXPath,
		entity.StrategyIndexBased,
	},
	entity.FrameworkCypress: {
		entity.StrategyCypressDataCy,
		entity.StrategyCSSDataTestID,
		entity.StrategyCSSID,
		entity.StrategyCSSName,
		entity.StrategyCSSAriaLabel,
		entity.StrategyCSSRole,
		entity.StrategyCSSType,
		entity.StrategyCSSPlaceholder,
		entity.StrategyCSSClass,
		entity.StrategyIndexBased,
	},
}

// PreferredSelector returns the single best selector the catalogue offers
// for the framework, falling back to the bare tag name when nothing better
// exists.
func PreferredSelector(fw entity.Framework, selectors entity.SelectorCatalogue, tag string) (string, entity.SelectorStrategy, bool) {
	for _, strategy := range frameworkLadders[fw] {
		if v := selectors[strategy]; v != "" {
			return v, strategy, true
		}
	}

	if tag != "" {
		return tag, entity.StrategyTagName, true
	}

	return "", "", false
}

func isXPathStrategy(strategy entity.SelectorStrategy) bool {
	return strategy == entity.StrategyNativeXPath || strings.HasPrefix(string(strategy), "xpath_")
}

// cleanSelectorText prepares captured text for embedding in a single-quoted
// XPath literal. XPath 1.0 has no escape sequences, so single quotes become
// double quotes.
func cleanSelectorText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "'", `"`))
}

// cssString quotes an attribute value for a CSS selector.
func cssString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "'", `\'`)

	return "'" + v + "'"
}

// xpathString quotes an attribute value for an XPath literal, trading
// embedded single quotes for double quotes.
func xpathString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `"`) + "'"
}
