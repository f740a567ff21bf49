package tracker

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"qa-agent/internal/entity"
)

func detailFor(tag string, index *int, attrs map[string]string, text string) entity.ElementDetail {
	return entity.ElementDetail{
		ElementIndex:   index,
		TagName:        tag,
		Attributes:     attrs,
		MeaningfulText: text,
	}
}

func TestSynthesizeSelectorsTiers(t *testing.T) {
	tests := []struct {
		name    string
		detail  entity.ElementDetail
		want    map[entity.SelectorStrategy]string
		absent  []entity.SelectorStrategy
	}{
		{
			name:   "data-testid tier",
			detail: detailFor("button", nil, map[string]string{"data-testid": "login"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyDataTestID:       "login",
				entity.StrategyCSSDataTestID:    "[data-testid='login']",
				entity.StrategyXPathDataTestID:  "//button[@data-testid='login']",
				entity.StrategyPlaywrightTestID: "[data-testid='login']",
			},
		},
		{
			name:   "data-cy tier",
			detail: detailFor("input", nil, map[string]string{"data-cy": "email"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyDataCy:        "email",
				entity.StrategyCSSDataCy:     "[data-cy='email']",
				entity.StrategyXPathDataCy:   "//input[@data-cy='email']",
				entity.StrategyCypressDataCy: "[data-cy='email']",
			},
		},
		{
			name:   "id tier with framework aliases",
			detail: detailFor("button", nil, map[string]string{"id": "submit-btn"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyID:           "submit-btn",
				entity.StrategyCSSID:        "#submit-btn",
				entity.StrategyXPathID:      "//button[@id='submit-btn']",
				entity.StrategyPlaywrightID: "#submit-btn",
				entity.StrategySeleniumID:   "submit-btn",
			},
		},
		{
			name:   "name tier",
			detail: detailFor("input", nil, map[string]string{"name": "username"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyName:           "username",
				entity.StrategyCSSName:        "[name='username']",
				entity.StrategyXPathName:      "//input[@name='username']",
				entity.StrategyPlaywrightName: "[name='username']",
				entity.StrategySeleniumName:   "username",
			},
		},
		{
			name:   "aria and role tier",
			detail: detailFor("div", nil, map[string]string{"aria-label": "Close dialog", "role": "button"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyCSSAriaLabel:   "[aria-label='Close dialog']",
				entity.StrategyXPathAriaLabel: "//div[@aria-label='Close dialog']",
				entity.StrategyCSSRole:        "[role='button']",
				entity.StrategyXPathRole:      "//div[@role='button']",
			},
		},
		{
			name:   "type tier on form control",
			detail: detailFor("input", nil, map[string]string{"type": "password"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyCSSType:   "input[type='password']",
				entity.StrategyXPathType: "//input[@type='password']",
			},
		},
		{
			name:   "type ignored outside form controls",
			detail: detailFor("div", nil, map[string]string{"type": "custom"}, ""),
			absent: []entity.SelectorStrategy{entity.StrategyCSSType, entity.StrategyXPathType},
		},
		{
			name:   "placeholder tier",
			detail: detailFor("input", nil, map[string]string{"placeholder": "Enter email"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyCSSPlaceholder:   "[placeholder='Enter email']",
				entity.StrategyXPathPlaceholder: "//input[@placeholder='Enter email']",
			},
		},
		{
			name:   "class tier compounds css and keeps xpath literal",
			detail: detailFor("button", nil, map[string]string{"class": "btn btn-primary large"}, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyCSSClass:      ".btn.btn-primary.large",
				entity.StrategyXPathClass:    "//button[@class='btn btn-primary large']",
				entity.StrategySeleniumClass: "btn",
			},
		},
		{
			name:   "text tier",
			detail: detailFor("button", nil, nil, "Submit the form"),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyXPathText:      "//button[contains(text(), 'Submit the form')]",
				entity.StrategyXPathTextExact: "//button[text()='Submit the form']",
				entity.StrategyPlaywrightText: "text=Submit the form",
			},
		},
		{
			name:   "short text skipped",
			detail: detailFor("a", nil, nil, "OK"),
			absent: []entity.SelectorStrategy{
				entity.StrategyXPathText,
				entity.StrategyXPathTextExact,
				entity.StrategyPlaywrightText,
			},
		},
		{
			name:   "index fallback",
			detail: detailFor("div", intPtr(7), nil, ""),
			want: map[entity.SelectorStrategy]string{
				entity.StrategyIndexBased: "[data-element-index='7']",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SynthesizeSelectors(tt.detail)

			for strategy, want := range tt.want {
				assert.Equal(t, want, got[strategy], "strategy %s", strategy)
			}
			for _, strategy := range tt.absent {
				_, ok := got[strategy]
				assert.False(t, ok, "strategy %s should be absent", strategy)
			}
		})
	}
}

func TestSynthesizeSelectorsSanitizesQuotes(t *testing.T) {
	detail := detailFor("button", nil, map[string]string{"aria-label": "Don't panic"}, "Don't Submit")
	got := SynthesizeSelectors(detail)

	assert.Equal(t, `//button[contains(text(), 'Don"t Submit')]`, got[entity.StrategyXPathText])
	assert.Equal(t, `//button[text()='Don"t Submit']`, got[entity.StrategyXPathTextExact])
	assert.Equal(t, `//button[@aria-label='Don"t panic']`, got[entity.StrategyXPathAriaLabel])
	assert.Equal(t, `[aria-label='Don\'t panic']`, got[entity.StrategyCSSAriaLabel])
}

func TestSynthesizeSelectorsTextBounds(t *testing.T) {
	long := strings.Repeat("a", 120)
	got := SynthesizeSelectors(detailFor("p", nil, nil, long))

	xpathText := got[entity.StrategyXPathText]
	require.NotEmpty(t, xpathText)
	assert.Contains(t, xpathText, strings.Repeat("a", maxSelectorTextLen))
	assert.NotContains(t, xpathText, strings.Repeat("a", maxSelectorTextLen+1))

	playwrightText := got[entity.StrategyPlaywrightText]
	assert.Equal(t, "text="+strings.Repeat("a", maxPlaywrightTextLen), playwrightText)
}

func TestSynthesizeSelectorsEmptyDetail(t *testing.T) {
	got := SynthesizeSelectors(entity.ElementDetail{})

	assert.Empty(t, got)
}

func TestPreferredSelector(t *testing.T) {
	tests := []struct {
		name         string
		framework    entity.Framework
		detail       entity.ElementDetail
		wantValue    string
		wantStrategy entity.SelectorStrategy
	}{
		{
			name:         "playwright prefers testid over id",
			framework:    entity.FrameworkPlaywright,
			detail:       detailFor("form", nil, map[string]string{"data-testid": "login", "id": "login-form"}, ""),
			wantValue:    "[data-testid='login']",
			wantStrategy: entity.StrategyPlaywrightTestID,
		},
		{
			name:         "selenium walks down to css id",
			framework:    entity.FrameworkSelenium,
			detail:       detailFor("button", nil, map[string]string{"id": "submit-btn"}, ""),
			wantValue:    "#submit-btn",
			wantStrategy: entity.StrategyCSSID,
		},
		{
			name:         "cypress prefers data-cy over testid",
			framework:    entity.FrameworkCypress,
			detail:       detailFor("input", nil, map[string]string{"data-cy": "email", "data-testid": "email-field"}, ""),
			wantValue:    "[data-cy='email']",
			wantStrategy: entity.StrategyCypressDataCy,
		},
		{
			name:         "name-based fallback",
			framework:    entity.FrameworkCypress,
			detail:       detailFor("input", nil, map[string]string{"name": "username"}, ""),
			wantValue:    "[name='username']",
			wantStrategy: entity.StrategyCSSName,
		},
		{
			name:         "index when nothing better",
			framework:    entity.FrameworkSelenium,
			detail:       detailFor("div", intPtr(3), nil, ""),
			wantValue:    "[data-element-index='3']",
			wantStrategy: entity.StrategyIndexBased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selectors := SynthesizeSelectors(tt.detail)

			value, strategy, ok := PreferredSelector(tt.framework, selectors, tt.detail.TagName)

			require.True(t, ok)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantStrategy, strategy)
		})
	}
}

func TestPreferredSelectorTagFallback(t *testing.T) {
	value, strategy, ok := PreferredSelector(entity.FrameworkSelenium, entity.SelectorCatalogue{}, "button")

	require.True(t, ok)
	assert.Equal(t, "button", value)
	assert.Equal(t, entity.StrategyTagName, strategy)

	_, _, ok = PreferredSelector(entity.FrameworkSelenium, entity.SelectorCatalogue{}, "")
	assert.False(t, ok)
}

func TestSynthesizeSelectorsDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attrs := rapid.MapOf(
			rapid.SampledFrom([]string{"id", "name", "class", "type", "placeholder", "aria-label", "role", "data-testid", "data-cy", "title"}),
			rapid.String(),
		).Draw(t, "attrs")

		detail := entity.ElementDetail{
			TagName:        rapid.SampledFrom([]string{"button", "input", "div", "a", "span"}).Draw(t, "tag"),
			Attributes:     attrs,
			MeaningfulText: rapid.String().Draw(t, "text"),
		}
		if rapid.Bool().Draw(t, "indexed") {
			detail.ElementIndex = intPtr(rapid.IntRange(0, 500).Draw(t, "index"))
		}

		first := SynthesizeSelectors(detail)
		second := SynthesizeSelectors(detail)

		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)
		secondJSON, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(secondJSON))

		for strategy, value := range first {
			assert.NotEmpty(t, value, "strategy %s carries empty value", strategy)
			assert.NotEqual(t, entity.StrategyTagName, strategy)
		}
	})
}
