package tracker

import (
	"encoding/json"
	"sort"

	"qa-agent/internal/entity"
	"qa-agent/pkg/apperr"
)

// InteractionsSummary projects the log into the flat summary handed to
// humans and prompt builders. Pure read; the log is never touched.
func (r *Recorder) InteractionsSummary() entity.InteractionsSummary {
	auto := r.AutomationScriptData()
	execContext := r.Context()

	return entity.InteractionsSummary{
		TotalInteractions: len(r.interactions),
		ActionTypes:       r.actionTypes(),
		Interactions:      r.Interactions(),
		UniqueElements:    r.uniqueElements(),
		Automation:        &auto,
		Context:           &execContext,
	}
}

// AutomationScriptData compiles the log into the code-generation projection:
// a first-seen-wins element library, the ordered action sequence, and a
// selector lookup indexed by strategy. Entries from element actions that
// carry no element index stay out of the keyed structures; they still count
// toward the summary totals.
func (r *Recorder) AutomationScriptData() entity.AutomationScriptData {
	library := make(map[string]entity.ElementLibraryEntry)
	sequence := make([]entity.ActionSequenceEntry, 0, len(r.interactions))
	selectorsByStrategy := make(map[entity.SelectorStrategy]map[string]string)

	for _, interaction := range r.interactions {
		key, keyed := interaction.Element.Key()

		if interaction.ActionType.RequiresElement() && !keyed {
			continue
		}

		if keyed {
			entry, exists := library[key]
			if !exists {
				entry = entity.ElementLibraryEntry{
					ElementIndex:   *interaction.Element.ElementIndex,
					TagName:        interaction.Element.TagName,
					Selectors:      interaction.Element.Selectors,
					Attributes:     interaction.Element.Attributes,
					Position:       interaction.Element.AbsolutePosition,
					Accessibility:  interaction.Element.Accessibility,
					MeaningfulText: interaction.Element.MeaningfulText,
				}

				for strategy, value := range interaction.Element.Selectors {
					byKey := selectorsByStrategy[strategy]
					if byKey == nil {
						byKey = make(map[string]string)
						selectorsByStrategy[strategy] = byKey
					}
					byKey[key] = value
				}
			}

			entry.InteractionsCount++
			library[key] = entry
		}

		sequence = append(sequence, entity.ActionSequenceEntry{
			StepNumber:       len(sequence) + 1,
			ActionType:       interaction.ActionType,
			ElementReference: key,
			Selectors:        interaction.Element.Selectors,
			Metadata:         interaction.Metadata,
			ElementContext: entity.ElementContext{
				TagName:        interaction.Element.TagName,
				MeaningfulText: interaction.Element.MeaningfulText,
				IsVisible:      interaction.Element.IsVisible,
				Attributes:     interaction.Element.Attributes,
			},
			Timestamp: interaction.Timestamp,
		})
	}

	return entity.AutomationScriptData{
		ElementLibrary:     library,
		ActionSequence:     sequence,
		FrameworkSelectors: selectorsByStrategy,
		Page: entity.PageMetadata{
			TotalElementsInteracted: len(library),
			InteractionTypes:        r.actionTypes(),
			GeneratedAt:             wallClock(),
		},
	}
}

// ExportJSON renders the full summary as indented JSON for archiving next
// to generated tests.
func (r *Recorder) ExportJSON() ([]byte, error) {
	const op = "ExportJSON"

	data, err := json.MarshalIndent(r.InteractionsSummary(), "", "  ")
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeExportFailed, err, map[string]any{
			apperr.MetaReason: "marshal_failed",
			apperr.MetaStage:  apperr.StageExport,
		})
	}

	return data, nil
}

func (r *Recorder) actionTypes() []entity.InteractionType {
	seen := make(map[entity.InteractionType]struct{}, 4)
	types := make([]entity.InteractionType, 0, 4)

	for _, interaction := range r.interactions {
		if _, ok := seen[interaction.ActionType]; ok {
			continue
		}
		seen[interaction.ActionType] = struct{}{}
		types = append(types, interaction.ActionType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

func (r *Recorder) uniqueElements() int {
	seen := make(map[int]struct{})

	for _, interaction := range r.interactions {
		if interaction.Element.ElementIndex != nil {
			seen[*interaction.Element.ElementIndex] = struct{}{}
		}
	}

	return len(seen)
}
