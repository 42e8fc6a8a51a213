package prompt

import (
	"strings"

	"github.com/abdulachik/panelforge/internal/record"
)

// ComposeFallback builds a prompt without the primary path's camera, history
// or refinement. It never fails and never returns "".
//
// It degrades in steps: every attribute, shedding optional clauses down to
// subject names, location name and action; then the action shortened to the
// longest word prefix that fits; then the minimal text clipped to the budget.
func ComposeFallback(subjects []record.Subject, loc *record.Location, action string, g Grammar) string {
	scene := Scene{Subjects: subjects, Location: loc, Action: action}
	if text, err := Assemble(Compose(scene, nil, g), g); err == nil {
		return text
	}

	minimal := func(action string) []Section {
		sections := []Section{
			{Kind: SectionSubject, Parts: nameParts(subjects)},
			actionSection(action, ""),
		}
		if loc != nil {
			if name := strings.TrimSpace(loc.Name); name != "" {
				sections = append(sections, NewSection(SectionLocation, Clause{Text: name, Rank: rankLocationIdentity}))
			}
		}
		return sections
	}

	words := strings.Fields(action)
	best, found := "", false
	lo, hi := 0, len(words)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		shortened := ""
		if mid > 0 {
			shortened = strings.Join(words[:mid], " ") + "..."
		}
		text, err := Assemble(minimal(shortened), g)
		if err != nil {
			hi = mid - 1
			continue
		}
		best, found = text, true
		lo = mid + 1
	}
	if found {
		return best
	}

	text := render(prepare(minimal(""), g), g)
	if clipped := clip(text, g); clipped != "" {
		return clipped
	}
	return text
}
