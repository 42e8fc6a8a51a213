package prompt

import (
	"strings"

	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/record"
)

// Scene is everything composed into one panel.
type Scene struct {
	Subjects []record.Subject `json:"subjects"`
	Location *record.Location `json:"location,omitempty"`
	Action   string           `json:"action"`
	Camera   *Camera          `json:"camera,omitempty"`
}

// Compose turns a scene into the sections the grammar renders, in grammar
// order. Fixed sections are left to the assembler. hist may be nil.
//
// Field ordering does not depend on the grammar; only the section set does.
func Compose(scene Scene, hist *history.Window, g Grammar) []Section {
	continuity := ""
	if hist != nil {
		continuity = hist.RenderContext()
	}

	sections := make([]Section, 0, len(g.Sections))
	for _, kind := range g.Sections {
		if kind.Fixed() {
			continue
		}
		switch kind {
		case SectionSubject:
			sections = append(sections, subjectSection(scene.Subjects))
		case SectionAction:
			sections = append(sections, actionSection(scene.Action, continuity))
		case SectionCamera:
			sections = append(sections, cameraSection(scene.Camera))
		case SectionLocation:
			var clauses []Clause
			if scene.Location != nil {
				clauses = LocationClauses(*scene.Location)
			}
			sections = append(sections, NewSection(SectionLocation, clauses...))
		case SectionAtmosphere:
			var clauses []Clause
			if scene.Location != nil {
				clauses = VisualClauses(scene.Location.Attributes)
			}
			sections = append(sections, NewSection(SectionAtmosphere, clauses...))
		}
	}
	return sections
}

func subjectSection(subjects []record.Subject) Section {
	s := Section{Kind: SectionSubject}
	for _, subj := range subjects {
		if part := subjectPart(subj); len(part) > 0 {
			s.Parts = append(s.Parts, part)
		}
	}
	return s
}

func actionSection(action, continuity string) Section {
	var clauses []Clause
	if a := collapse(action); a != "" {
		clauses = append(clauses, Clause{Text: a, Rank: rankRequired})
	}
	if continuity != "" {
		clauses = append(clauses, Clause{Text: continuity, Rank: rankContinuity})
	}
	return NewSection(SectionAction, clauses...)
}

func cameraSection(c *Camera) Section {
	if c == nil {
		return NewSection(SectionCamera)
	}
	var clauses []Clause
	for _, t := range []string{c.Shot, c.Angle, c.Composition} {
		if t = collapse(t); t != "" {
			clauses = append(clauses, Clause{Text: t, Rank: rankCamera})
		}
	}
	return NewSection(SectionCamera, clauses...)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
