package prompt

import (
	"fmt"
	"sort"
)

// Grammar names.
const (
	BriefSketchName         = "brief-sketch"
	HighFidelityFormName    = "high-fidelity-form"
	SixSectionTechnicalName = "six-section-technical"
)

// Layout is how sections are laid out in the final text.
type Layout int

const (
	// LayoutLabeled renders one "LABEL: text" line per section.
	LayoutLabeled Layout = iota
	// LayoutParagraph renders a single unlabeled paragraph.
	LayoutParagraph
)

func (l Layout) String() string {
	if l == LayoutParagraph {
		return "paragraph"
	}
	return "labeled"
}

// Unit is what a grammar budget counts.
type Unit int

const (
	UnitChars Unit = iota
	UnitWords
)

func (u Unit) String() string {
	if u == UnitWords {
		return "words"
	}
	return "characters"
}

// Grammar is a named output format: section set, labels, fixed literals,
// vocabulary policy and length budget.
type Grammar struct {
	Name        string
	Description string
	Layout      Layout
	Sections    []SectionKind

	// Labels and Defaults are used by the labeled layout. A section with no
	// content renders its default so every label is always present.
	Labels   map[SectionKind]string
	Defaults map[SectionKind]string

	// Fixed holds grammar literals that replace any composed content.
	Fixed map[SectionKind]string

	Unit      Unit
	MaxLength int
	MinLength int

	// SectionCap limits each non-fixed section to this many words.
	SectionCap int

	Policy *Policy
}

// Has reports whether the grammar renders the given section kind.
func (g Grammar) Has(kind SectionKind) bool {
	for _, k := range g.Sections {
		if k == kind {
			return true
		}
	}
	return false
}

// Label returns the label for a section kind, or "" when the grammar is
// unlabeled.
func (g Grammar) Label(kind SectionKind) string {
	return g.Labels[kind]
}

// BriefSketchStyle is the fixed STYLE line of the brief-sketch grammar.
const BriefSketchStyle = "rough storyboard sketch, loose pencil lines, black and white, minimal shading"

// BriefSketch is six labeled one-sentence sections for quick thumbnails.
func BriefSketch() Grammar {
	return Grammar{
		Name:        BriefSketchName,
		Description: "six labeled one-sentence sections for storyboard thumbnails",
		Layout:      LayoutLabeled,
		Sections: []SectionKind{
			SectionCamera, SectionSubject, SectionAction,
			SectionLocation, SectionAtmosphere, SectionStyle,
		},
		Labels: map[SectionKind]string{
			SectionCamera:     "SHOT",
			SectionSubject:    "CHARACTERS",
			SectionAction:     "ACTION",
			SectionLocation:   "LOCATION",
			SectionAtmosphere: "ATMOSPHERE",
			SectionStyle:      "STYLE",
		},
		Defaults: map[SectionKind]string{
			SectionCamera:     "medium shot, eye level",
			SectionSubject:    "none",
			SectionAction:     "unspecified",
			SectionLocation:   "unspecified",
			SectionAtmosphere: "neutral",
		},
		Fixed: map[SectionKind]string{
			SectionStyle: BriefSketchStyle,
		},
		Unit:       UnitChars,
		MaxLength:  900,
		SectionCap: 30,
	}
}

// HighFidelityFormStyle is the closing style clause of the
// high-fidelity-form grammar. Every word in it is allow-listed.
const HighFidelityFormStyle = "simplified gestural outline drawing, loose minimalist linework, clean silhouette"

// HighFidelityForm is a single vocabulary-gated paragraph of 60 to 90 words.
func HighFidelityForm() Grammar {
	return Grammar{
		Name:        HighFidelityFormName,
		Description: "one unlabeled paragraph of 60-90 words with gated vocabulary",
		Layout:      LayoutParagraph,
		Sections: []SectionKind{
			SectionSubject, SectionAction, SectionLocation,
			SectionAtmosphere, SectionCamera, SectionStyle,
		},
		Fixed: map[SectionKind]string{
			SectionStyle: HighFidelityFormStyle,
		},
		Unit:      UnitWords,
		MaxLength: 90,
		MinLength: 60,
		Policy:    DefaultPolicy(),
	}
}

// SixSectionTechnicalStyle and SixSectionTechnicalExclusions are the fixed
// literals of the six-section-technical grammar.
const (
	SixSectionTechnicalStyle      = "clean line art storyboard panel, consistent character proportions, flat grey tones, clear staging"
	SixSectionTechnicalExclusions = "text, captions, speech bubbles, watermarks, signatures, panel borders, extra characters"
)

// SixSectionTechnical is labeled sections populated independently, with
// fixed STYLE and DO NOT INCLUDE lines.
func SixSectionTechnical() Grammar {
	return Grammar{
		Name:        SixSectionTechnicalName,
		Description: "labeled technical brief with fixed style and exclusion lines",
		Layout:      LayoutLabeled,
		Sections: []SectionKind{
			SectionLocation, SectionSubject, SectionAction, SectionCamera,
			SectionAtmosphere, SectionStyle, SectionConstraints,
		},
		Labels: map[SectionKind]string{
			SectionLocation:    "LOCATION",
			SectionSubject:     "CHARACTER",
			SectionAction:      "ACTION",
			SectionCamera:      "CAMERA",
			SectionAtmosphere:  "ENVIRONMENT",
			SectionStyle:       "STYLE",
			SectionConstraints: "DO NOT INCLUDE",
		},
		Defaults: map[SectionKind]string{
			SectionLocation:   "unspecified",
			SectionSubject:    "none",
			SectionAction:     "unspecified",
			SectionCamera:     "medium shot, eye level",
			SectionAtmosphere: "neutral",
		},
		Fixed: map[SectionKind]string{
			SectionStyle:       SixSectionTechnicalStyle,
			SectionConstraints: SixSectionTechnicalExclusions,
		},
		Unit:      UnitChars,
		MaxLength: 1600,
	}
}

var registry = map[string]func() Grammar{
	BriefSketchName:         BriefSketch,
	HighFidelityFormName:    HighFidelityForm,
	SixSectionTechnicalName: SixSectionTechnical,
}

// Lookup returns the grammar registered under name.
func Lookup(name string) (Grammar, error) {
	fn, ok := registry[name]
	if !ok {
		return Grammar{}, fmt.Errorf("%w: %q", ErrUnknownGrammar, name)
	}
	return fn(), nil
}

// Names returns the registered grammar names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Grammars returns every registered grammar, sorted by name.
func Grammars() []Grammar {
	names := Names()
	out := make([]Grammar, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name]())
	}
	return out
}
