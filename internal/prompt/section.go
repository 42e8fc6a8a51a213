// Package prompt composes structured records into prompt sections and
// assembles those sections into the final text for a grammar.
//
// Everything here is pure and deterministic: identical inputs produce
// byte-identical output.
package prompt

import "strings"

// SectionKind identifies a semantic block of a prompt.
type SectionKind string

const (
	SectionSubject     SectionKind = "subject"
	SectionAction      SectionKind = "action"
	SectionCamera      SectionKind = "camera"
	SectionLocation    SectionKind = "location"
	SectionAtmosphere  SectionKind = "atmosphere"
	SectionStyle       SectionKind = "style"
	SectionConstraints SectionKind = "constraints"
)

// Fixed reports whether the section holds grammar boilerplate that is never
// truncated.
func (k SectionKind) Fixed() bool {
	return k == SectionStyle || k == SectionConstraints
}

// Clause is the smallest droppable unit of a section.
//
// Rank orders clauses for dropping under budget pressure: higher ranks go
// first and a zero rank is never dropped.
type Clause struct {
	Text string `json:"text"`
	Rank int    `json:"rank,omitempty"`
}

// Required reports whether the clause survives every budget cut.
func (c Clause) Required() bool {
	return c.Rank == 0
}

// Part is an ordered run of clauses rendered as one comma list. The subject
// section has one part per subject; other sections have one part.
type Part []Clause

// Section is one block of the intermediate form between composition and
// assembly.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Parts []Part      `json:"parts"`
}

// NewSection builds a single-part section.
func NewSection(kind SectionKind, clauses ...Clause) Section {
	return Section{Kind: kind, Parts: []Part{clauses}}
}

// Text renders the section: clauses joined by ", ", parts by "; ".
func (s Section) Text() string {
	parts := make([]string, 0, len(s.Parts))
	for _, p := range s.Parts {
		clauses := make([]string, 0, len(p))
		for _, c := range p {
			if c.Text != "" {
				clauses = append(clauses, c.Text)
			}
		}
		if len(clauses) > 0 {
			parts = append(parts, strings.Join(clauses, ", "))
		}
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether the section renders nothing.
func (s Section) Empty() bool {
	return s.Text() == ""
}

// clone deep-copies the section so budget cuts never touch caller data.
func (s Section) clone() Section {
	out := Section{Kind: s.Kind, Parts: make([]Part, len(s.Parts))}
	for i, p := range s.Parts {
		out.Parts[i] = append(Part(nil), p...)
	}
	return out
}

// Camera carries optional shot framing for a panel.
type Camera struct {
	Shot        string `json:"shot,omitempty"`
	Angle       string `json:"angle,omitempty"`
	Composition string `json:"composition,omitempty"`
}

// IsZero reports whether no framing is set.
func (c Camera) IsZero() bool {
	return strings.TrimSpace(c.Shot) == "" &&
		strings.TrimSpace(c.Angle) == "" &&
		strings.TrimSpace(c.Composition) == ""
}
