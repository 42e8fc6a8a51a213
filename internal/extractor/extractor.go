// Package extractor turns free-form character and location descriptions into
// structured attribute records using ordered, data-driven pattern tables.
//
// Extraction is pure: no I/O, no errors. An ambiguous description yields a
// sparse record, never a failure.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abdulachik/panelforge/internal/record"
)

// scope gates a rule on the resolved subject kind.
type scope int

const (
	scopeUniversal scope = iota
	scopeHuman
	scopeNonHuman
)

func (s scope) String() string {
	switch s {
	case scopeHuman:
		return "human"
	case scopeNonHuman:
		return "non-human"
	default:
		return "universal"
	}
}

// allows evaluates the gate. Human rules also run for an unknown kind since
// nothing says the subject is not human; non-human rules need a resolved kind.
func (s scope) allows(kind record.SubjectKind) bool {
	switch s {
	case scopeHuman:
		return !kind.Resolved() || kind.IsHuman()
	case scopeNonHuman:
		return kind.Resolved() && !kind.IsHuman()
	default:
		return true
	}
}

// fieldRule fills one single-valued field. Patterns are tried in order and
// the first match wins.
type fieldRule[T any] struct {
	field    string
	scope    scope
	patterns []*regexp.Regexp
	set      func(*T, string)
}

// listRule fills a list field with every match of every pattern, in pattern
// order, duplicates kept.
type listRule[T any] struct {
	field    string
	scope    scope
	patterns []*regexp.Regexp
	add      func(*T, string)
}

// RuleInfo describes one entry of a rule table.
type RuleInfo struct {
	Field    string
	Scope    string
	Patterns int
	List     bool
}

var (
	typeMarker    = regexp.MustCompile(`(?i)^\s*CHARACTER_TYPE\s*:\s*([A-Za-z/_-]*)`)
	speciesMarker = regexp.MustCompile(`(?i)\bSPECIES\s*:\s*([^|\n,;.]*)`)

	// humanHint resolves the kind when no marker is present.
	humanHint = regexp.MustCompile(`(?i)\b(?:man|woman|men|women|boy|girl|gentleman|lady|teenager|businessman|businesswoman)\b`)
)

// Extract parses a character description into an AttributeRecord.
//
// A leading "CHARACTER_TYPE: <kind>" marker and a "SPECIES: <value>" marker
// are authoritative. Without a marker the kind is human only when
// human-indicative words appear, and unknown otherwise.
func Extract(description string) record.AttributeRecord {
	rec := record.AttributeRecord{Kind: record.KindUnknown}

	body := description
	marked := false
	if m := typeMarker.FindStringSubmatchIndex(body); m != nil {
		rec.Kind = record.ParseSubjectKind(body[m[2]:m[3]])
		body = body[:m[0]] + body[m[1]:]
		marked = true
	}

	var species string
	if m := speciesMarker.FindStringSubmatchIndex(body); m != nil {
		species = body[m[2]:m[3]]
		body = body[:m[0]] + body[m[1]:]
	}

	if !marked && humanHint.MatchString(body) {
		rec.Kind = record.KindHuman
	}

	if !rec.Kind.IsHuman() && !isNotApplicable(species) {
		rec.Species = record.Text(clean(species))
	}

	for _, r := range characterRules {
		if !r.scope.allows(rec.Kind) {
			continue
		}
		if v, ok := firstMatch(r.patterns, body); ok {
			r.set(&rec, v)
		}
	}

	for _, r := range characterLists {
		if !r.scope.allows(rec.Kind) {
			continue
		}
		for _, v := range allMatches(r.patterns, body) {
			r.add(&rec, v)
		}
	}

	if scopeNonHuman.allows(rec.Kind) {
		for _, f := range featureKeywords {
			if f.pattern.MatchString(body) {
				rec.Features = rec.Features.Add(f.name)
			}
		}
	}

	return rec
}

// Rules lists the character rule table in evaluation order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(characterRules)+len(characterLists)+1)
	for _, r := range characterRules {
		out = append(out, RuleInfo{Field: r.field, Scope: r.scope.String(), Patterns: len(r.patterns)})
	}
	for _, r := range characterLists {
		out = append(out, RuleInfo{Field: r.field, Scope: r.scope.String(), Patterns: len(r.patterns), List: true})
	}
	out = append(out, RuleInfo{Field: "features", Scope: scopeNonHuman.String(), Patterns: len(featureKeywords), List: true})
	return out
}

func isNotApplicable(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "none", "unknown", "-":
		return true
	}
	return false
}

// firstMatch returns the cleaned capture of the first pattern that matches.
func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := clean(capture(m)); v != "" {
			return v, true
		}
	}
	return "", false
}

// allMatches collects every cleaned match of every pattern, pattern by pattern.
func allMatches(patterns []*regexp.Regexp, text string) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if v := clean(capture(m)); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func capture(m []string) string {
	if len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return m[0]
}

// clean collapses whitespace, trims separators and drops a leading article.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " ,.;:|")
	lower := strings.ToLower(s)
	for _, article := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(lower, article) {
			s = s[len(article):]
			break
		}
	}
	return strings.TrimSpace(s)
}

// re compiles a case-insensitive pattern.
func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// alt joins words into a non-capturing alternation.
func alt(words ...string) string {
	return `(?:` + strings.Join(words, `|`) + `)`
}

// phrase matches 1..n modifiers from mods followed by one of heads.
func phrase(mods []string, n int, heads ...string) *regexp.Regexp {
	return re(`\b((?:` + alt(mods...) + `[\s-]+){1,` + strconv.Itoa(n) + `}` + alt(heads...) + `)\b`)
}

// label matches "Name: value" up to the next separator or labelled field.
func label(names ...string) *regexp.Regexp {
	return re(`\b` + alt(names...) + `\s*:\s*([^|\n;:]+?)\s*(?:[|\n;]|,\s*[A-Za-z_ ]+:|$)`)
}
