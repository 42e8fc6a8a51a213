package prompt

import (
	"regexp"
	"sort"
	"strings"
)

// AllowedQualifiers are the style words the high-fidelity-form grammar
// permits. They also pad short paragraphs.
var AllowedQualifiers = []string{
	"simplified", "outline", "silhouette", "gestural", "loose", "minimalist",
	"clean", "linework", "sketch", "drawing", "flat", "shapes",
	"contour", "lines", "strokes", "forms", "pose", "background",
}

// DeniedTerms are photorealism words stripped from gated prompts.
var DeniedTerms = []string{
	"photorealistic", "photorealism", "photo-realistic",
	"hyperrealistic", "hyper-realistic", "realistic", "realism", "lifelike",
	"photographic", "photograph", "photo",
	"highly detailed", "ultra detailed", "detailed", "intricate",
	"textured", "rendered", "rendering",
	"8k", "4k", "hdr", "sharp focus",
}

// paddingPhrases are appended, in order, to paragraphs below their minimum.
var paddingPhrases = []string{
	"simplified shapes", "clean outline", "gestural pose", "loose linework",
	"minimalist background", "flat silhouette", "simplified drawing", "clean shapes",
	"loose gestural strokes", "clear contour lines", "minimalist forms", "flat shapes",
	"simple negative space", "loose sketch lines", "clean linework", "gestural contour",
	"simplified forms", "outline emphasis", "flat background", "minimalist linework",
	"loose outline", "clean silhouette", "simplified contour", "sketch strokes",
}

// Policy gates vocabulary: denied terms are stripped unless allow-listed.
type Policy struct {
	allow   map[string]bool
	deny    []string
	denyRe  *regexp.Regexp
	padding []string
}

// PolicyConfig holds policy configuration.
type PolicyConfig struct {
	Allow          []string
	Deny           []string
	AdditionalDeny []string
	Padding        []string
}

// NewPolicy builds a policy. Terms are matched case-insensitively on word
// boundaries, longest first so multi-word terms win over their parts.
func NewPolicy(cfg PolicyConfig) *Policy {
	p := &Policy{
		allow:   make(map[string]bool, len(cfg.Allow)),
		padding: append([]string(nil), cfg.Padding...),
	}
	for _, w := range cfg.Allow {
		p.allow[strings.ToLower(w)] = true
	}

	terms := append(append([]string(nil), cfg.Deny...), cfg.AdditionalDeny...)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || p.allow[term] {
			continue
		}
		p.deny = append(p.deny, term)
	}
	sort.SliceStable(p.deny, func(i, j int) bool {
		return len(p.deny[i]) > len(p.deny[j])
	})

	if len(p.deny) > 0 {
		quoted := make([]string, len(p.deny))
		for i, term := range p.deny {
			quoted[i] = regexp.QuoteMeta(term)
		}
		p.denyRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return p
}

// DefaultPolicy is the high-fidelity-form vocabulary policy.
func DefaultPolicy() *Policy {
	return NewPolicy(PolicyConfig{
		Allow:   AllowedQualifiers,
		Deny:    DeniedTerms,
		Padding: paddingPhrases,
	})
}

var (
	tidySpaces = regexp.MustCompile(`[ \t]{2,}`)
	tidyPunct  = regexp.MustCompile(`[ \t]+([,.;:])`)
	tidyCommas = regexp.MustCompile(`([,;])(?:[ \t]*[,;])+`)
	tidyEdges  = regexp.MustCompile(`(?m)^[ \t,;]+|[ \t,;]+$`)
)

// Strip removes every denied term and tidies the punctuation left behind.
// Line breaks are preserved.
func (p *Policy) Strip(text string) string {
	if p == nil || p.denyRe == nil {
		return text
	}
	out := p.denyRe.ReplaceAllString(text, "")
	out = tidySpaces.ReplaceAllString(out, " ")
	out = tidyPunct.ReplaceAllString(out, "$1")
	out = tidyCommas.ReplaceAllString(out, "$1")
	out = tidyEdges.ReplaceAllString(out, "")
	return out
}

// Denied returns the denied terms found in text, in order of appearance.
func (p *Policy) Denied(text string) []string {
	if p == nil || p.denyRe == nil {
		return nil
	}
	matches := p.denyRe.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.ToLower(m)
	}
	return matches
}

// Allowed reports whether word is on the allow-list.
func (p *Policy) Allowed(word string) bool {
	if p == nil {
		return false
	}
	return p.allow[strings.ToLower(word)]
}

// Padding returns the phrases used to lengthen short output.
func (p *Policy) Padding() []string {
	if p == nil {
		return nil
	}
	return p.padding
}
