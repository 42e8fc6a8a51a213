package prompt

import (
	"strings"
	"unicode/utf8"
)

// Assemble renders sections in the grammar's layout within its budget.
//
// Denied vocabulary is stripped before anything is measured. When the text
// is over budget, whole optional clauses are dropped one at a time, highest
// rank first and the last of equal rank first, so atmosphere and camera go
// before location, subject and action. Fixed literals and required clauses
// are never dropped; if they alone exceed the budget a *BudgetError is
// returned.
func Assemble(sections []Section, g Grammar) (string, error) {
	prepared := prepare(sections, g)

	if g.Layout == LayoutLabeled && g.SectionCap > 0 {
		for i, s := range prepared {
			if s.Kind.Fixed() {
				continue
			}
			for Measure(prepared[i].Text(), UnitWords) > g.SectionCap {
				if !dropOne(prepared, i) {
					break
				}
			}
		}
	}

	for {
		text := render(prepared, g)
		n := Measure(text, g.Unit)
		if g.MaxLength <= 0 || n <= g.MaxLength {
			return pad(text, g), nil
		}
		if !dropOne(prepared, -1) {
			return "", &BudgetError{Grammar: g.Name, Length: n, Budget: g.MaxLength, Unit: g.Unit}
		}
	}
}

// Measure counts text in the given unit. Characters are runes; words are
// whitespace-separated fields.
func Measure(text string, unit Unit) int {
	if unit == UnitWords {
		return len(strings.Fields(text))
	}
	return utf8.RuneCountInString(text)
}

// FitsInBudget reports whether text is within the grammar's budget.
func FitsInBudget(text string, g Grammar) bool {
	return g.MaxLength <= 0 || Measure(text, g.Unit) <= g.MaxLength
}

// prepare builds one section per grammar kind, in grammar order: fixed
// literals replace composed content, the vocabulary policy runs on every
// clause and empty clauses are discarded. Inputs are never modified.
func prepare(sections []Section, g Grammar) []Section {
	out := make([]Section, 0, len(g.Sections))
	for _, kind := range g.Sections {
		if literal, ok := g.Fixed[kind]; ok {
			out = append(out, NewSection(kind, Clause{Text: literal}))
			continue
		}

		merged := Section{Kind: kind}
		for _, s := range sections {
			if s.Kind != kind {
				continue
			}
			for _, p := range s.clone().Parts {
				var part Part
				for _, c := range p {
					c.Text = strings.Trim(collapse(g.Policy.Strip(c.Text)), " ,;")
					if c.Text != "" {
						part = append(part, c)
					}
				}
				if len(part) > 0 {
					merged.Parts = append(merged.Parts, part)
				}
			}
		}
		out = append(out, merged)
	}
	return out
}

// dropOne removes the droppable clause with the highest rank, the last one on
// ties. With only >= 0 the search is limited to that section. It reports
// false when nothing can be dropped.
func dropOne(sections []Section, only int) bool {
	si, pi, ci, best := -1, -1, -1, 0
	for i, s := range sections {
		if (only >= 0 && i != only) || s.Kind.Fixed() {
			continue
		}
		for j, p := range s.Parts {
			for k, c := range p {
				if c.Required() || c.Rank < best {
					continue
				}
				si, pi, ci, best = i, j, k, c.Rank
			}
		}
	}
	if si < 0 {
		return false
	}

	part := sections[si].Parts[pi]
	part = append(part[:ci:ci], part[ci+1:]...)
	if len(part) == 0 {
		parts := sections[si].Parts
		sections[si].Parts = append(parts[:pi:pi], parts[pi+1:]...)
	} else {
		sections[si].Parts[pi] = part
	}
	return true
}

func render(sections []Section, g Grammar) string {
	if g.Layout == LayoutParagraph {
		return renderParagraph(sections)
	}
	return renderLabeled(sections, g)
}

func renderLabeled(sections []Section, g Grammar) string {
	lines := make([]string, 0, len(sections))
	for _, s := range sections {
		label := g.Label(s.Kind)
		if label == "" {
			label = strings.ToUpper(string(s.Kind))
		}
		text := s.Text()
		if text == "" {
			text = g.Defaults[s.Kind]
		}
		if text == "" {
			text = "none"
		}
		lines = append(lines, label+": "+text)
	}
	return strings.Join(lines, "\n")
}

func renderParagraph(sections []Section) string {
	sentences := make([]string, 0, len(sections))
	for _, s := range sections {
		text := s.Text()
		if text == "" {
			continue
		}
		if !strings.HasSuffix(text, ".") {
			text += "."
		}
		sentences = append(sentences, text)
	}
	return strings.Join(sentences, " ")
}

// pad lengthens a paragraph below the grammar minimum with the policy's
// padding phrases, never past the budget.
func pad(text string, g Grammar) string {
	if g.Layout != LayoutParagraph || g.MinLength <= 0 {
		return text
	}
	for _, phrase := range g.Policy.Padding() {
		if Measure(text, g.Unit) >= g.MinLength {
			break
		}
		candidate := strings.TrimRight(text, ".") + ", " + phrase + "."
		if !FitsInBudget(candidate, g) {
			break
		}
		text = candidate
	}
	return text
}

// clip hard-cuts text to the grammar budget on a word boundary.
func clip(text string, g Grammar) string {
	if FitsInBudget(text, g) {
		return text
	}
	if g.Unit == UnitWords {
		return strings.Join(strings.Fields(text)[:g.MaxLength], " ")
	}
	runes := []rune(text)
	cut := string(runes[:g.MaxLength])
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > len(cut)/2 {
		cut = cut[:lastSpace]
	}
	return strings.TrimRight(cut, " .,;:")
}
