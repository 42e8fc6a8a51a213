package prompt

import (
	"strings"
	"unicode"

	"github.com/abdulachik/panelforge/internal/record"
)

// Clause ranks. Higher ranks are dropped first under budget pressure.
const (
	rankRequired         = 0
	rankLocationIdentity = 15
	rankSubject          = 20
	rankKnowledge        = 25
	rankLocationDetail   = 30
	rankContinuity       = 35
	rankCamera           = 40
	rankAtmosphere       = 50
)

// SubjectClauses renders a subject's populated fields in visual-salience
// order. The name leads and is required; every other clause is optional.
//
// Humans and unresolved kinds follow face, hair, eyes, features, body, skin,
// clothing, age and gender, expression, reference. Non-humans lead with
// species and end with clothing.
func SubjectClauses(s record.Subject) []Clause {
	var out []Clause
	if name := strings.TrimSpace(s.Name); name != "" {
		out = append(out, Clause{Text: name, Rank: rankRequired})
	}

	a := s.Attributes
	add := func(texts ...string) {
		for _, t := range texts {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, Clause{Text: t, Rank: rankSubject})
			}
		}
	}
	v := record.Value

	if a.Kind.Resolved() && !a.Kind.IsHuman() {
		add(speciesText(a))
		add(v(a.Size), v(a.BodyType), v(a.Height), v(a.Build))
		add(v(a.Texture), v(a.Coloration))
		add(a.Features.Sorted()...)
		add(a.DistinctiveFeatures...)
		add(v(a.Hair))
		add(ageText(a.Age), v(a.Gender))
		add(basedOnText(s.BasedOn))
		add(wearing(a.Clothing))
		return out
	}

	add(v(a.FaceShape), v(a.Jawline), v(a.Cheekbones))
	add(v(a.Hair))
	add(eyesText(a.EyeShape, a.EyeColor))
	add(v(a.Eyebrows), v(a.Nose), v(a.Mouth))
	add(a.DistinctiveFeatures...)
	add(v(a.Height), v(a.Build), v(a.ShoulderWidth), v(a.Posture))
	add(v(a.SkinTone))
	add(wearing(a.Clothing))
	add(ageText(a.Age), v(a.Gender))
	add(v(a.DefaultExpression))
	add(basedOnText(s.BasedOn))
	return out
}

// speciesText names what a non-human is, falling back to its kind.
func speciesText(a record.AttributeRecord) string {
	if a.Species != nil {
		return *a.Species
	}
	if a.Kind == record.KindOther {
		return ""
	}
	return string(a.Kind)
}

// eyesText merges shape and color into one clause.
func eyesText(shape, color *string) string {
	parts := make([]string, 0, 2)
	if shape != nil {
		parts = append(parts, *shape)
	}
	if color != nil {
		parts = append(parts, *color)
	}
	if len(parts) == 0 {
		return ""
	}
	text := strings.Join(parts, " ")
	if !strings.Contains(strings.ToLower(text), "eye") {
		text += " eyes"
	}
	return text
}

func wearing(clothing *string) string {
	if clothing == nil {
		return ""
	}
	return "wearing " + *clothing
}

// ageText prefixes a bare number so "34" reads as an age.
func ageText(age *string) string {
	if age == nil {
		return ""
	}
	for _, r := range *age {
		if !unicode.IsDigit(r) {
			return *age
		}
	}
	return "age " + *age
}

func basedOnText(ref *string) string {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return ""
	}
	return "based on " + *ref
}

// subjectPart renders one subject as a section part.
func subjectPart(s record.Subject) Part {
	return Part(SubjectClauses(s))
}

// nameParts keeps only the required name of each subject.
func nameParts(subjects []record.Subject) []Part {
	var parts []Part
	for _, s := range subjects {
		if name := strings.TrimSpace(s.Name); name != "" {
			parts = append(parts, Part{{Text: name, Rank: rankRequired}})
		}
	}
	return parts
}
