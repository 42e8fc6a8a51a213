package prompt

import (
	"strings"
	"testing"

	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func fullHuman() record.Subject {
	return record.Subject{
		Name:    "Mara",
		BasedOn: str("a young sailor"),
		Attributes: record.AttributeRecord{
			Kind:                record.KindHuman,
			FaceShape:           str("oval face"),
			Jawline:             str("strong jawline"),
			Cheekbones:          str("high cheekbones"),
			Hair:                str("black wavy hair"),
			EyeShape:            str("almond"),
			EyeColor:            str("brown"),
			Eyebrows:            str("thick eyebrows"),
			Nose:                str("aquiline nose"),
			Mouth:               str("thin lips"),
			DistinctiveFeatures: []string{"scar on cheek"},
			Height:              str("tall"),
			Build:               str("lean build"),
			ShoulderWidth:       str("broad shoulders"),
			Posture:             str("upright posture"),
			SkinTone:            str("olive skin"),
			Clothing:            str("blue coat"),
			Age:                 str("early 30s"),
			Gender:              str("Male"),
			DefaultExpression:   str("calm expression"),
		},
	}
}

func assertInOrder(t *testing.T, text string, values ...string) {
	t.Helper()
	last := -1
	for _, v := range values {
		idx := strings.Index(text, v)
		require.GreaterOrEqual(t, idx, 0, "%q missing from %q", v, text)
		assert.Greater(t, idx, last, "%q out of order in %q", v, text)
		last = idx
	}
}

func TestSubjectClauses_HumanOrder(t *testing.T) {
	text := NewSection(SectionSubject, SubjectClauses(fullHuman())...).Text()

	assertInOrder(t, text,
		"Mara",
		"oval face", "strong jawline", "high cheekbones",
		"black wavy hair",
		"almond brown eyes",
		"thick eyebrows", "aquiline nose", "thin lips",
		"scar on cheek",
		"tall", "lean build", "broad shoulders", "upright posture",
		"olive skin",
		"wearing blue coat",
		"early 30s", "Male",
		"calm expression",
		"based on a young sailor",
	)
}

func TestSubjectClauses_NonHumanOrder(t *testing.T) {
	s := record.Subject{
		Name: "Ember",
		Attributes: record.AttributeRecord{
			Kind:       record.KindCreature,
			Species:    str("dragon"),
			Size:       str("towering"),
			BodyType:   str("serpentine body"),
			Texture:    str("leathery"),
			Coloration: str("emerald scales"),
			Features:   record.NewFeatureSet("wings", "tail"),
			Clothing:   str("jeweled harness"),
		},
	}

	clauses := SubjectClauses(s)
	text := NewSection(SectionSubject, clauses...).Text()

	assertInOrder(t, text, "Ember", "dragon", "towering", "serpentine body",
		"leathery", "emerald scales", "tail", "wings", "wearing jeweled harness")
	assert.Equal(t, "wearing jeweled harness", clauses[len(clauses)-1].Text)
}

func TestSubjectClauses_OnlyNameIsRequired(t *testing.T) {
	clauses := SubjectClauses(fullHuman())
	require.NotEmpty(t, clauses)

	assert.True(t, clauses[0].Required())
	for _, c := range clauses[1:] {
		assert.False(t, c.Required(), c.Text)
	}
}

func TestSubjectClauses_Formatting(t *testing.T) {
	tests := []struct {
		name  string
		attrs record.AttributeRecord
		want  string
	}{
		{"eye color only", record.AttributeRecord{EyeColor: str("green")}, "green eyes"},
		{"eye shape only", record.AttributeRecord{EyeShape: str("hooded")}, "hooded eyes"},
		{"eyes already named", record.AttributeRecord{EyeColor: str("grey eyes")}, "grey eyes"},
		{"numeric age", record.AttributeRecord{Age: str("34")}, "age 34"},
		{"descriptive age", record.AttributeRecord{Age: str("elderly")}, "elderly"},
		{"kind without species", record.AttributeRecord{Kind: record.KindRobot}, "robot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses := SubjectClauses(record.Subject{Name: "X", Attributes: tt.attrs})
			require.Len(t, clauses, 2)
			assert.Equal(t, tt.want, clauses[1].Text)
		})
	}
}

func TestLocationClauses_RealPlace(t *testing.T) {
	loc := record.Location{
		Name: "Tower Plaza",
		Attributes: record.LocationRecord{
			IsRealPlace: true,
			RealPlace: record.RealPlaceInfo{
				City:     str("Paris"),
				Country:  str("France"),
				KnownFor: str("iron lattice tower"),
			},
			Architecture: str("wrought iron"),
			TimeOfDay:    record.TimeDusk,
			Lighting:     str("golden light"),
		},
	}

	var texts []string
	for _, c := range LocationClauses(loc) {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{
		"Tower Plaza",
		"Paris, France",
		knowledgeInstruction,
		"known for iron lattice tower",
		"wrought iron",
	}, texts)

	visual := VisualClauses(loc.Attributes)
	require.Len(t, visual, 2)
	assert.Equal(t, "at dusk", visual[0].Text)
	assert.Equal(t, "golden light", visual[1].Text)
}

func TestLocationClauses_FictionalLeadsWithName(t *testing.T) {
	loc := record.Location{
		Name: "Old Library",
		Attributes: record.LocationRecord{
			LocationType: str("abandoned library"),
			Setting:      str("underground"),
		},
	}

	var texts []string
	for _, c := range LocationClauses(loc) {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"Old Library", "abandoned library", "underground"}, texts)
}

func TestCompose_SectionSetFollowsGrammar(t *testing.T) {
	scene := Scene{Subjects: []record.Subject{fullHuman()}, Action: "waves"}

	for _, g := range Grammars() {
		t.Run(g.Name, func(t *testing.T) {
			sections := Compose(scene, nil, g)

			var kinds []SectionKind
			for _, k := range g.Sections {
				if !k.Fixed() {
					kinds = append(kinds, k)
				}
			}
			require.Len(t, sections, len(kinds))
			for i, s := range sections {
				assert.Equal(t, kinds[i], s.Kind)
			}
		})
	}
}

func TestCompose_SubjectOrderSharedAcrossGrammars(t *testing.T) {
	scene := Scene{Subjects: []record.Subject{fullHuman()}, Action: "waves"}
	want := NewSection(SectionSubject, SubjectClauses(fullHuman())...).Text()

	for _, g := range Grammars() {
		for _, s := range Compose(scene, nil, g) {
			if s.Kind == SectionSubject {
				assert.Equal(t, want, s.Text(), g.Name)
			}
		}
	}
}

func TestCompose_OnePartPerSubject(t *testing.T) {
	scene := Scene{
		Subjects: []record.Subject{{Name: "Mara"}, {Name: "Theo"}},
		Action:   "argue",
	}
	for _, s := range Compose(scene, nil, BriefSketch()) {
		if s.Kind == SectionSubject {
			require.Len(t, s.Parts, 2)
			assert.Equal(t, "Mara; Theo", s.Text())
		}
	}
}

func TestCompose_ContinuityFromHistory(t *testing.T) {
	hist := history.New()
	hist.Append(history.Entry{PanelNumber: 1, Action: "Mara opens the door"})

	scene := Scene{Subjects: []record.Subject{{Name: "Mara"}}, Action: "walks  in"}
	for _, s := range Compose(scene, hist, SixSectionTechnical()) {
		if s.Kind != SectionAction {
			continue
		}
		require.Len(t, s.Parts, 1)
		require.Len(t, s.Parts[0], 2)
		assert.Equal(t, "walks in", s.Parts[0][0].Text)
		assert.True(t, s.Parts[0][0].Required())
		assert.Equal(t, "Previously in panel 1: Mara opens the door", s.Parts[0][1].Text)
		assert.False(t, s.Parts[0][1].Required())
	}
}

func TestCompose_Camera(t *testing.T) {
	scene := Scene{
		Action: "waits",
		Camera: &Camera{Shot: "close-up", Angle: "low angle", Composition: "rule of thirds"},
	}
	for _, s := range Compose(scene, nil, SixSectionTechnical()) {
		if s.Kind == SectionCamera {
			assert.Equal(t, "close-up, low angle, rule of thirds", s.Text())
		}
	}
}
