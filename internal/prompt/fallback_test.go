package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/abdulachik/panelforge/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeFallback_FullAttributes(t *testing.T) {
	g := SixSectionTechnical()
	subject := fullHuman()
	loc := &record.Location{Name: "Harbor"}

	got := ComposeFallback([]record.Subject{subject}, loc, "waves goodbye", g)

	want := NewSection(SectionSubject, SubjectClauses(subject)...).Text()
	assert.Contains(t, got, "CHARACTER: "+want)
	assert.Contains(t, got, "ACTION: waves goodbye")
	assert.Contains(t, got, "LOCATION: Harbor")
	assert.Contains(t, got, "CAMERA: medium shot, eye level")
	assert.NotContains(t, got, "Previously")
}

func TestComposeFallback_NeverEmpty(t *testing.T) {
	for _, g := range Grammars() {
		t.Run(g.Name, func(t *testing.T) {
			assert.NotEmpty(t, ComposeFallback(nil, nil, "", g))
			assert.NotEmpty(t, ComposeFallback([]record.Subject{{}}, &record.Location{}, "   ", g))
		})
	}
}

func TestComposeFallback_LongAction(t *testing.T) {
	action := strings.Repeat("run ", 400)
	subjects := []record.Subject{{Name: "Mara", Attributes: record.AttributeRecord{Clothing: str("red scarf")}}}
	loc := &record.Location{Name: "Old Library"}

	for _, g := range Grammars() {
		t.Run(g.Name, func(t *testing.T) {
			_, err := Assemble(Compose(Scene{Subjects: subjects, Location: loc, Action: action}, nil, g), g)
			require.True(t, errors.Is(err, ErrBudgetExceeded))

			got := ComposeFallback(subjects, loc, action, g)
			assert.NotEmpty(t, got)
			assert.True(t, FitsInBudget(got, g), "%d %s", Measure(got, g.Unit), g.Unit)
			assert.Contains(t, got, "Mara")
			assert.Contains(t, got, "run run")
			assert.Contains(t, got, "...")
			assert.Contains(t, got, g.Fixed[SectionStyle])
		})
	}
}

func TestComposeFallback_ClipsOversizedNames(t *testing.T) {
	g := BriefSketch()
	name := strings.Repeat("Maximilian", 120)

	got := ComposeFallback([]record.Subject{{Name: name}}, nil, "waves", g)
	assert.NotEmpty(t, got)
	assert.True(t, FitsInBudget(got, g))
}

func TestComposeFallback_Deterministic(t *testing.T) {
	subjects := []record.Subject{fullHuman()}
	action := strings.Repeat("leaps ", 300)
	g := HighFidelityForm()

	assert.Equal(t, ComposeFallback(subjects, nil, action, g), ComposeFallback(subjects, nil, action, g))
}
