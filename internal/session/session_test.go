package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/imagegen"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefiner struct {
	text  string
	err   error
	calls int
}

func (f *fakeRefiner) Refine(_ context.Context, _ refine.Request) (string, error) {
	f.calls++
	return f.text, f.err
}

func mara() record.Subject {
	return record.Subject{Name: "Mara", Attributes: record.AttributeRecord{Kind: record.KindHuman}}
}

func scene(action string) prompt.Scene {
	return prompt.Scene{
		Subjects: []record.Subject{mara()},
		Location: &record.Location{Name: "Lighthouse"},
		Action:   action,
	}
}

func TestComposer_Primary(t *testing.T) {
	c := NewComposer(ComposerConfig{})
	res := c.Compose(context.Background(), scene("climbs the stairs"), nil)

	assert.Equal(t, SourcePrimary, res.Source)
	assert.Equal(t, prompt.BriefSketchName, res.Grammar)
	assert.Empty(t, res.Reason)
	assert.Contains(t, res.Prompt, "ACTION: climbs the stairs")
}

func TestComposer_Fallback(t *testing.T) {
	c := NewComposer(ComposerConfig{Grammar: prompt.BriefSketch()})
	long := strings.TrimSpace(strings.Repeat("walks along the cliff path ", 60))

	res := c.Compose(context.Background(), scene(long), nil)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Contains(t, res.Reason, prompt.ErrPrimaryUnavailable.Error())
	assert.NotEmpty(t, res.Prompt)
	assert.True(t, prompt.FitsInBudget(res.Prompt, c.Grammar()))
	assert.Contains(t, res.Prompt, "Mara")
}

func TestComposer_Refiner(t *testing.T) {
	g := prompt.BriefSketch()
	ctx := context.Background()

	t.Run("accepted and fixed literal restored", func(t *testing.T) {
		r := &fakeRefiner{text: strings.Join([]string{
			"SHOT: medium shot, eye level",
			"CHARACTERS: Mara, windswept",
			"ACTION: Mara climbs the worn stairs",
			"LOCATION: Lighthouse",
			"ATMOSPHERE: neutral",
			"STYLE: glossy oil painting",
		}, "\n")}
		c := NewComposer(ComposerConfig{Grammar: g, Refiner: r})

		res := c.Compose(ctx, scene("climbs the stairs"), nil)
		assert.Equal(t, SourceRefined, res.Source)
		assert.Equal(t, 1, r.calls)
		assert.Contains(t, res.Draft, "ACTION: climbs the stairs")
		assert.True(t, strings.HasSuffix(res.Prompt, "STYLE: "+prompt.BriefSketchStyle))
		assert.NotContains(t, res.Prompt, "oil painting")
	})

	tests := []struct {
		name   string
		refine *fakeRefiner
		reason string
	}{
		{"refiner error", &fakeRefiner{err: errors.New("upstream down")}, "upstream down"},
		{"missing labels", &fakeRefiner{text: "Mara climbs the stairs of the lighthouse."}, "labeled lines"},
		{"dropped subject", &fakeRefiner{text: strings.Join([]string{
			"SHOT: wide shot", "CHARACTERS: a keeper", "ACTION: climbs",
			"LOCATION: Lighthouse", "ATMOSPHERE: neutral", "STYLE: x",
		}, "\n")}, "missing subject"},
		{"over budget", &fakeRefiner{text: strings.Join([]string{
			"SHOT: wide shot", "CHARACTERS: Mara", "ACTION: " + strings.Repeat("climbs ", 200),
			"LOCATION: Lighthouse", "ATMOSPHERE: neutral", "STYLE: x",
		}, "\n")}, "over budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer(ComposerConfig{Grammar: g, Refiner: tt.refine})
			primary := NewComposer(ComposerConfig{Grammar: g}).Compose(ctx, scene("climbs the stairs"), nil)

			res := c.Compose(ctx, scene("climbs the stairs"), nil)
			assert.Equal(t, SourcePrimary, res.Source)
			assert.Equal(t, primary.Prompt, res.Prompt)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestComposer_RefinerStripsDeniedTerms(t *testing.T) {
	g := prompt.HighFidelityForm()
	body := "Mara climbs the spiral stairs of the lighthouse, simple outline, " + prompt.HighFidelityFormStyle
	r := &fakeRefiner{text: "Photorealistic " + body}
	c := NewComposer(ComposerConfig{Grammar: g, Refiner: r})

	res := c.Compose(context.Background(), scene("climbs the stairs"), nil)
	require.Equal(t, SourceRefined, res.Source, res.Reason)
	assert.NotContains(t, strings.ToLower(res.Prompt), "photorealistic")
}

func TestSession_ComposePanels_Continuity(t *testing.T) {
	s := New(NewComposer(ComposerConfig{}))
	panels := []Panel{
		{Number: 1, Scene: scene("opens the door")},
		{Number: 2, Scene: scene("climbs the stairs")},
		{Number: 3, Scene: scene("finds the lamp")},
	}

	out, err := s.ComposePanels(context.Background(), panels)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.NotContains(t, out[0].Prompt, "Previously")
	assert.Contains(t, out[1].Prompt, "Previously in panel 1, Mara: opens the door")
	assert.Contains(t, out[2].Prompt, "Previously in panel 2, Mara: climbs the stairs")
	assert.NotContains(t, out[2].Prompt, "opens the door")

	for i, p := range out {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, panels[i].Scene.Action, p.Action)
	}

	assert.Equal(t, 3, s.History().Len())
	last, ok := s.History().Last()
	require.True(t, ok)
	assert.Equal(t, 3, last.PanelNumber)
}

func TestSession_ComposePanels_Depth(t *testing.T) {
	s := New(NewComposer(ComposerConfig{}), history.WithDepth(2))
	out, err := s.ComposePanels(context.Background(), []Panel{
		{Number: 1, Scene: scene("opens the door")},
		{Number: 2, Scene: scene("climbs")},
		{Number: 3, Scene: scene("finds the lamp")},
	})
	require.NoError(t, err)
	assert.Contains(t, out[2].Prompt, "opens the door")
	assert.Contains(t, out[2].Prompt, "climbs")
}

func TestSession_ComposePanels_Cancelled(t *testing.T) {
	s := New(NewComposer(ComposerConfig{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := s.ComposePanels(ctx, []Panel{{Number: 1, Scene: scene("waits")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
	assert.Zero(t, s.History().Len())
}

func TestSession_ComposePanels_NoSubjects(t *testing.T) {
	s := New(NewComposer(ComposerConfig{}))
	_, err := s.ComposePanels(context.Background(), []Panel{
		{Number: 1, Scene: prompt.Scene{Action: "rain falls on the sea"}},
	})
	require.NoError(t, err)

	last, _ := s.History().Last()
	assert.Nil(t, last.SubjectSummary)
}

type fakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	strength []float64
	active   atomic.Int32
	peak     atomic.Int32
	failOn   string
}

func (f *fakeGenerator) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.strength = append(f.strength, req.Strength)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(req.Prompt, f.failOn) {
		return nil, imagegen.ErrBlocked
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &imagegen.Result{Data: []byte(req.Prompt), MIMEType: "image/png"}, nil
}

func TestGenerateImages(t *testing.T) {
	panels := []ComposedPanel{
		{Number: 1, Result: Result{Prompt: "one"}},
		{Number: 2, Result: Result{Prompt: "two"}},
		{Number: 3, Result: Result{Prompt: "three"}},
		{Number: 4, Result: Result{Prompt: "four"}},
	}

	t.Run("keeps panel order", func(t *testing.T) {
		gen := &fakeGenerator{}
		images, err := GenerateImages(context.Background(), gen, panels, GenerateOptions{Concurrency: 2, Strength: 0.9})
		require.NoError(t, err)
		require.Len(t, images, 4)

		for i, img := range images {
			assert.Equal(t, panels[i].Number, img.Number)
			assert.Equal(t, panels[i].Prompt, string(img.Result.Data))
		}
		assert.LessOrEqual(t, gen.peak.Load(), int32(2))
		for _, s := range gen.strength {
			assert.Equal(t, imagegen.MaxStrength, s)
		}
	})

	t.Run("failure is returned", func(t *testing.T) {
		gen := &fakeGenerator{failOn: "three"}
		_, err := GenerateImages(context.Background(), gen, panels, GenerateOptions{})
		assert.ErrorIs(t, err, imagegen.ErrBlocked)
		assert.Contains(t, err.Error(), "panel 3")
	})
}
