package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/imagegen"
	"github.com/abdulachik/panelforge/internal/prompt"
	"golang.org/x/sync/errgroup"
)

// Panel is one panel of a project awaiting composition.
type Panel struct {
	Number int
	Scene  prompt.Scene
}

// ComposedPanel is a panel with its finished prompt.
type ComposedPanel struct {
	Number int    `json:"number"`
	Action string `json:"action"`
	Result
}

// Session owns the history of one multi-panel generation run.
type Session struct {
	composer *Composer
	hist     *history.Window
}

// New creates a session with an empty history window.
func New(composer *Composer, opts ...history.Option) *Session {
	return &Session{composer: composer, hist: history.New(opts...)}
}

// History returns the session's history window.
func (s *Session) History() *history.Window {
	return s.hist
}

// ComposePanels composes panels strictly in order. Each panel's action is
// appended to the history only after that panel is composed, so panel n+1
// sees panel n. Cancellation stops between panels and returns what was
// composed so far.
func (s *Session) ComposePanels(ctx context.Context, panels []Panel) ([]ComposedPanel, error) {
	out := make([]ComposedPanel, 0, len(panels))
	for _, p := range panels {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("compose panel %d: %w", p.Number, err)
		}

		res := s.composer.Compose(ctx, p.Scene, s.hist)
		slog.Info("composed panel", "panel", p.Number, "grammar", res.Grammar, "source", res.Source)

		s.hist.Append(history.Entry{
			PanelNumber:    p.Number,
			Action:         p.Scene.Action,
			SubjectSummary: subjectSummary(p.Scene),
		})
		out = append(out, ComposedPanel{Number: p.Number, Action: p.Scene.Action, Result: res})
	}
	return out, nil
}

// subjectSummary names the subjects of a scene, or nil when there are none.
func subjectSummary(scene prompt.Scene) *string {
	names := make([]string, 0, len(scene.Subjects))
	for _, subj := range scene.Subjects {
		if n := strings.TrimSpace(subj.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil
	}
	summary := strings.Join(names, " and ")
	return &summary
}

// GenerateOptions configures image generation.
type GenerateOptions struct {
	Concurrency int
	Strength    float64
	Reference   []byte
	AspectRatio string
}

// Image is the generated image of one composed panel.
type Image struct {
	Number int
	Result *imagegen.Result
}

// GenerateImages generates one image per composed panel in parallel. It
// only reads the composed prompts. The first failure cancels the remaining
// requests.
func GenerateImages(ctx context.Context, gen imagegen.Generator, panels []ComposedPanel, opts GenerateOptions) ([]Image, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}
	strength := imagegen.ClampStrength(opts.Strength)

	images := make([]Image, len(panels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range panels {
		g.Go(func() error {
			res, err := gen.Generate(gctx, imagegen.Request{
				Prompt:      p.Prompt,
				Reference:   opts.Reference,
				Strength:    strength,
				AspectRatio: opts.AspectRatio,
			})
			if err != nil {
				return fmt.Errorf("generate panel %d: %w", p.Number, err)
			}
			images[i] = Image{Number: p.Number, Result: res}
			slog.Info("generated panel image", "panel", p.Number, "bytes", len(res.Data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
