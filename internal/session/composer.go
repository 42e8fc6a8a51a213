// Package session composes the panels of a project in order and hands the
// finished prompts to image generation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/refine"
)

// Source records which path produced a prompt.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceRefined  Source = "refined"
	SourceFallback Source = "fallback"
)

// Result is one composed panel prompt.
type Result struct {
	Prompt   string           `json:"prompt"`
	Source   Source           `json:"source"`
	Reason   string           `json:"reason,omitempty"`
	Grammar  string           `json:"grammar"`
	Draft    string           `json:"draft,omitempty"`
	Scene    prompt.Scene     `json:"-"`
	Sections []prompt.Section `json:"-"`
}

// ComposerConfig holds composer configuration.
type ComposerConfig struct {
	Grammar prompt.Grammar

	// Refiner is optional.
	Refiner refine.Refiner
}

// Composer runs the primary composition path for a single panel and falls
// back when the primary path cannot produce a prompt.
type Composer struct {
	grammar prompt.Grammar
	refiner refine.Refiner
}

// NewComposer creates a new composer. An unnamed grammar defaults to
// brief-sketch.
func NewComposer(cfg ComposerConfig) *Composer {
	g := cfg.Grammar
	if g.Name == "" {
		g = prompt.BriefSketch()
	}
	return &Composer{grammar: g, refiner: cfg.Refiner}
}

// Grammar returns the grammar the composer renders.
func (c *Composer) Grammar() prompt.Grammar {
	return c.grammar
}

// Compose builds the prompt for one scene. It never fails: a budget overflow
// routes to the fallback composer and a refiner failure keeps the assembled
// text.
func (c *Composer) Compose(ctx context.Context, scene prompt.Scene, hist *history.Window) Result {
	g := c.grammar
	sections := prompt.Compose(scene, hist, g)

	text, err := prompt.Assemble(sections, g)
	if err != nil {
		slog.Warn("primary composition failed, using fallback", "grammar", g.Name, "error", err)
		return Result{
			Prompt:   prompt.ComposeFallback(scene.Subjects, scene.Location, scene.Action, g),
			Source:   SourceFallback,
			Reason:   fmt.Errorf("%w: %w", prompt.ErrPrimaryUnavailable, err).Error(),
			Grammar:  g.Name,
			Scene:    scene,
			Sections: sections,
		}
	}

	res := Result{Prompt: text, Source: SourcePrimary, Grammar: g.Name, Scene: scene, Sections: sections}
	if c.refiner == nil {
		return res
	}

	refined, err := c.refiner.Refine(ctx, refine.Request{Grammar: g, Draft: text, Sections: sections, Scene: scene})
	if err == nil {
		refined, err = accept(refined, g, scene)
	}
	if err != nil {
		slog.Warn("refinement rejected, keeping assembled prompt", "grammar", g.Name, "error", err)
		res.Reason = "refiner: " + err.Error()
		return res
	}

	slog.Debug("refinement accepted", "grammar", g.Name,
		"diff", prompt.FormatDiff(prompt.DiffWords(text, refined)))

	res.Draft = text
	res.Prompt = refined
	res.Source = SourceRefined
	return res
}

// ErrRefinementRejected is returned when refined text breaks the grammar.
var ErrRefinementRejected = errors.New("refinement rejected")

// accept runs refined text through the grammar's vocabulary policy and
// budget, and checks that every subject name survived and that labeled
// grammars kept every label in order.
func accept(text string, g prompt.Grammar, scene prompt.Scene) (string, error) {
	text = strings.TrimSpace(g.Policy.Strip(text))
	if text == "" {
		return "", fmt.Errorf("%w: empty", ErrRefinementRejected)
	}

	lower := strings.ToLower(text)
	for _, s := range scene.Subjects {
		if name := strings.TrimSpace(s.Name); name != "" && !strings.Contains(lower, strings.ToLower(name)) {
			return "", fmt.Errorf("%w: missing subject %q", ErrRefinementRejected, name)
		}
	}

	if g.Layout == prompt.LayoutLabeled {
		lines := strings.Split(text, "\n")
		if len(lines) != len(g.Sections) {
			return "", fmt.Errorf("%w: want %d labeled lines, got %d", ErrRefinementRejected, len(g.Sections), len(lines))
		}
		for i, kind := range g.Sections {
			label := g.Label(kind) + ":"
			if !strings.HasPrefix(strings.TrimSpace(lines[i]), label) {
				return "", fmt.Errorf("%w: line %d is not %s", ErrRefinementRejected, i+1, label)
			}
			if literal, ok := g.Fixed[kind]; ok {
				lines[i] = label + " " + literal
			}
		}
		text = strings.Join(lines, "\n")
	}

	if !prompt.FitsInBudget(text, g) {
		return "", fmt.Errorf("%w: %d %s over budget of %d",
			ErrRefinementRejected, prompt.Measure(text, g.Unit), g.Unit, g.MaxLength)
	}
	return text, nil
}
