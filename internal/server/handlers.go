package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/extractor"
	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/abdulachik/panelforge/internal/session"
	"github.com/invopop/jsonschema"
	"github.com/labstack/echo/v4"
)

type extractRequest struct {
	Description string `json:"description"`
}

type extractCharacterResponse struct {
	Attributes record.AttributeRecord `json:"attributes"`
	Populated  []string               `json:"populated"`
}

type extractLocationResponse struct {
	Attributes record.LocationRecord `json:"attributes"`
}

// POST /v1/extract/character
func (s *Server) handlePostExtractCharacter(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	attrs := extractor.Extract(req.Description)
	populated := attrs.PopulatedFields()
	if populated == nil {
		populated = []string{}
	}
	return c.JSON(http.StatusOK, extractCharacterResponse{Attributes: attrs, Populated: populated})
}

// POST /v1/extract/location
func (s *Server) handlePostExtractLocation(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	return c.JSON(http.StatusOK, extractLocationResponse{Attributes: extractor.ExtractLocation(req.Description)})
}

type composeRequest struct {
	Grammar      string           `json:"grammar"`
	Subjects     []record.Subject `json:"subjects"`
	Characters   []string         `json:"characters"`
	Location     *record.Location `json:"location"`
	LocationName string           `json:"location_name"`
	Action       string           `json:"action"`
	Camera       *prompt.Camera   `json:"camera"`
	History      []history.Entry  `json:"history"`
	Refine       bool             `json:"refine"`
}

type composeResponse struct {
	session.Result
	Length int    `json:"length"`
	Budget int    `json:"budget"`
	Unit   string `json:"unit"`
}

// POST /v1/compose
func (s *Server) handlePostCompose(c echo.Context) error {
	req, g, err := s.bindCompose(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	scene, err := s.resolveScene(ctx, req)
	if err != nil {
		return err
	}

	hist := history.New(history.WithBudget(s.historyBudget))
	for _, e := range req.History {
		hist.Append(e)
	}

	cfg := session.ComposerConfig{Grammar: g}
	refining := req.Refine && s.refiner != nil
	if refining {
		cfg.Refiner = s.refiner
	}

	res := session.NewComposer(cfg).Compose(ctx, scene, hist)
	if refining {
		s.recordRefiner(res)
	}

	return c.JSON(http.StatusOK, composeResponse{
		Result: res,
		Length: prompt.Measure(res.Prompt, g.Unit),
		Budget: g.MaxLength,
		Unit:   g.Unit.String(),
	})
}

// POST /v1/compose/fallback
func (s *Server) handlePostComposeFallback(c echo.Context) error {
	req, g, err := s.bindCompose(c)
	if err != nil {
		return err
	}

	scene, err := s.resolveScene(c.Request().Context(), req)
	if err != nil {
		return err
	}

	text := prompt.ComposeFallback(scene.Subjects, scene.Location, scene.Action, g)
	return c.JSON(http.StatusOK, composeResponse{
		Result: session.Result{Prompt: text, Source: session.SourceFallback, Grammar: g.Name},
		Length: prompt.Measure(text, g.Unit),
		Budget: g.MaxLength,
		Unit:   g.Unit.String(),
	})
}

func (s *Server) bindCompose(c echo.Context) (composeRequest, prompt.Grammar, error) {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return req, prompt.Grammar{}, echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	name := req.Grammar
	if name == "" {
		name = s.defaultGrammar
	}
	g, err := prompt.Lookup(name)
	if err != nil {
		return req, prompt.Grammar{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, g, nil
}

// resolveScene builds a scene from inline records and stored names. Inline
// subjects with a description but no attributes are extracted on the fly.
func (s *Server) resolveScene(ctx context.Context, req composeRequest) (prompt.Scene, error) {
	scene := prompt.Scene{
		Action:   strings.TrimSpace(req.Action),
		Location: req.Location,
		Camera:   req.Camera,
	}

	for _, subj := range req.Subjects {
		if subj.Attributes.IsEmpty() && strings.TrimSpace(subj.Description) != "" {
			subj.Attributes = extractor.Extract(subj.Description)
		}
		scene.Subjects = append(scene.Subjects, subj)
	}

	if len(req.Characters) > 0 || req.LocationName != "" {
		if s.store == nil {
			return scene, echo.NewHTTPError(http.StatusBadRequest, "stored characters and locations need a database")
		}
	}

	for _, name := range req.Characters {
		stored, err := s.store.GetCharacterByName(ctx, name)
		if err != nil {
			return scene, storeError(err)
		}
		scene.Subjects = append(scene.Subjects, stored.Subject)
	}

	if req.LocationName != "" {
		stored, err := s.store.GetLocationByName(ctx, req.LocationName)
		if err != nil {
			return scene, storeError(err)
		}
		scene.Location = &stored.Location
	}

	return scene, nil
}

func storeError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return fmt.Errorf("load scene: %w", err)
}

func (s *Server) recordRefiner(res session.Result) {
	switch {
	case res.Source == session.SourceRefined:
		s.Health.SetHealthy("refiner", "ok")
	case strings.HasPrefix(res.Reason, "refiner: "):
		s.Health.SetUnhealthy("refiner", errors.New(strings.TrimPrefix(res.Reason, "refiner: ")))
	}
}

type grammarInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Layout      string   `json:"layout"`
	Sections    []string `json:"sections"`
	Unit        string   `json:"unit"`
	MaxLength   int      `json:"max_length"`
	MinLength   int      `json:"min_length,omitempty"`
	Default     bool     `json:"default"`
}

// GET /v1/grammars
func (s *Server) handleGetGrammars(c echo.Context) error {
	grammars := prompt.Grammars()
	out := make([]grammarInfo, 0, len(grammars))
	for _, g := range grammars {
		info := grammarInfo{
			Name:        g.Name,
			Description: g.Description,
			Layout:      g.Layout.String(),
			Unit:        g.Unit.String(),
			MaxLength:   g.MaxLength,
			MinLength:   g.MinLength,
			Default:     g.Name == s.defaultGrammar,
		}
		for _, kind := range g.Sections {
			if label := g.Label(kind); label != "" {
				info.Sections = append(info.Sections, label)
			} else {
				info.Sections = append(info.Sections, string(kind))
			}
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

// SchemaKinds lists the kinds accepted by SchemaFor.
var SchemaKinds = []string{"character", "location", "refinement"}

// SchemaFor returns the JSON schema of an extracted record or of the
// refinement answer.
func SchemaFor(kind string) (*jsonschema.Schema, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	switch kind {
	case "character":
		return r.Reflect(record.AttributeRecord{}), nil
	case "location":
		return r.Reflect(record.LocationRecord{}), nil
	case "refinement":
		return refine.OutputSchema, nil
	default:
		return nil, fmt.Errorf("unknown schema %q, want one of %s", kind, strings.Join(SchemaKinds, ", "))
	}
}

// GET /v1/schema/:kind
func (s *Server) handleGetSchema(c echo.Context) error {
	schema, err := SchemaFor(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, schema)
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// GET /health
func (s *Server) handleGetHealth(c echo.Context) error {
	s.CheckStore(c.Request().Context())

	resp := healthResponse{Status: "ok", Components: s.Health.Snapshot()}
	code := http.StatusOK
	if !s.Health.IsOverallHealthy() {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
