package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestExtractCharacter(t *testing.T) {
	s := New(Config{})

	rec := do(t, s, http.MethodPost, "/v1/extract/character",
		`{"description":"CHARACTER_TYPE: robot | SPECIES: N/A | a chrome android with glowing eyes"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[extractCharacterResponse](t, rec)
	assert.Equal(t, record.KindRobot, resp.Attributes.Kind)
	assert.NotNil(t, resp.Populated)

	rec = do(t, s, http.MethodPost, "/v1/extract/character", `{"description":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"populated":[]`)

	rec = do(t, s, http.MethodPost, "/v1/extract/character", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractLocation(t *testing.T) {
	s := New(Config{})

	rec := do(t, s, http.MethodPost, "/v1/extract/location",
		`{"description":"LOCATION_TYPE: real | City: Paris | Country: France | the tower at dusk"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[extractLocationResponse](t, rec)
	assert.True(t, resp.Attributes.IsRealPlace)
	assert.Equal(t, "Paris", record.Value(resp.Attributes.RealPlace.City))
}

func TestCompose(t *testing.T) {
	t.Run("inline scene", func(t *testing.T) {
		s := New(Config{})
		rec := do(t, s, http.MethodPost, "/v1/compose", `{
			"subjects": [{"name": "Mara", "attributes": {"subject_kind": "human", "clothing": "grey wool cloak"}}],
			"location": {"name": "Old Library"},
			"action": "walks into the room"
		}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[composeResponse](t, rec)
		assert.Equal(t, prompt.BriefSketchName, resp.Grammar)
		assert.Equal(t, "primary", string(resp.Source))
		assert.Contains(t, resp.Prompt, "CHARACTERS: Mara, wearing grey wool cloak")
		assert.Equal(t, "characters", resp.Unit)
		assert.Equal(t, 900, resp.Budget)
		assert.LessOrEqual(t, resp.Length, resp.Budget)
	})

	t.Run("description is extracted", func(t *testing.T) {
		s := New(Config{})
		rec := do(t, s, http.MethodPost, "/v1/compose", `{
			"grammar": "six-section-technical",
			"subjects": [{"name": "Theo", "description": "CHARACTER_TYPE: human | Hair: silver hair"}],
			"action": "reads",
			"history": [{"panel_number": 1, "action": "Theo sits down"}]
		}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[composeResponse](t, rec)
		assert.Contains(t, resp.Prompt, "silver hair")
		assert.Contains(t, resp.Prompt, "Previously in panel 1: Theo sits down")
		assert.Contains(t, resp.Prompt, "DO NOT INCLUDE: ")
	})

	t.Run("unknown grammar", func(t *testing.T) {
		rec := do(t, New(Config{}), http.MethodPost, "/v1/compose", `{"grammar":"nope","action":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stored names need a database", func(t *testing.T) {
		rec := do(t, New(Config{}), http.MethodPost, "/v1/compose", `{"characters":["Mara"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stored characters", func(t *testing.T) {
		store := newTestStore(t)
		ctx := context.Background()
		hair := "red hair"
		_, err := store.CreateCharacter(ctx, record.Subject{
			Name:       "Mara",
			Attributes: record.AttributeRecord{Kind: record.KindHuman, Hair: &hair},
		})
		require.NoError(t, err)
		_, err = store.CreateLocation(ctx, record.Location{Name: "Harbor"})
		require.NoError(t, err)

		s := New(Config{Store: store})
		rec := do(t, s, http.MethodPost, "/v1/compose",
			`{"characters":["mara"],"location_name":"harbor","action":"waves"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[composeResponse](t, rec)
		assert.Contains(t, resp.Prompt, "Mara, red hair")
		assert.Contains(t, resp.Prompt, "LOCATION: Harbor")

		rec = do(t, s, http.MethodPost, "/v1/compose", `{"characters":["Nobody"]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type stubRefiner struct {
	text string
	err  error
}

func (r stubRefiner) Refine(_ context.Context, _ refine.Request) (string, error) {
	return r.text, r.err
}

func TestCompose_RefinerHealth(t *testing.T) {
	s := New(Config{Refiner: stubRefiner{err: errors.New("quota exceeded")}})

	rec := do(t, s, http.MethodPost, "/v1/compose", `{"action":"waits","refine":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[composeResponse](t, rec)
	assert.Equal(t, "primary", string(resp.Source))
	assert.Contains(t, resp.Reason, "quota exceeded")

	st := s.Health.Status("refiner")
	require.NotNil(t, st)
	assert.False(t, st.Healthy)

	rec = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[healthResponse](t, rec).Status)

	t.Run("not asked to refine", func(t *testing.T) {
		s := New(Config{Refiner: stubRefiner{err: errors.New("boom")}})
		rec := do(t, s, http.MethodPost, "/v1/compose", `{"action":"waits"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, s.Health.Status("refiner"))
	})
}

func TestComposeFallback(t *testing.T) {
	s := New(Config{})
	rec := do(t, s, http.MethodPost, "/v1/compose/fallback", `{
		"grammar": "high-fidelity-form",
		"subjects": [{"name": "Mara"}],
		"action": "runs through the rain"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[composeResponse](t, rec)
	assert.Equal(t, "fallback", string(resp.Source))
	assert.Contains(t, resp.Prompt, "Mara")
	assert.Equal(t, "words", resp.Unit)
	assert.LessOrEqual(t, resp.Length, 90)
}

func TestGrammars(t *testing.T) {
	s := New(Config{DefaultGrammar: prompt.SixSectionTechnicalName})
	rec := do(t, s, http.MethodGet, "/v1/grammars", "")
	require.Equal(t, http.StatusOK, rec.Code)

	infos := decode[[]grammarInfo](t, rec)
	require.Len(t, infos, 3)

	byName := map[string]grammarInfo{}
	for _, g := range infos {
		byName[g.Name] = g
	}
	assert.True(t, byName[prompt.SixSectionTechnicalName].Default)
	assert.Equal(t, "paragraph", byName[prompt.HighFidelityFormName].Layout)
	assert.Equal(t, []string{"SHOT", "CHARACTERS", "ACTION", "LOCATION", "ATMOSPHERE", "STYLE"},
		byName[prompt.BriefSketchName].Sections)
}

func TestSchema(t *testing.T) {
	s := New(Config{})

	for _, kind := range SchemaKinds {
		t.Run(kind, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/v1/schema/"+kind, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"properties"`)
		})
	}

	rec := do(t, s, http.MethodGet, "/v1/schema/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{Store: newTestStore(t)})

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[healthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Components["database"].Healthy)
}

func TestHealth(t *testing.T) {
	h := NewHealth()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	assert.Nil(t, h.Status("refiner"))
	assert.True(t, h.IsOverallHealthy())

	h.SetUnhealthy("refiner", assert.AnError)
	h.SetUnhealthy("refiner", assert.AnError)
	h.SetHealthy("database", "ok")

	st := h.Status("refiner")
	require.NotNil(t, st)
	assert.False(t, st.Healthy)
	assert.Equal(t, 2, st.Failures)
	assert.Equal(t, fixed, st.LastCheck)
	assert.True(t, st.LastSuccess.IsZero())
	assert.Equal(t, assert.AnError, h.LastError("refiner"))
	assert.Equal(t, []string{"refiner"}, h.Unhealthy())
	assert.False(t, h.IsOverallHealthy())

	h.SetHealthy("refiner", "recovered")
	st = h.Status("refiner")
	assert.True(t, st.Healthy)
	assert.Zero(t, st.Failures)
	assert.Nil(t, h.LastError("refiner"))
	assert.Len(t, h.Snapshot(), 2)
	assert.True(t, h.IsOverallHealthy())
}
