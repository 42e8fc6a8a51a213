// Package library indexes stored character and location descriptions in
// VecLite for similarity search.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdul-hamid-achik/veclite"
	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/prompt"
)

const collectionName = "library"

// Kind is the type of an indexed entry.
type Kind string

const (
	KindCharacter Kind = "character"
	KindLocation  Kind = "location"
)

// Config holds configuration for the Index.
type Config struct {
	// Path to the VecLite database file.
	Path string

	// ConfigPath is the veclite.yaml holding the embedder settings. Empty
	// searches ./veclite.yaml then ~/.veclite/config.yaml.
	ConfigPath string
}

// Index wraps a VecLite collection of characters and locations.
type Index struct {
	vecdb    *veclite.DB
	coll     *veclite.Collection
	embedder veclite.Embedder
}

// Hit is one search result.
type Hit struct {
	Kind       Kind    `json:"kind"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}

// Open opens or creates the library at cfg.Path.
func Open(cfg Config) (*Index, error) {
	vcfg, err := veclite.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load veclite config: %w", err)
	}

	embedder, err := veclite.NewEmbedderFromConfig(vcfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	slog.Debug("library embedder ready", "provider", vcfg.Embedder.Provider, "dimension", embedder.Dimension())

	vecdb, err := veclite.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open veclite db: %w", err)
	}

	coll, err := vecdb.CreateCollection(collectionName,
		veclite.WithDimension(embedder.Dimension()),
		veclite.WithDistanceType(veclite.DistanceCosine),
		veclite.WithHNSW(16, 200),
		veclite.WithTextIndex("name", "text"),
		veclite.WithEmbedder(embedder),
	)
	if err != nil {
		coll, err = vecdb.GetCollection(collectionName)
		if err != nil {
			vecdb.Close()
			return nil, fmt.Errorf("get collection: %w", err)
		}
	}

	return &Index{vecdb: vecdb, coll: coll, embedder: embedder}, nil
}

// Close closes the VecLite database.
func (x *Index) Close() error {
	if x.vecdb != nil {
		return x.vecdb.Close()
	}
	return nil
}

// AddCharacter indexes a stored character.
func (x *Index) AddCharacter(ctx context.Context, c db.Character) (uint64, error) {
	return x.insert(KindCharacter, c.ID, c.Name, CharacterText(c))
}

// AddLocation indexes a stored location.
func (x *Index) AddLocation(ctx context.Context, l db.StoredLocation) (uint64, error) {
	return x.insert(KindLocation, l.ID, l.Name, LocationText(l))
}

func (x *Index) insert(kind Kind, id, name, text string) (uint64, error) {
	vid, err := x.coll.InsertText(text, map[string]any{
		"kind":  string(kind),
		"db_id": id,
		"name":  name,
		"text":  text,
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s %s: %w", kind, name, err)
	}
	return vid, nil
}

// Search finds entries scoring at least threshold against query. An empty
// kind searches both characters and locations.
func (x *Index) Search(ctx context.Context, query string, kind Kind, k int, threshold float32) ([]Hit, error) {
	if kind == "" {
		results, err := x.coll.SearchText(query, veclite.TopK(k), veclite.Threshold(threshold))
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		return convertResults(results), nil
	}

	vec, err := x.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := x.coll.Search(vec,
		veclite.TopK(k),
		veclite.Threshold(threshold),
		veclite.WithFilter(veclite.Equal("kind", string(kind))),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	return convertResults(results), nil
}

// Hybrid combines vector and BM25 search over names and text.
func (x *Index) Hybrid(ctx context.Context, query string, k int) ([]Hit, error) {
	vec, err := x.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := x.coll.HybridSearch(vec, query,
		veclite.TopK(k),
		veclite.WithVectorWeight(0.7),
		veclite.WithTextWeight(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return convertResults(results), nil
}

// Count returns the number of indexed entries.
func (x *Index) Count() int {
	return x.coll.Count()
}

// Stats returns collection statistics.
func (x *Index) Stats() veclite.CollectionStats {
	return x.coll.Stats()
}

// Sync persists pending changes to disk.
func (x *Index) Sync() error {
	return x.vecdb.Sync()
}

func convertResults(results []veclite.Result) []Hit {
	out := make([]Hit, 0, len(results))
	for _, r := range results {
		out = append(out, hitFromPayload(r.Score, r.Record.Content, r.Record.Payload))
	}
	return out
}

func hitFromPayload(score float32, content string, payload map[string]any) Hit {
	h := Hit{Similarity: score}
	if kind, ok := payload["kind"].(string); ok {
		h.Kind = Kind(kind)
	}
	if id, ok := payload["db_id"].(string); ok {
		h.ID = id
	}
	if name, ok := payload["name"].(string); ok {
		h.Name = name
	}
	if text, ok := payload["text"].(string); ok {
		h.Text = text
	}
	if h.Text == "" {
		h.Text = content
	}
	return h
}

// CharacterText is the document indexed for a character: its stored
// description, or its composed attribute clauses when it has none.
func CharacterText(c db.Character) string {
	if d := strings.TrimSpace(c.Description); d != "" {
		return c.Name + ": " + d
	}
	return prompt.NewSection(prompt.SectionSubject, prompt.SubjectClauses(c.Subject)...).Text()
}

// LocationText is the document indexed for a location.
func LocationText(l db.StoredLocation) string {
	if d := strings.TrimSpace(l.Description); d != "" {
		return l.Name + ": " + d
	}
	clauses := append(prompt.LocationClauses(l.Location), prompt.VisualClauses(l.Attributes)...)
	return prompt.NewSection(prompt.SectionLocation, clauses...).Text()
}
