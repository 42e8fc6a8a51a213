// Package app wires configured collaborators around the composition core.
package app

import (
	"context"
	"fmt"

	"github.com/abdulachik/panelforge/internal/config"
	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/describe"
	"github.com/abdulachik/panelforge/internal/history"
	"github.com/abdulachik/panelforge/internal/imagegen"
	"github.com/abdulachik/panelforge/internal/library"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/abdulachik/panelforge/internal/session"
	"google.golang.org/genai"
)

// App is the application container holding the store and configuration.
// Collaborators are built on demand so commands only need the credentials
// they use.
type App struct {
	Config *config.Config
	Store  *db.Store

	gemini *genai.Client
}

// New opens and migrates the database.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &App{Config: cfg, Store: store}, nil
}

func (a *App) geminiClient(ctx context.Context) (*genai.Client, error) {
	if a.gemini != nil {
		return a.gemini, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.Config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	a.gemini = client
	return client, nil
}

// Describer builds the configured vision describer, cached and rate
// limited.
func (a *App) Describer(ctx context.Context) (describe.Describer, error) {
	if err := a.Config.ValidateForDescribe(); err != nil {
		return nil, err
	}

	var d describe.Describer
	switch a.Config.DescribeProvider {
	case "gemini":
		client, err := a.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		g, err := describe.NewGeminiDescriber(client.Models, a.Config.GeminiTextModel)
		if err != nil {
			return nil, err
		}
		d = g
	default:
		d = describe.NewClaudeClient(describe.ClaudeConfig{
			APIKey: a.Config.AnthropicAPIKey,
			Model:  a.Config.AnthropicModel,
		})
	}

	if a.Config.RateInterval > 0 {
		d = describe.NewRateLimited(d, a.Config.RateInterval)
	}
	return describe.NewCachedDescriber(d, a.Config.DescribeCacheTTL), nil
}

// Refiner returns the OpenAI refiner, or nil when refinement is off.
func (a *App) Refiner(enabled bool) (refine.Refiner, error) {
	if !enabled {
		return nil, nil
	}
	if err := a.Config.ValidateForRefine(); err != nil {
		return nil, err
	}
	return refine.NewOpenAIRefiner(refine.OpenAIConfig{
		APIKey:  a.Config.OpenAIAPIKey,
		Model:   a.Config.OpenAIModel,
		BaseURL: a.Config.OpenAIBaseURL,
	}), nil
}

// Generator builds the Gemini image generator, paced by RATE_INTERVAL.
func (a *App) Generator(ctx context.Context) (imagegen.Generator, error) {
	if err := a.Config.ValidateForImages(); err != nil {
		return nil, err
	}
	client, err := a.geminiClient(ctx)
	if err != nil {
		return nil, err
	}
	g, err := imagegen.NewGeminiGenerator(client.Models, imagegen.GeminiConfig{Model: a.Config.GeminiImageModel})
	if err != nil {
		return nil, err
	}
	if a.Config.RateInterval <= 0 {
		return g, nil
	}
	return imagegen.NewRateLimited(g, a.Config.RateInterval, a.Config.ImageConcurrency), nil
}

// Library opens the VecLite library.
func (a *App) Library() (*library.Index, error) {
	if err := a.Config.ValidateForLibrary(); err != nil {
		return nil, err
	}
	return library.Open(library.Config{Path: a.Config.VecLitePath})
}

// Session creates a composition session for grammarName, falling back to
// DEFAULT_GRAMMAR when the name is empty.
func (a *App) Session(grammarName string, refiner refine.Refiner) (*session.Session, error) {
	if grammarName == "" {
		grammarName = a.Config.DefaultGrammar
	}
	g, err := prompt.Lookup(grammarName)
	if err != nil {
		return nil, err
	}

	composer := session.NewComposer(session.ComposerConfig{Grammar: g, Refiner: refiner})
	return session.New(composer,
		history.WithBudget(a.Config.HistoryBudget),
		history.WithDepth(a.Config.HistoryDepth),
	), nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
