package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultImageModel = "gemini-2.5-flash-image"

// ContentGenerator is the part of the genai Models service used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig holds configuration for the Gemini generator.
type GeminiConfig struct {
	Model string
}

// GeminiGenerator generates images with a Gemini image model.
type GeminiGenerator struct {
	models ContentGenerator
	model  string
}

// NewGeminiGenerator creates a generator on top of a genai Models service.
func NewGeminiGenerator(models ContentGenerator, cfg GeminiConfig) (*GeminiGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("content generator is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultImageModel
	}
	return &GeminiGenerator{models: models, model: model}, nil
}

// Generate sends the prompt, plus the reference image when present, and
// returns the first inline image of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	parts := []*genai.Part{{Text: req.Prompt}}

	if len(req.Reference) > 0 {
		mimeType := http.DetectContentType(req.Reference)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("reference is not an image: %s", mimeType)
		}
		strength := ClampStrength(req.Strength)
		parts = append(parts,
			&genai.Part{Text: fmt.Sprintf(
				"Use the attached reference image for character likeness with influence strength %.2f on a scale from %.1f to %.1f.",
				strength, MinStrength, MaxStrength)},
			&genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: req.Reference}},
		)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	slog.Debug("generating image", "model", g.model, "prompt_len", len(req.Prompt), "reference", len(req.Reference) > 0)

	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	return parseImage(resp, g.model)
}

func parseImage(resp *genai.GenerateContentResponse, model string) (*Result, error) {
	if resp == nil {
		return nil, ErrNoImage
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrNoImage
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: safety", ErrBlocked)
	}
	if candidate.Content == nil {
		return nil, ErrNoImage
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Result{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
				Model:    model,
			}, nil
		}
	}
	return nil, ErrNoImage
}
