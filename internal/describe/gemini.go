package describe

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// ContentGenerator is the part of the genai Models service used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiDescriber describes images with a Gemini multimodal model.
type GeminiDescriber struct {
	models ContentGenerator
	model  string
}

// NewGeminiDescriber creates a describer on top of a genai Models service.
func NewGeminiDescriber(models ContentGenerator, model string) (*GeminiDescriber, error) {
	if models == nil {
		return nil, fmt.Errorf("content generator is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiDescriber{models: models, model: model}, nil
}

// Describe sends the image with the target's prompt and returns the text.
func (g *GeminiDescriber) Describe(ctx context.Context, img Image, target Target) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: img.mimeType(), Data: img.Data}},
		{Text: promptFor(target)},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", classifyGeminiError(err))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrContentPolicyBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 {
		switch resp.Candidates[0].FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
			return "", fmt.Errorf("%w: %s", ErrContentPolicyBlocked, resp.Candidates[0].FinishReason)
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from API")
	}
	return text, nil
}

// classifyGeminiError marks quota and availability errors as transient.
func classifyGeminiError(err error) error {
	msg := err.Error()
	for _, marker := range []string{"429", "RESOURCE_EXHAUSTED", "503", "UNAVAILABLE", "500", "INTERNAL", "DEADLINE_EXCEEDED"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}
	return err
}
