package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

const defaultModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAI refiner.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// TokenCounter sizes the completion budget. Defaults to CountTokens.
	TokenCounter func(string) int
}

// OpenAIRefiner refines prompts with an OpenAI chat model using structured
// outputs.
type OpenAIRefiner struct {
	client *openai.Client
	model  string
	count  func(string) int
}

// NewOpenAIRefiner creates a new refiner.
func NewOpenAIRefiner(cfg OpenAIConfig) *OpenAIRefiner {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	count := cfg.TokenCounter
	if count == nil {
		count = CountTokens
	}

	return &OpenAIRefiner{client: &client, model: model, count: count}
}

// Refine sends the draft and returns the refined prompt text.
func (r *OpenAIRefiner) Refine(ctx context.Context, req Request) (string, error) {
	user := userPrompt(req)

	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: param.Opt[string]{Value: SystemPrompt},
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: param.Opt[string]{Value: user},
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(budgetHint(r.count(req.Draft), req.Grammar)),
		Temperature:         openai.Float(0.2),
		ResponseFormat:      responseFormat(),
	}

	slog.Debug("refining prompt", "model", r.model, "grammar", req.Grammar.Name)

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai refine: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}

	out, err := ParseOutput(resp.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	if out.Notes != "" {
		slog.Debug("refinement notes", "notes", out.Notes)
	}
	return out.Prompt, nil
}

func responseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "refined_prompt",
		Description: openai.String("A refined storyboard image prompt"),
		Schema:      OutputSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
