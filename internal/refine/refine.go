// Package refine asks a language model to polish an assembled prompt.
//
// Refinement is optional: callers keep the assembled text whenever the
// refiner is absent or fails.
package refine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/invopop/jsonschema"
)

// ErrEmptyRefinement is returned when the model answers with no prompt.
var ErrEmptyRefinement = errors.New("empty refinement")

// Request carries the assembled draft and the material it came from.
type Request struct {
	Grammar  prompt.Grammar
	Draft    string
	Sections []prompt.Section
	Scene    prompt.Scene
}

// Refiner rewrites an assembled prompt.
type Refiner interface {
	Refine(ctx context.Context, req Request) (string, error)
}

// Output is the structured answer requested from the model.
type Output struct {
	Prompt string `json:"prompt" jsonschema:"description=The refined image prompt in the requested layout"`
	Notes  string `json:"notes" jsonschema:"description=One sentence on what was changed"`
}

// OutputSchema is the JSON schema sent as the response format.
var OutputSchema = generateSchema[Output]()

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// ParseOutput decodes the model answer, tolerating prose around the JSON.
func ParseOutput(response string) (Output, error) {
	var out Output
	if err := json.Unmarshal([]byte(response), &out); err != nil {
		raw, err := extractJSONObject(response)
		if err != nil {
			return Output{}, fmt.Errorf("parse response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Output{}, fmt.Errorf("parse extracted JSON: %w", err)
		}
	}

	out.Prompt = strings.TrimSpace(out.Prompt)
	if out.Prompt == "" {
		return Output{}, ErrEmptyRefinement
	}
	return out, nil
}

// extractJSONObject finds the first balanced JSON object in a response that
// may contain other text. Braces inside strings are ignored.
func extractJSONObject(response string) (string, error) {
	start := strings.IndexByte(response, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return response[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("malformed JSON object in response")
}
