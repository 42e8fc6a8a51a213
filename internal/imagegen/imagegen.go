// Package imagegen turns assembled prompts into panel images.
package imagegen

import (
	"context"
	"errors"
	"math"
)

const (
	// MinStrength and MaxStrength bound how strongly a reference image
	// steers generation.
	MinStrength = 0.2
	MaxStrength = 0.6

	// DefaultStrength is used when a request leaves strength unset.
	DefaultStrength = 0.4
)

// ErrNoImage is returned when the model answers without image data.
var ErrNoImage = errors.New("no image data in response")

// ErrBlocked is returned when the model refuses the prompt.
var ErrBlocked = errors.New("image generation blocked")

// Request is one panel image to generate.
type Request struct {
	Prompt      string
	Reference   []byte
	Strength    float64
	AspectRatio string
}

// Result holds generated image bytes.
type Result struct {
	Data     []byte
	MIMEType string
	Model    string
}

// Generator produces an image for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// ClampStrength keeps a strength within [MinStrength, MaxStrength]. Zero
// and NaN map to DefaultStrength.
func ClampStrength(s float64) float64 {
	if s == 0 || math.IsNaN(s) {
		return DefaultStrength
	}
	return math.Min(MaxStrength, math.Max(MinStrength, s))
}
