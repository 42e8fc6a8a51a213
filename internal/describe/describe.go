// Package describe turns reference images into the natural-language
// descriptions the extractor reads.
package describe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Target is what the image shows.
type Target string

const (
	TargetCharacter Target = "character"
	TargetLocation  Target = "location"
)

// ParseTarget maps a name to a Target, defaulting to character.
func ParseTarget(s string) Target {
	if strings.EqualFold(strings.TrimSpace(s), string(TargetLocation)) {
		return TargetLocation
	}
	return TargetCharacter
}

// Image is raw image bytes. An empty MIMEType is sniffed from the data.
type Image struct {
	Data     []byte
	MIMEType string
}

func (img Image) mimeType() string {
	if img.MIMEType != "" {
		return img.MIMEType
	}
	return http.DetectContentType(img.Data)
}

// Describer returns a single description string for an image.
type Describer interface {
	Describe(ctx context.Context, img Image, target Target) (string, error)
}

var (
	// ErrContentPolicyBlocked means the service refused the image. Callers
	// should ask for manual field entry rather than retry.
	ErrContentPolicyBlocked = errors.New("description blocked by content policy")

	// ErrTransient covers rate limits and network failures. Callers may
	// retry with backoff.
	ErrTransient = errors.New("transient description failure")

	// ErrEmptyImage is returned for an image with no data.
	ErrEmptyImage = errors.New("empty image")
)

// Failure is the classified outcome of a describer error.
type Failure int

const (
	FailureNone Failure = iota
	FailureBlocked
	FailureTransient
	FailureUnknown
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureBlocked:
		return "content_policy_blocked"
	case FailureTransient:
		return "transient"
	}
	return "unknown"
}

// Classify maps a describer error onto the failure taxonomy.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrContentPolicyBlocked) {
		return FailureBlocked
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureTransient
	}
	return FailureUnknown
}

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= 500
}
