package refine

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// CountTokens counts text in model tokens. When the encoding cannot be
// loaded it falls back to EstimateTokens.
func CountTokens(text string) int {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(tokenEncoding)
	})
	if encErr != nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokens approximates a token count at four characters per token.
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
