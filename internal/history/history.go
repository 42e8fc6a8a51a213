// Package history keeps the per-session record of composed panels and renders
// the continuity text fed into the next panel's prompt.
package history

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBudget is the maximum rendered length in characters.
	DefaultBudget = 2000

	// DefaultDepth renders only the immediately preceding panel.
	DefaultDepth = 1

	// DefaultCapacity is how many entries are retained.
	DefaultCapacity = 32

	// TruncationMarker ends any rendering cut to fit the budget.
	TruncationMarker = " [...]"
)

// Entry records one composed panel.
type Entry struct {
	PanelNumber    int     `json:"panel_number"`
	Action         string  `json:"action"`
	SubjectSummary *string `json:"subject_summary,omitempty"`
}

func (e Entry) render() string {
	action := strings.Join(strings.Fields(e.Action), " ")
	if e.SubjectSummary != nil && *e.SubjectSummary != "" {
		return fmt.Sprintf("Previously in panel %d, %s: %s", e.PanelNumber, *e.SubjectSummary, action)
	}
	return fmt.Sprintf("Previously in panel %d: %s", e.PanelNumber, action)
}

// Window is an append-only history with a bounded rendering.
// It is owned by a single session and is not safe for concurrent use.
type Window struct {
	entries  []Entry
	budget   int
	depth    int
	capacity int
}

// Option configures a Window.
type Option func(*Window)

// WithBudget sets the rendered character budget. Values too small to hold
// the truncation marker are ignored.
func WithBudget(n int) Option {
	return func(w *Window) {
		if n > utf8.RuneCountInString(TruncationMarker) {
			w.budget = n
		}
	}
}

// WithDepth sets how many of the most recent entries are rendered.
func WithDepth(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.depth = n
		}
	}
}

// WithCapacity sets how many entries are retained.
func WithCapacity(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// New creates an empty Window.
func New(opts ...Option) *Window {
	w := &Window{
		budget:   DefaultBudget,
		depth:    DefaultDepth,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.capacity < w.depth {
		w.capacity = w.depth
	}
	return w
}

// Budget returns the configured character budget.
func (w *Window) Budget() int {
	return w.budget
}

// Depth returns how many entries are rendered.
func (w *Window) Depth() int {
	return w.depth
}

// Append records a panel, evicting the oldest entry beyond capacity.
func (w *Window) Append(e Entry) {
	w.entries = append(w.entries, e)
	if over := len(w.entries) - w.capacity; over > 0 {
		w.entries = append(w.entries[:0:0], w.entries[over:]...)
	}
}

// Len returns the number of retained entries.
func (w *Window) Len() int {
	return len(w.entries)
}

// Entries returns a copy of the retained entries, oldest first.
func (w *Window) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Last returns the most recent entry.
func (w *Window) Last() (Entry, bool) {
	if len(w.entries) == 0 {
		return Entry{}, false
	}
	return w.entries[len(w.entries)-1], true
}

// Reset drops all entries.
func (w *Window) Reset() {
	w.entries = nil
}

// RenderContext renders the most recent depth entries, oldest first. When the
// result exceeds the budget it is cut to a prefix ending in TruncationMarker.
// An empty window renders "".
func (w *Window) RenderContext() string {
	if len(w.entries) == 0 {
		return ""
	}

	start := len(w.entries) - w.depth
	if start < 0 {
		start = 0
	}

	parts := make([]string, 0, len(w.entries)-start)
	for _, e := range w.entries[start:] {
		parts = append(parts, e.render())
	}

	return truncate(strings.Join(parts, " "), w.budget)
}

// truncate cuts text to at most budget characters including the marker,
// preferring a word boundary when one is reasonably close.
func truncate(text string, budget int) string {
	if utf8.RuneCountInString(text) <= budget {
		return text
	}

	keep := budget - utf8.RuneCountInString(TruncationMarker)
	runes := []rune(text)
	cut := string(runes[:keep])

	if lastSpace := strings.LastIndex(cut, " "); lastSpace > len(cut)/2 {
		cut = cut[:lastSpace]
	}

	return strings.TrimRight(cut, " .,;:") + TruncationMarker
}
