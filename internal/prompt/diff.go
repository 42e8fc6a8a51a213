package prompt

import (
	"strings"

	"github.com/aryann/difflib"
)

// Op is a word diff operation.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) String() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	}
	return " "
}

// WordDelta is a run of words sharing one operation.
type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// DiffWords compares two prompts word by word, coalescing adjacent words
// with the same operation. It is used to show what a refiner changed.
func DiffWords(a, b string) []WordDelta {
	recs := difflib.Diff(strings.Fields(a), strings.Fields(b))

	var out []WordDelta
	for _, r := range recs {
		op := Equal
		switch r.Delta {
		case difflib.LeftOnly:
			op = Delete
		case difflib.RightOnly:
			op = Insert
		}
		if n := len(out); n > 0 && out[n-1].Op == op {
			out[n-1].Text += " " + r.Payload
			continue
		}
		out = append(out, WordDelta{Op: op, Text: r.Payload})
	}
	return out
}

// FormatDiff renders deltas as "[-removed-]" and "{+added+}" inline markup.
func FormatDiff(deltas []WordDelta) string {
	parts := make([]string, 0, len(deltas))
	for _, d := range deltas {
		switch d.Op {
		case Delete:
			parts = append(parts, "[-"+d.Text+"-]")
		case Insert:
			parts = append(parts, "{+"+d.Text+"+}")
		default:
			parts = append(parts, d.Text)
		}
	}
	return strings.Join(parts, " ")
}
