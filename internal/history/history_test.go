package history

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNew_Defaults(t *testing.T) {
	w := New()
	assert.Equal(t, DefaultBudget, w.Budget())
	assert.Equal(t, DefaultDepth, w.Depth())
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, "", w.RenderContext())
}

func TestNew_IgnoresInvalidOptions(t *testing.T) {
	w := New(WithBudget(3), WithDepth(0), WithCapacity(-1))
	assert.Equal(t, DefaultBudget, w.Budget())
	assert.Equal(t, DefaultDepth, w.Depth())
}

func TestRenderContext_MostRecentOnly(t *testing.T) {
	w := New()
	w.Append(Entry{PanelNumber: 1, Action: "Mara opens the door"})
	w.Append(Entry{PanelNumber: 2, Action: "Theo drops the lantern"})

	got := w.RenderContext()
	assert.Equal(t, "Previously in panel 2: Theo drops the lantern", got)
	assert.NotContains(t, got, "Mara")
}

func TestRenderContext_DependsOnlyOnLastEntry(t *testing.T) {
	a := New()
	b := New()
	for i := 1; i <= 4; i++ {
		a.Append(Entry{PanelNumber: i, Action: strings.Repeat("a", i*10)})
	}
	b.Append(Entry{PanelNumber: 99, Action: "unrelated"})

	last := Entry{PanelNumber: 5, Action: "the final beat"}
	a.Append(last)
	b.Append(last)

	assert.Equal(t, a.RenderContext(), b.RenderContext())
	assert.Equal(t, 5, a.Len(), "full history is retained")
}

func TestRenderContext_WithSubjectSummary(t *testing.T) {
	w := New()
	w.Append(Entry{PanelNumber: 3, Action: "turns  toward\nthe window", SubjectSummary: ptr("Mara")})
	assert.Equal(t, "Previously in panel 3, Mara: turns toward the window", w.RenderContext())
}

func TestRenderContext_Truncation(t *testing.T) {
	// Four short entries and one long one, 5000 characters in total.
	w := New()
	for i := 1; i <= 4; i++ {
		w.Append(Entry{PanelNumber: i, Action: strings.Repeat("x", 625)})
	}
	long := strings.Repeat("word ", 500)
	w.Append(Entry{PanelNumber: 5, Action: long})

	got := w.RenderContext()

	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultBudget)
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
	assert.True(t, strings.HasPrefix(got, "Previously in panel 5: word word"))
	assert.NotContains(t, got, "xxx")
}

func TestRenderContext_BudgetInvariant(t *testing.T) {
	budgets := []int{10, 50, 200, 2000}
	actions := []string{"", "short", strings.Repeat("lorem ipsum ", 400), strings.Repeat("é", 3000)}

	for _, budget := range budgets {
		for _, action := range actions {
			w := New(WithBudget(budget))
			w.Append(Entry{PanelNumber: 1, Action: action})
			got := w.RenderContext()
			assert.LessOrEqual(t, utf8.RuneCountInString(got), budget)
		}
	}
}

func TestRenderContext_WiderDepth(t *testing.T) {
	w := New(WithDepth(2))
	w.Append(Entry{PanelNumber: 1, Action: "one"})
	w.Append(Entry{PanelNumber: 2, Action: "two"})
	w.Append(Entry{PanelNumber: 3, Action: "three"})

	assert.Equal(t, "Previously in panel 2: two Previously in panel 3: three", w.RenderContext())
}

func TestAppend_CapacityEvictsOldest(t *testing.T) {
	w := New(WithCapacity(3))
	for i := 1; i <= 5; i++ {
		w.Append(Entry{PanelNumber: i, Action: "beat"})
	}

	entries := w.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].PanelNumber)
	assert.Equal(t, 5, entries[2].PanelNumber)

	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last.PanelNumber)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	w := New()
	w.Append(Entry{PanelNumber: 1, Action: "beat"})

	entries := w.Entries()
	entries[0].Action = "changed"

	last, _ := w.Last()
	assert.Equal(t, "beat", last.Action)
}

func TestReset(t *testing.T) {
	w := New()
	w.Append(Entry{PanelNumber: 1, Action: "beat"})
	w.Reset()

	assert.Equal(t, 0, w.Len())
	assert.Equal(t, "", w.RenderContext())
	_, ok := w.Last()
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	t.Run("fits unchanged", func(t *testing.T) {
		assert.Equal(t, "short text", truncate("short text", 100))
	})

	t.Run("cuts on word boundary", func(t *testing.T) {
		got := truncate("alpha beta gamma delta epsilon", 20)
		assert.Equal(t, "alpha beta"+TruncationMarker, got)
	})
}
