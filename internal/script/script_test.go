package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_PanelHeadings(t *testing.T) {
	text := `# The Lighthouse, draft 2
PAGE 1
PANEL 1: [wide shot, high angle] The lighthouse stands
  against a grey sea.
PANEL 2:
Mara climbs the spiral stairs.

Page 2, panel 1 - [close-up] Mara finds the lamp shattered.
PANEL 2.
`

	beats := Split(text)
	require.Len(t, beats, 3)

	assert.Equal(t, 1, beats[0].Number)
	assert.Equal(t, 1, beats[0].Page)
	assert.Equal(t, "PANEL 1", beats[0].Heading)
	assert.Equal(t, "The lighthouse stands against a grey sea.", beats[0].Action)
	assert.Equal(t, &prompt.Camera{Shot: "wide shot", Angle: "high angle"}, beats[0].Camera)
	assert.Equal(t, 2, beats[0].StartLine)

	assert.Equal(t, 2, beats[1].Number)
	assert.Equal(t, "Mara climbs the spiral stairs.", beats[1].Action)
	assert.Nil(t, beats[1].Camera)
	assert.Equal(t, 5, beats[1].WordCount)

	assert.Equal(t, 3, beats[2].Number)
	assert.Equal(t, 2, beats[2].Page)
	assert.Equal(t, "Page 2, panel 1", beats[2].Heading)
	assert.Equal(t, "Mara finds the lamp shattered.", beats[2].Action)
	assert.Equal(t, "close-up", beats[2].Camera.Shot)
}

func TestSplit_Paragraphs(t *testing.T) {
	text := "Mara opens the door.\n\n\n[medium shot, eye level, subject left] Theo looks up\nfrom his desk.\n\n# note to self\n\nThey stare."

	beats := Split(text)
	require.Len(t, beats, 3)

	for i, b := range beats {
		assert.Equal(t, i+1, b.Number)
	}
	assert.Equal(t, "Mara opens the door.", beats[0].Action)
	assert.Equal(t, "Theo looks up from his desk.", beats[1].Action)
	assert.Equal(t, &prompt.Camera{Shot: "medium shot", Angle: "eye level", Composition: "subject left"}, beats[1].Camera)
	assert.Equal(t, 3, beats[1].StartLine)
	assert.Equal(t, "They stare.", beats[2].Action)
}

func TestSplit_NumbersSequentially(t *testing.T) {
	text := "PANEL 7: one\nPANEL 3: two\nPANEL 3: three"

	beats := Split(text)
	require.Len(t, beats, 3)
	for i, b := range beats {
		assert.Equal(t, i+1, b.Number)
	}
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("\n\n# only a comment\n"))
	assert.Empty(t, Split("PANEL 1:\n[close-up]\n"))
}

func TestSplitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("PANEL 1: Mara waves.\nPANEL 2: Theo waves back."), 0644))

	beats, err := SplitFile(path)
	require.NoError(t, err)
	require.Len(t, beats, 2)
	assert.Equal(t, "Theo waves back.", beats[1].Action)

	_, err = SplitFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestMentions(t *testing.T) {
	names := []string{"Mara", "Theo", "Old Sam", ""}

	assert.Equal(t, []string{"Mara", "Old Sam"}, Mentions("mara hands OLD SAM the key", names))
	assert.Empty(t, Mentions("Theodore waits", names))
	assert.Empty(t, Mentions(strings.Repeat(" ", 3), names))
}
