package library

import (
	"strings"
	"testing"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestHitFromPayload(t *testing.T) {
	tests := []struct {
		name    string
		content string
		payload map[string]any
		want    Hit
	}{
		{
			name: "full payload",
			payload: map[string]any{
				"kind": "character", "db_id": "2abc", "name": "Mara", "text": "Mara: tall",
			},
			want: Hit{Kind: KindCharacter, ID: "2abc", Name: "Mara", Text: "Mara: tall", Similarity: 0.8},
		},
		{
			name:    "falls back to content",
			content: "Harbor: fog",
			payload: map[string]any{"kind": "location", "name": "Harbor"},
			want:    Hit{Kind: KindLocation, Name: "Harbor", Text: "Harbor: fog", Similarity: 0.8},
		},
		{
			name:    "nil payload",
			content: "x",
			want:    Hit{Text: "x", Similarity: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hitFromPayload(0.8, tt.content, tt.payload))
		})
	}
}

func TestCharacterText(t *testing.T) {
	t.Run("uses description", func(t *testing.T) {
		c := db.Character{Subject: record.Subject{Name: "Mara", Description: " tall, red hair "}}
		assert.Equal(t, "Mara: tall, red hair", CharacterText(c))
	})

	t.Run("composes attributes without description", func(t *testing.T) {
		c := db.Character{Subject: record.Subject{
			Name:       "Mara",
			Attributes: record.AttributeRecord{Kind: record.KindHuman, Hair: str("red hair")},
		}}
		text := CharacterText(c)
		assert.True(t, strings.HasPrefix(text, "Mara"), text)
		assert.Contains(t, text, "red hair")
	})
}

func TestLocationText(t *testing.T) {
	l := db.StoredLocation{Location: record.Location{
		Name:       "Harbor",
		Attributes: record.LocationRecord{Weather: str("fog")},
	}}
	text := LocationText(l)
	assert.True(t, strings.HasPrefix(text, "Harbor"), text)
	assert.Contains(t, text, "fog")
}
