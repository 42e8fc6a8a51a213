package refine

import (
	"fmt"
	"strings"

	"github.com/abdulachik/panelforge/internal/prompt"
)

// SystemPrompt is the system prompt for refinement.
const SystemPrompt = `You are a storyboard prompt editor. You receive a draft image prompt for one comic panel and return an improved version of it.

Rules:
1. KEEP LAYOUT: if the draft uses labeled lines, keep every label, in the same order, one per line
2. KEEP FACTS: every character name, the action and the location must survive unchanged in meaning
3. KEEP ORDER: character attributes stay in the order given, the first ones matter most
4. FIXED LINES: copy STYLE and DO NOT INCLUDE lines verbatim
5. LENGTH: never exceed the stated budget
6. VOCABULARY: never introduce photorealism words such as realistic, detailed, textured, rendered or photographic

Respond with a JSON object containing "prompt" and "notes".`

// RefinePrompt is the user prompt template for refinement.
const RefinePrompt = `Grammar: %s
Budget: at most %d %s
Characters: %s

Draft:
---
%s
---`

func userPrompt(req Request) string {
	names := make([]string, 0, len(req.Scene.Subjects))
	for _, s := range req.Scene.Subjects {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	cast := "none"
	if len(names) > 0 {
		cast = strings.Join(names, ", ")
	}
	return fmt.Sprintf(RefinePrompt, req.Grammar.Name, req.Grammar.MaxLength, req.Grammar.Unit, cast, req.Draft)
}

// budgetHint is how much output to allow for a draft of n tokens.
func budgetHint(n int, g prompt.Grammar) int64 {
	limit := int64(n*2 + 256)
	if g.Unit == prompt.UnitWords {
		limit = max(limit, int64(g.MaxLength*3))
	}
	return limit
}
