package prompt

import (
	"strings"

	"github.com/abdulachik/panelforge/internal/record"
)

// knowledgeInstruction asks the image model to draw on what it knows about a
// real place before any visual override.
const knowledgeInstruction = "depicted as the actual place from knowledge of how it really looks"

// LocationClauses renders a location's identity and physical details.
//
// A real place leads with its name and city/country, then the knowledge
// instruction, then what it is known for. A fictional place leads with its
// given name, then its type and setting. Physical details follow in both
// cases.
func LocationClauses(loc record.Location) []Clause {
	var out []Clause
	add := func(rank int, texts ...string) {
		for _, t := range texts {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, Clause{Text: t, Rank: rank})
			}
		}
	}
	v := record.Value
	a := loc.Attributes
	name := strings.TrimSpace(loc.Name)

	if a.IsRealPlace {
		add(rankLocationIdentity, name, placeIdentity(name, a.RealPlace))
		add(rankKnowledge, knowledgeInstruction)
		if a.RealPlace.KnownFor != nil {
			add(rankLocationDetail, "known for "+*a.RealPlace.KnownFor)
		}
	} else {
		add(rankLocationIdentity, name)
		if lt := v(a.LocationType); !strings.EqualFold(lt, name) {
			add(rankLocationDetail, lt)
		}
		add(rankLocationDetail, v(a.Setting))
	}

	add(rankLocationDetail, v(a.Architecture), v(a.Terrain), v(a.Vegetation))
	add(rankLocationDetail, a.ProminentFeatures...)
	if a.Scale != "" {
		add(rankLocationDetail, string(a.Scale)+" scale")
	}
	add(rankLocationDetail, v(a.Condition))
	if a.CrowdLevel != "" {
		add(rankLocationDetail, crowdText(a.CrowdLevel))
	}
	add(rankLocationDetail, v(a.CulturalContext))
	return out
}

// VisualClauses renders the visual-detail clauses of a location: time of
// day, weather, lighting, atmosphere, palette and soundscape.
func VisualClauses(a record.LocationRecord) []Clause {
	var out []Clause
	add := func(texts ...string) {
		for _, t := range texts {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, Clause{Text: t, Rank: rankAtmosphere})
			}
		}
	}
	if a.TimeOfDay != "" {
		add("at " + string(a.TimeOfDay))
	}
	add(record.Value(a.Weather), record.Value(a.Lighting), record.Value(a.Atmosphere))
	if a.ColorPalette != nil {
		add(*a.ColorPalette + " palette")
	}
	add(record.Value(a.Soundscape))
	return out
}

// placeIdentity joins the real-place fields that are not already the name.
func placeIdentity(name string, info record.RealPlaceInfo) string {
	var parts []string
	for _, p := range []*string{info.SpecificLocation, info.Landmark, info.City, info.Region, info.Country} {
		if p == nil || strings.EqualFold(*p, name) {
			continue
		}
		parts = append(parts, *p)
	}
	return strings.Join(parts, ", ")
}

func crowdText(c record.CrowdLevel) string {
	switch c {
	case record.CrowdEmpty:
		return "empty of people"
	case record.CrowdSparse:
		return "a few people about"
	case record.CrowdModerate:
		return "moderately busy"
	case record.CrowdCrowded:
		return "crowded"
	case record.CrowdPacked:
		return "packed with people"
	}
	return string(c)
}
