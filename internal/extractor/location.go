package extractor

import (
	"regexp"
	"strings"

	"github.com/abdulachik/panelforge/internal/record"
)

type locRule = fieldRule[record.LocationRecord]
type locList = listRule[record.LocationRecord]

var (
	placeMarker = re(`\bLOCATION_TYPE\s*:\s*(real|fictional|fictitious|imaginary|fantasy|invented)\b`)

	paletteWords = []string{
		"warm", "cool", "cold", "muted", "pastel", "earthy", "vibrant", "desaturated",
		"monochrome", "monochromatic", "sepia", "neon", "dark", "bright", "soft", "rich", "faded",
		"golden", "amber", "blue", "red", "green", "orange", "purple", "teal", "grey", "gray",
		"brown", "ochre", "crimson", "pink", "silver", "black", "white",
	}
)

// ExtractLocation parses a location description into a LocationRecord.
//
// A "LOCATION_TYPE: real|fictional" marker decides IsRealPlace. Without it a
// place counts as real when a city or country is stated.
func ExtractLocation(description string) record.LocationRecord {
	var rec record.LocationRecord

	body := description
	marked := false
	if m := placeMarker.FindStringSubmatchIndex(body); m != nil {
		rec.IsRealPlace = strings.EqualFold(body[m[2]:m[3]], "real")
		body = body[:m[0]] + body[m[1]:]
		marked = true
	}

	for _, r := range locationRules {
		if v, ok := firstMatch(r.patterns, body); ok {
			r.set(&rec, v)
		}
	}
	for _, r := range locationLists {
		for _, v := range allMatches(r.patterns, body) {
			r.add(&rec, v)
		}
	}

	if !marked && (rec.RealPlace.City != nil || rec.RealPlace.Country != nil) {
		rec.IsRealPlace = true
	}
	return rec
}

// LocationRules lists the location rule table in evaluation order.
func LocationRules() []RuleInfo {
	out := make([]RuleInfo, 0, len(locationRules)+len(locationLists))
	for _, r := range locationRules {
		out = append(out, RuleInfo{Field: r.field, Scope: r.scope.String(), Patterns: len(r.patterns)})
	}
	for _, r := range locationLists {
		out = append(out, RuleInfo{Field: r.field, Scope: r.scope.String(), Patterns: len(r.patterns), List: true})
	}
	return out
}

var locationRules = []locRule{
	{
		field:    "city",
		patterns: []*regexp.Regexp{label("city", "town")},
		set:      func(r *record.LocationRecord, v string) { r.RealPlace.City = record.Text(v) },
	},
	{
		field:    "country",
		patterns: []*regexp.Regexp{label("country", "nation")},
		set:      func(r *record.LocationRecord, v string) { r.RealPlace.Country = record.Text(v) },
	},
	{
		field:    "region",
		patterns: []*regexp.Regexp{label("region", "state", "province", "prefecture")},
		set:      func(r *record.LocationRecord, v string) { r.RealPlace.Region = record.Text(v) },
	},
	{
		field:    "specific_location",
		patterns: []*regexp.Regexp{label("specific location", "address", "district", "neighbou?rhood", "area")},
		set:      func(r *record.LocationRecord, v string) { r.RealPlace.SpecificLocation = record.Text(v) },
	},
	{
		field:    "landmark",
		patterns: []*regexp.Regexp{label("landmark", "nearby landmark")},
		set:      func(r *record.LocationRecord, v string) { r.RealPlace.Landmark = record.Text(v) },
	},
	{
		field: "known_for",
		patterns: []*regexp.Regexp{
			label("known for", "famous for"),
			re(`\b(?:famous|known|renowned|celebrated)\s+for\s+(?:its\s+|their\s+)?([^.;|\n]+)`),
		},
		set: func(r *record.LocationRecord, v string) { r.RealPlace.KnownFor = record.Text(v) },
	},
	{
		field: "location_type",
		patterns: []*regexp.Regexp{
			label("place type", "type of place", "venue", "place"),
			re(`\b((?:` + alt(
				"old", "abandoned", "busy", "quiet", "small", "large", "dark", "crowded", "empty",
				"ancient", "modern", "cozy", "cosy", "narrow", "wide", "dusty", "grand", "ruined",
				"rainy", "neon-lit", "sunlit", "underground", "medieval", "futuristic", "rustic",
				"local", "cluttered", "dimly-lit", "high-school", "city", "village", "royal",
				"secret", "hidden", "public", "private", "night", "open-air", "wooden", "stone",
			) + `[\s-]+){0,2}` + alt(
				"coffee shop", "train station", "space station", "throne room", "living room",
				"cafe", "library", "street", "alleyway", "alley", "forest", "beach", "castle",
				"office", "bedroom", "kitchen", "classroom", "marketplace", "market", "temple",
				"shrine", "church", "cathedral", "station", "subway", "park", "garden", "bar", "pub",
				"tavern", "restaurant", "apartment", "warehouse", "factory", "laboratory", "hospital",
				"school", "rooftop", "bridge", "harbor", "harbour", "port", "desert", "mountain",
				"cave", "village", "city", "town", "plaza", "square", "dungeon", "spaceship", "mall",
				"stadium", "museum", "hallway", "corridor", "courtyard", "field", "meadow", "lake",
				"river", "island", "palace", "tower", "ruins",
			) + `)\b(?:\s*[^:\s]|\s*$)`),
		},
		set: func(r *record.LocationRecord, v string) { r.LocationType = record.Text(v) },
	},
	{
		field: "setting",
		patterns: []*regexp.Regexp{
			label("setting"),
			re(`\b((?:urban|rural|suburban|indoor|outdoor|interior|exterior|underwater|outer space|fantasy|sci-fi|science fiction|post-apocalyptic|steampunk|cyberpunk|contemporary|historical)(?:\s+(?:setting|environment|world|scene))?)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Setting = record.Text(v) },
	},
	{
		field: "time_of_day",
		patterns: []*regexp.Regexp{
			label("time of day", "time"),
			re(`\b(dawn|sunrise|daybreak)\b`),
			re(`\b(morning)\b`),
			re(`\b(noon|midday)\b`),
			re(`\b(afternoon)\b`),
			re(`\b(sunset|dusk|twilight|golden hour)\b`),
			re(`\b(evening)\b`),
			re(`\b(night|midnight|nighttime|night-time|moonlit|moonlight)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.TimeOfDay = timeOfDayFor(v) },
	},
	{
		field: "weather",
		patterns: []*regexp.Regexp{
			label("weather"),
			re(`\b((?:(?:light|heavy|pouring|steady|gentle|torrential|drizzling|falling)\s+)?(?:rain|rainy|raining|snow|snowy|snowing|fog|foggy|mist|misty|storm|stormy|thunderstorm|overcast|cloudy|clear skies|clear sky|sunny|windy|hail|drizzle|blizzard|sandstorm|humid|hazy))\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Weather = record.Text(v) },
	},
	{
		field: "lighting",
		patterns: []*regexp.Regexp{
			label("lighting", "light"),
			phrase([]string{
				"soft", "harsh", "dim", "warm", "cool", "cold", "golden", "neon", "natural", "moody",
				"dramatic", "flickering", "candle", "fluorescent", "ambient", "diffused", "dappled",
				"bright", "low", "pale", "blue", "red", "amber", "overhead", "volumetric", "morning",
				"evening", "street",
			}, 2, "lighting", "light", "lights", "glow", "illumination", "shadows"),
			re(`\b(candlelit|moonlit|sunlit|neon-lit|dimly lit|brightly lit|lamplit|firelit)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Lighting = record.Text(v) },
	},
	{
		field: "atmosphere",
		patterns: []*regexp.Regexp{
			label("atmosphere", "mood"),
			re(`\b((?:eerie|peaceful|bustling|tense|serene|gloomy|cozy|cosy|mysterious|romantic|chaotic|somber|sombre|festive|melancholic|ominous|tranquil|lively|desolate|oppressive|dreamy|nostalgic|calm|foreboding|whimsical)(?:\s+(?:atmosphere|mood|feel|ambience|ambiance|air|vibe))?)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Atmosphere = record.Text(v) },
	},
	{
		field: "architecture",
		patterns: []*regexp.Regexp{
			label("architecture"),
			phrase([]string{
				"art deco", "gothic", "baroque", "modern", "modernist", "brutalist", "victorian",
				"medieval", "futuristic", "colonial", "classical", "industrial", "traditional",
				"japanese", "chinese", "islamic", "roman", "greek", "georgian", "tudor", "rustic",
				"minimalist", "soviet", "neoclassical", "renaissance", "ornate", "wooden", "stone",
				"brick", "glass", "concrete",
			}, 2, "architecture", "buildings", "building", "facades", "facade", "houses", "towers", "arches", "columns"),
		},
		set: func(r *record.LocationRecord, v string) { r.Architecture = record.Text(v) },
	},
	{
		field: "terrain",
		patterns: []*regexp.Regexp{
			label("terrain", "landscape"),
			phrase([]string{
				"mountainous", "hilly", "flat", "rocky", "sandy", "muddy", "rolling", "rugged",
				"snowy", "icy", "marshy", "swampy", "volcanic", "grassy", "barren", "steep",
				"cobblestone", "cobbled", "dirt", "gravel", "paved", "wet",
			}, 2, "terrain", "landscape", "hills", "ground", "plains", "plain", "dunes", "slopes", "cliffs", "streets", "street", "paths", "roads", "road"),
		},
		set: func(r *record.LocationRecord, v string) { r.Terrain = record.Text(v) },
	},
	{
		field: "vegetation",
		patterns: []*regexp.Regexp{
			label("vegetation", "plants"),
			phrase([]string{
				"dense", "lush", "sparse", "tall", "overgrown", "dead", "withered", "tropical",
				"pine", "oak", "cherry", "palm", "flowering", "thick", "wild", "potted", "hanging",
				"bamboo", "autumn",
			}, 2, "forest", "trees", "vegetation", "foliage", "grass", "plants", "vines", "jungle",
				"undergrowth", "shrubs", "bushes", "flowers", "blossoms", "moss", "ivy", "ferns"),
		},
		set: func(r *record.LocationRecord, v string) { r.Vegetation = record.Text(v) },
	},
	{
		field: "color_palette",
		patterns: []*regexp.Regexp{
			label("colou?r palette", "palette", "colou?rs"),
			re(`\b((?:` + alt(paletteWords...) + `[\s,-]+(?:and\s+)?){1,4}(?:colou?r palette|palette|tones|hues|colou?r scheme))\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.ColorPalette = record.Text(v) },
	},
	{
		field: "scale",
		patterns: []*regexp.Regexp{
			label("scale"),
			re(`\b(cramped|tiny|claustrophobic|intimate)\b`),
			re(`\b(small|compact|modest)\s+(?:room|space|shop|cafe|apartment|building|village|town)\b`),
			re(`\b(medium-sized|mid-sized|moderately sized)\b`),
			re(`\b(large|spacious|big|sizable|grand)\s+(?:room|hall|space|building|square|plaza|warehouse|city)\b`),
			re(`\b(vast|expansive|sprawling|endless|immense|huge|enormous|boundless|panoramic)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Scale = scaleFor(v) },
	},
	{
		field: "condition",
		patterns: []*regexp.Regexp{
			label("condition"),
			re(`\b(ruined|abandoned|pristine|dilapidated|well-kept|well-maintained|crumbling|weathered|derelict|run-down|rundown|decrepit|immaculate|dusty|neglected|renovated|worn|damaged|burned|flooded|brand-new|spotless)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Condition = record.Text(v) },
	},
	{
		field: "crowd_level",
		patterns: []*regexp.Regexp{
			label("crowd", "crowd level"),
			re(`\b(packed|thronged|jam-packed|teeming)\b`),
			re(`\b(crowded|bustling|busy|full of people)\b`),
			re(`\b(moderately busy|some people|several people|a handful of people)\b`),
			re(`\b(sparsely populated|sparse|few people|a few people|scattered people|nearly empty)\b`),
			re(`\b(empty|deserted|abandoned|desolate|unpopulated|no one|nobody|vacant)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.CrowdLevel = crowdFor(v) },
	},
	{
		field: "soundscape",
		patterns: []*regexp.Regexp{
			label("soundscape", "sounds?"),
			phrase([]string{
				"distant", "faint", "soft", "loud", "constant", "muffled", "echoing", "rhythmic",
				"gentle", "chirping", "crashing", "rustling", "honking", "dripping", "crackling",
				"howling", "humming", "low",
			}, 2, "sounds", "sound", "noises", "noise", "music", "chatter", "hum", "waves", "traffic",
				"birdsong", "wind", "rain", "footsteps", "echoes", "silence", "bells", "thunder"),
			re(`\b(silence|silent|birdsong)\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.Soundscape = record.Text(v) },
	},
	{
		field: "cultural_context",
		patterns: []*regexp.Regexp{
			label("cultural context", "culture"),
			re(`\b((?:(?:traditional|ancient|modern|contemporary|feudal|colonial)\s+)?(?:japanese|chinese|korean|indian|french|italian|spanish|mexican|moroccan|egyptian|greek|roman|norse|arabic|persian|african|victorian|edwardian|soviet|aztec|mayan)\s+(?:culture|cultural|heritage|traditions?|festival|customs|influences?))\b`),
		},
		set: func(r *record.LocationRecord, v string) { r.CulturalContext = record.Text(v) },
	},
}

var locationLists = []locList{
	{
		field: "prominent_features",
		patterns: []*regexp.Regexp{
			re(`\b(?:features?|featuring|dominated by|centered on|centred on)\s+(?:an?\s+|the\s+)?([^,.;|\n]+)`),
			phrase([]string{
				"large", "tall", "ancient", "ornate", "stone", "marble", "broken", "giant", "towering",
				"wooden", "iron", "glowing", "central", "crumbling", "grand", "stained-glass", "neon",
			}, 2, "fountain", "statue", "clock tower", "clock", "tower", "bridge", "gate", "archway",
				"arch", "staircase", "chandelier", "fireplace", "bookshelves", "bookshelf", "altar",
				"monument", "pillars", "pillar", "columns", "windows", "window", "doors", "door",
				"lanterns", "lantern", "murals", "mural", "billboards", "signs", "throne"),
		},
		add: func(r *record.LocationRecord, v string) {
			r.ProminentFeatures = append(r.ProminentFeatures, v)
		},
	},
}

func timeOfDayFor(v string) record.TimeOfDay {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "dawn", "sunrise", "daybreak":
		return record.TimeDawn
	case "morning":
		return record.TimeMorning
	case "noon", "midday":
		return record.TimeMidday
	case "afternoon":
		return record.TimeAfternoon
	case "sunset", "dusk", "twilight", "golden hour":
		return record.TimeDusk
	case "evening":
		return record.TimeEvening
	case "night", "midnight", "nighttime", "night-time", "moonlit", "moonlight":
		return record.TimeNight
	}
	return ""
}

func scaleFor(v string) record.Scale {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "intimate", "cramped", "tiny", "claustrophobic":
		return record.ScaleIntimate
	case "small", "compact", "modest":
		return record.ScaleSmall
	case "medium", "medium-sized", "mid-sized", "moderately sized":
		return record.ScaleMedium
	case "large", "spacious", "big", "sizable", "grand":
		return record.ScaleLarge
	case "vast", "expansive", "sprawling", "endless", "immense", "huge", "enormous", "boundless", "panoramic":
		return record.ScaleVast
	}
	return ""
}

func crowdFor(v string) record.CrowdLevel {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "packed", "thronged", "jam-packed", "teeming":
		return record.CrowdPacked
	case "crowded", "bustling", "busy", "full of people":
		return record.CrowdCrowded
	case "moderate", "moderately busy", "some people", "several people", "handful of people":
		return record.CrowdModerate
	case "sparse", "sparsely populated", "few people", "scattered people", "nearly empty":
		return record.CrowdSparse
	case "empty", "deserted", "abandoned", "desolate", "unpopulated", "no one", "nobody", "vacant":
		return record.CrowdEmpty
	}
	return ""
}
