package extractor

import (
	"regexp"
	"strings"

	"github.com/abdulachik/panelforge/internal/record"
)

type attrRule = fieldRule[record.AttributeRecord]
type attrList = listRule[record.AttributeRecord]

var (
	colorWords = []string{
		"jet-black", "dark brown", "light brown", "dark-brown", "light-brown",
		"black", "brown", "blonde", "blond", "red", "auburn", "ginger", "grey", "gray",
		"silver", "white", "platinum", "golden", "chestnut", "copper", "pink", "blue",
		"green", "purple", "violet", "dark", "light",
	}

	eyeColors = []string{
		"dark brown", "light brown", "ice-blue", "steel-blue", "pale blue", "bright blue",
		"deep blue", "brown", "blue", "green", "hazel", "grey", "gray", "amber", "black",
		"violet", "golden", "red", "silver", "emerald",
	}

	eyeShapes = []string{
		"almond", "round", "hooded", "monolid", "upturned", "downturned", "deep-set",
		"wide-set", "close-set", "narrow", "large", "small", "wide", "sleepy", "cat-like", "doe",
	}

	hairMods = append([]string{
		"long", "short", "shoulder-length", "waist-length", "cropped", "curly", "wavy",
		"straight", "braided", "messy", "slicked-back", "spiky", "thick", "thin", "shaggy",
		"tousled", "neat", "flowing", "buzzed", "greying", "graying", "dyed", "frizzy",
	}, colorWords...)
)

// characterRules is evaluated top to bottom; within a rule the patterns run
// from most specific to most general.
var characterRules = []attrRule{
	{
		field: "age",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("age"),
			re(`\b((?:early|mid|late)[\s-]+\d0s)\b`),
			re(`\b(\d{1,3}[\s-]+(?:years?|yrs?)[\s-]+old)\b`),
			re(`\baged?\s+(\d{1,3})\b`),
			re(`\b(\d0s)\b`),
			re(`\b(elderly|middle-aged|teenage|teenager|adolescent|young adult|child|toddler|senior)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Age = record.Text(v) },
	},
	{
		field: "gender",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("gender", "sex"),
			re(`\b(non-binary|nonbinary|androgynous)\b`),
			re(`\b(female|woman|women|girl|lady|feminine)\b`),
			re(`\b(male|man|men|boy|gentleman|masculine)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Gender = record.Text(canonicalGender(v)) },
	},
	{
		field: "height",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("height"),
			re(`\b(\d['’]\s?\d{1,2}(?:["”]|'')?)`),
			re(`\b(\d{1,3}(?:\.\d+)?\s?(?:cm|m|meters?|metres?|feet|ft)(?:\s+tall)?)\b`),
			re(`\b((?:average|medium) height|(?:tall|short) stature)\b`),
			re(`\b((?:very |quite |rather )?(?:tall|short|petite|towering|diminutive))\s+(?:man|woman|person|figure|boy|girl|guy|lady|gentleman)\b`),
			re(`\b((?:very |quite |rather )?(?:tall|short|petite|towering|diminutive)(?: and (?:lanky|slim|stocky|thin|lean))?)\s*(?:[,.;|]|$)`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Height = record.Text(v) },
	},
	{
		field: "build",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("build", "physique"),
			phrase([]string{
				"slim", "slender", "athletic", "muscular", "stocky", "heavyset", "lean", "wiry",
				"broad", "thin", "curvy", "average", "medium", "large", "burly", "lanky", "petite",
				"sturdy", "compact", "powerful", "toned", "skinny", "chubby", "plump", "stout", "fit",
			}, 2, "build", "frame", "physique", "body"),
			re(`\b(muscular|athletic|slender|lanky|stocky|heavyset|wiry|burly)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Build = record.Text(v) },
	},
	{
		field: "hair",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("hair", "hair colou?r", "hairstyle"),
			phrase(hairMods, 4, "hair"),
			re(`\b(bald(?:ing)?|shaved head|buzz cut|ponytail|pigtails|dreadlocks|cornrows|mohawk|afro|top knot)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Hair = record.Text(v) },
	},
	{
		field: "clothing",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			label("clothing", "outfit", "attire", "clothes"),
			re(`\b(?:wearing|wears|dressed in|clad in)\s+(?:an?\s+|the\s+|his\s+|her\s+|their\s+)?([^,.;|\n]+)`),
			re(`\bin\s+(?:an?\s+)((?:[a-z-]+\s+){0,3}` + alt(
				"coat", "jacket", "dress", "suit", "uniform", "robe", "robes", "armor", "armour",
				"cloak", "hoodie", "shirt", "sweater", "kimono", "gown", "tunic", "overalls", "vest",
			) + `)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Clothing = record.Text(v) },
	},
	{
		field: "face_shape",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("face shape", "face"),
			phrase([]string{
				"heart-shaped", "oval", "round", "square", "heart", "diamond", "oblong", "long",
				"triangular", "angular", "narrow", "wide", "rectangular", "chubby", "gaunt", "thin",
				"youthful", "weathered", "delicate",
			}, 2, "face"),
		},
		set: func(r *record.AttributeRecord, v string) { r.FaceShape = record.Text(v) },
	},
	{
		field: "eye_shape",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("eye shape"),
			re(`\b(` + alt(eyeShapes...) + `)(?:[\s-]+shaped)?(?:[\s-]+` + alt(eyeColors...) + `)?[\s-]+eyes\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.EyeShape = record.Text(v) },
	},
	{
		field: "eye_color",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("eye colou?r", "eyes"),
			re(`\b(` + alt(eyeColors...) + `)(?:[\s-]+[a-z]+){0,2}[\s-]+eyes\b`),
			re(`\b(` + alt(eyeColors...) + `)-eyed\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.EyeColor = record.Text(v) },
	},
	{
		field: "eyebrows",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("eyebrows", "brows"),
			phrase([]string{
				"thick", "thin", "bushy", "arched", "high-arched", "straight", "sharp", "heavy",
				"dark", "light", "groomed", "furrowed", "angular", "full", "sparse", "expressive",
			}, 3, "eyebrows", "brows"),
		},
		set: func(r *record.AttributeRecord, v string) { r.Eyebrows = record.Text(v) },
	},
	{
		field: "nose",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("nose"),
			phrase([]string{
				"small", "large", "button", "aquiline", "roman", "straight", "broad", "narrow",
				"hooked", "upturned", "pointed", "wide", "flat", "prominent", "long", "short",
				"crooked", "thin", "delicate", "strong", "sharp", "bulbous",
			}, 2, "nose"),
		},
		set: func(r *record.AttributeRecord, v string) { r.Nose = record.Text(v) },
	},
	{
		field: "mouth",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("mouth", "lips"),
			phrase([]string{
				"full", "thin", "wide", "small", "narrow", "plump", "pouty", "soft", "generous",
				"downturned", "upturned", "chapped",
			}, 2, "lips", "mouth"),
		},
		set: func(r *record.AttributeRecord, v string) { r.Mouth = record.Text(v) },
	},
	{
		field: "jawline",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("jawline", "jaw"),
			phrase([]string{
				"strong", "sharp", "square", "defined", "soft", "rounded", "chiseled", "angular",
				"narrow", "wide", "firm", "pointed", "prominent", "weak", "stubbled",
			}, 2, "jawline", "jaw"),
		},
		set: func(r *record.AttributeRecord, v string) { r.Jawline = record.Text(v) },
	},
	{
		field: "cheekbones",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("cheekbones"),
			phrase([]string{
				"high", "prominent", "sharp", "defined", "low", "soft", "chiseled", "angular",
				"sculpted", "hollow",
			}, 2, "cheekbones"),
		},
		set: func(r *record.AttributeRecord, v string) { r.Cheekbones = record.Text(v) },
	},
	{
		field: "shoulder_width",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("shoulders", "shoulder width"),
			phrase([]string{
				"broad", "narrow", "wide", "sloped", "sloping", "square", "rounded", "strong",
				"slim", "muscular",
			}, 2, "shoulders"),
		},
		set: func(r *record.AttributeRecord, v string) { r.ShoulderWidth = record.Text(v) },
	},
	{
		field: "posture",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("posture"),
			phrase([]string{
				"upright", "straight", "slouched", "slouching", "hunched", "confident", "relaxed",
				"rigid", "stooped", "proud", "military", "poised", "tense",
			}, 2, "posture", "stance", "bearing"),
			re(`\b(slouch(?:es|ing)?|hunched over|stands? tall|stooped)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Posture = record.Text(v) },
	},
	{
		field: "skin_tone",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("skin tone", "skin", "complexion"),
			phrase([]string{
				"light-brown", "dark-brown", "sun-kissed", "fair", "pale", "light", "medium",
				"olive", "tan", "tanned", "brown", "dark", "deep", "porcelain", "ebony", "golden",
				"bronze", "freckled", "ruddy", "rosy", "warm", "cool", "weathered", "ashen",
				"beige", "caramel",
			}, 3, `skin(?:[\s-]+tone)?`, "complexion"),
		},
		set: func(r *record.AttributeRecord, v string) { r.SkinTone = record.Text(v) },
	},
	{
		field: "default_expression",
		scope: scopeHuman,
		patterns: []*regexp.Regexp{
			label("expression"),
			re(`\b((?:[a-z-]+\s+){1,2}expression)\b`),
			re(`\b(smiling|frowning|scowling|grinning|smirking|stoic|stern|brooding|pensive|melancholic)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.DefaultExpression = record.Text(v) },
	},
	{
		field: "body_type",
		scope: scopeNonHuman,
		patterns: []*regexp.Regexp{
			label("body type", "body"),
			phrase([]string{
				"serpentine", "quadrupedal", "bipedal", "humanoid", "insectoid", "avian",
				"reptilian", "feline", "canine", "mechanical", "amorphous", "winged", "hulking",
				"lithe", "spindly", "bulky", "lanky", "armored", "armoured", "skeletal",
				"gelatinous", "six-legged", "four-legged", "two-legged", "multi-limbed",
			}, 2, "body", "form", "frame", "build", "physique", "chassis", "torso", "shape"),
			re(`\b(quadruped|biped|humanoid|serpentine|insectoid)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.BodyType = record.Text(v) },
	},
	{
		field: "texture",
		scope: scopeNonHuman,
		patterns: []*regexp.Regexp{
			label("texture", "hide"),
			re(`\b(` + alt(
				"scaly", "furry", "feathered", "metallic", "slimy", "smooth", "rough", "leathery",
				"chitinous", "rocky", "crystalline", "fluffy", "matte", "glossy", "scaled", "shaggy",
				"velvety", "rubbery", "bony", "rusted", "rusty", "polished", "bark-like",
			) + `(?:[\s-]+` + alt(
				"skin", "hide", "fur", "scales", "plating", "surface", "texture", "carapace",
				"feathers", "shell", "coat",
			) + `)?)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Texture = record.Text(v) },
	},
	{
		field: "coloration",
		scope: scopeNonHuman,
		patterns: []*regexp.Regexp{
			label("colou?ration", "colou?ring", "colou?rs?"),
			re(`\b((?:` + alt(
				"iridescent", "bright", "dark", "pale", "deep", "metallic", "mottled", "striped",
				"spotted", "emerald", "crimson", "golden", "silver", "black", "white", "red", "blue",
				"green", "yellow", "orange", "purple", "brown", "grey", "gray", "bronze", "copper",
				"obsidian", "ivory", "azure", "scarlet", "teal", "violet", "pink", "chrome",
			) + `[\s-]+(?:and[\s-]+)?){1,3}` + alt(
				"scales", "fur", "feathers", "plating", "hide", "skin", "coloring", "colouring",
				"coloration", "colouration", "markings", "stripes", "spots", "shell", "carapace", "coat",
			) + `)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Coloration = record.Text(v) },
	},
	{
		field: "size",
		scope: scopeNonHuman,
		patterns: []*regexp.Regexp{
			label("size"),
			re(`\b(\d+(?:\.\d+)?\s?(?:m|meters?|metres?|feet|ft|cm|inches)\s+(?:tall|long|high|wingspan))\b`),
			re(`\b((?:tiny|small|medium-sized|large|huge|massive|enormous|giant|gigantic|colossal|towering|miniature|pocket-sized)(?:[\s-]+sized)?)\b`),
		},
		set: func(r *record.AttributeRecord, v string) { r.Size = record.Text(v) },
	},
}

var characterLists = []attrList{
	{
		field: "distinctive_features",
		scope: scopeUniversal,
		patterns: []*regexp.Regexp{
			re(`\b((?:(?:small|large|long|thin|jagged|faded|deep|prominent|vertical|diagonal|old)[\s-]+)?scars?(?:\s+(?:on|across|over|along|through)\s+(?:(?:his|her|their|the|a|one)\s+)?(?:left\s+|right\s+)?[a-z]+)?)`),
			re(`\b((?:(?:small|large|intricate|tribal|faded|floral|dragon|sleeve|neck|arm)[\s-]+)?tattoos?(?:\s+(?:on|across|of)\s+(?:(?:his|her|their|the|a)\s+)?(?:left\s+|right\s+)?[a-z]+)?)`),
			re(`\b((?:(?:round|square|thick|thin|wire-rimmed|horn-rimmed|black|dark|reading|tinted|cracked)[\s-]+){0,2}(?:glasses|spectacles|sunglasses|monocle))\b`),
			re(`\b((?:(?:full|thick|short|long|scruffy|neat|grey|gray|white|black|brown|red|braided|trimmed)[\s-]+){0,2}(?:beard|mustache|moustache|goatee|stubble|sideburns))\b`),
			re(`\b(freckles|birthmark|beauty mark|mole|dimples|eyepatch|eye patch|piercings?|nose ring|earrings?|prosthetic (?:arm|leg|hand)|missing (?:tooth|finger|eye|ear|arm)|heterochromia)\b`),
		},
		add: func(r *record.AttributeRecord, v string) {
			r.DistinctiveFeatures = append(r.DistinctiveFeatures, v)
		},
	},
}

// featureKeywords detects non-human body features by presence.
var featureKeywords = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"wings", re(`\bwing(?:s|ed)?\b`)},
	{"tail", re(`\btails?\b`)},
	{"horns", re(`\bhorn(?:s|ed)?\b`)},
	{"antlers", re(`\bantlers?\b`)},
	{"claws", re(`\bclaw(?:s|ed)?\b`)},
	{"talons", re(`\btalons?\b`)},
	{"fangs", re(`\bfang(?:s|ed)?\b`)},
	{"tusks", re(`\btusks?\b`)},
	{"tentacles", re(`\btentacles?\b`)},
	{"antennae", re(`\bantenna(?:e|s)?\b`)},
	{"mane", re(`\bmane\b`)},
	{"beak", re(`\bbeak(?:s|ed)?\b`)},
	{"hooves", re(`\bhoo(?:f|ves|fs)\b`)},
	{"fins", re(`\bfins?\b`)},
	{"gills", re(`\bgills?\b`)},
	{"spikes", re(`\b(?:spike[sd]?|spines?)\b`)},
	{"whiskers", re(`\bwhiskers?\b`)},
	{"paws", re(`\bpaws?\b`)},
	{"exoskeleton", re(`\bexoskeleton\b`)},
	{"visor", re(`\bvisor\b`)},
	{"extra limbs", re(`\b(?:extra|multiple|four|six|eight)\s+(?:arms|limbs|legs)\b`)},
	{"multiple eyes", re(`\b(?:multiple|many|three|four|compound)\s+eyes\b`)},
	{"glowing eyes", re(`\bglowing\s+(?:[a-z-]+\s+)?eyes\b`)},
}

// canonicalGender maps a gender phrase to Female, Male or Non-binary,
// leaving other stated values as written.
func canonicalGender(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "female", "woman", "women", "girl", "lady", "feminine", "f":
		return "Female"
	case "male", "man", "men", "boy", "gentleman", "masculine", "m":
		return "Male"
	case "non-binary", "nonbinary", "androgynous", "nb", "enby":
		return "Non-binary"
	}
	return v
}
