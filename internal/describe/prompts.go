package describe

// SystemPrompt is the system prompt for image description.
const SystemPrompt = `You describe reference images for a storyboard artist. You write plain comma-separated visual facts, never prose, never opinions.`

// CharacterPrompt asks for a character description that starts with the
// type marker the extractor parses.
const CharacterPrompt = `Describe the main character in this image.

Start with exactly this marker line:
CHARACTER_TYPE: <human, creature, robot, animal, alien, hybrid or other> | SPECIES: <species, or N/A for humans> |

Then list, separated by commas, only what is visible:
- age range and gender
- height and build, posture, shoulder width
- face shape, jawline, cheekbones
- hair (color, length, style)
- eye shape and eye color, eyebrows, nose, mouth
- skin tone
- clothing, starting with "wearing"
- distinctive features such as scars, tattoos, glasses, freckles
- for non-humans: body type, size, texture, coloration, and features such as wings, tail, horns or claws
- default facial expression

Leave out anything you cannot see. Do not name real people.`

// LocationPrompt asks for a location description that starts with the
// location marker the extractor parses.
const LocationPrompt = `Describe the place shown in this image.

Start with exactly this marker line:
LOCATION_TYPE: <real or fictional> |

If it is a recognisable real place, add labeled fields separated by |:
City: <city> | Country: <country> | Region: <region> | Landmark: <landmark> | Specific location: <street or site> | Known for: <what it is famous for> |

Then list, separated by commas, only what is visible:
- type of place and setting (indoor or outdoor)
- time of day, weather, lighting, atmosphere
- architecture, terrain, vegetation
- prominent features
- color palette, scale, condition, how crowded it is
- soundscape and cultural context if evident`

func promptFor(target Target) string {
	if target == TargetLocation {
		return LocationPrompt
	}
	return CharacterPrompt
}
