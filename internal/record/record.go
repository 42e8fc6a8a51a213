// Package record defines the structured attribute records produced by the
// extractor and consumed by the prompt composer.
//
// Optional text fields are *string: nil means the description did not state
// the attribute. A present field is never the empty string.
package record

import (
	"encoding/json"
	"sort"
	"strings"
)

// SubjectKind classifies what a character is.
type SubjectKind string

const (
	KindHuman    SubjectKind = "human"
	KindCreature SubjectKind = "creature"
	KindRobot    SubjectKind = "robot"
	KindAnimal   SubjectKind = "animal"
	KindAlien    SubjectKind = "alien"
	KindHybrid   SubjectKind = "hybrid"
	KindOther    SubjectKind = "other"
	KindUnknown  SubjectKind = "unknown"
)

// kindSynonyms maps lowercase marker values onto the closed kind set.
var kindSynonyms = map[string]SubjectKind{
	"human":     KindHuman,
	"person":    KindHuman,
	"humanoid":  KindHuman,
	"creature":  KindCreature,
	"monster":   KindCreature,
	"beast":     KindCreature,
	"robot":     KindRobot,
	"android":   KindRobot,
	"cyborg":    KindRobot,
	"mech":      KindRobot,
	"machine":   KindRobot,
	"animal":    KindAnimal,
	"alien":     KindAlien,
	"hybrid":    KindHybrid,
	"other":     KindOther,
	"unknown":   KindUnknown,
	"n/a":       KindUnknown,
	"undefined": KindUnknown,
}

// ParseSubjectKind maps a marker value to a SubjectKind, case-insensitively.
// Blank input yields KindUnknown; an unrecognised non-blank value yields KindOther.
func ParseSubjectKind(s string) SubjectKind {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return KindUnknown
	}
	if k, ok := kindSynonyms[v]; ok {
		return k
	}
	return KindOther
}

// Resolved reports whether the kind came from a marker or heuristic.
func (k SubjectKind) Resolved() bool {
	return k != "" && k != KindUnknown
}

// IsHuman reports whether the kind is human.
func (k SubjectKind) IsHuman() bool {
	return k == KindHuman
}

// Text returns a pointer to the trimmed value, or nil when it is blank.
func Text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// FeatureSet is an unordered set of non-human body features.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from the given features, ignoring blanks.
// It returns nil when nothing remains.
func NewFeatureSet(features ...string) FeatureSet {
	var fs FeatureSet
	for _, f := range features {
		fs = fs.Add(f)
	}
	return fs
}

// Add inserts a feature and returns the (possibly newly allocated) set.
func (fs FeatureSet) Add(feature string) FeatureSet {
	feature = strings.ToLower(strings.TrimSpace(feature))
	if feature == "" {
		return fs
	}
	if fs == nil {
		fs = make(FeatureSet)
	}
	fs[feature] = struct{}{}
	return fs
}

// Has reports membership.
func (fs FeatureSet) Has(feature string) bool {
	_, ok := fs[strings.ToLower(feature)]
	return ok
}

// Sorted returns the members in lexical order.
func (fs FeatureSet) Sorted() []string {
	if len(fs) == 0 {
		return nil
	}
	out := make([]string, 0, len(fs))
	for f := range fs {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Sorted())
}

// UnmarshalJSON decodes an array into the set.
func (fs *FeatureSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*fs = NewFeatureSet(items...)
	return nil
}

// AttributeRecord holds the attributes extracted from a character description.
type AttributeRecord struct {
	Kind    SubjectKind `json:"subject_kind"`
	Species *string     `json:"species,omitempty"`

	// Universal fields.
	Age                 *string  `json:"age,omitempty"`
	Gender              *string  `json:"gender,omitempty"`
	Height              *string  `json:"height,omitempty"`
	Build               *string  `json:"build,omitempty"`
	Hair                *string  `json:"hair,omitempty"`
	Clothing            *string  `json:"clothing,omitempty"`
	DistinctiveFeatures []string `json:"distinctive_features,omitempty"`

	// Human-only fields.
	FaceShape         *string `json:"face_shape,omitempty"`
	EyeShape          *string `json:"eye_shape,omitempty"`
	EyeColor          *string `json:"eye_color,omitempty"`
	Eyebrows          *string `json:"eyebrows,omitempty"`
	Nose              *string `json:"nose,omitempty"`
	Mouth             *string `json:"mouth,omitempty"`
	Jawline           *string `json:"jawline,omitempty"`
	Cheekbones        *string `json:"cheekbones,omitempty"`
	ShoulderWidth     *string `json:"shoulder_width,omitempty"`
	Posture           *string `json:"posture,omitempty"`
	SkinTone          *string `json:"skin_tone,omitempty"`
	DefaultExpression *string `json:"default_expression,omitempty"`

	// Non-human fields.
	BodyType   *string    `json:"body_type,omitempty"`
	Texture    *string    `json:"texture,omitempty"`
	Coloration *string    `json:"coloration,omitempty"`
	Size       *string    `json:"size,omitempty"`
	Features   FeatureSet `json:"features,omitempty"`
}

// textFields lists every optional text field with its JSON name, in
// declaration order.
func (r *AttributeRecord) textFields() []struct {
	name string
	ptr  **string
} {
	return []struct {
		name string
		ptr  **string
	}{
		{"species", &r.Species},
		{"age", &r.Age},
		{"gender", &r.Gender},
		{"height", &r.Height},
		{"build", &r.Build},
		{"hair", &r.Hair},
		{"clothing", &r.Clothing},
		{"face_shape", &r.FaceShape},
		{"eye_shape", &r.EyeShape},
		{"eye_color", &r.EyeColor},
		{"eyebrows", &r.Eyebrows},
		{"nose", &r.Nose},
		{"mouth", &r.Mouth},
		{"jawline", &r.Jawline},
		{"cheekbones", &r.Cheekbones},
		{"shoulder_width", &r.ShoulderWidth},
		{"posture", &r.Posture},
		{"skin_tone", &r.SkinTone},
		{"default_expression", &r.DefaultExpression},
		{"body_type", &r.BodyType},
		{"texture", &r.Texture},
		{"coloration", &r.Coloration},
		{"size", &r.Size},
	}
}

// PopulatedFields returns the JSON names of every field with a value.
// A sparse result is how callers observe an ambiguous description.
func (r AttributeRecord) PopulatedFields() []string {
	var out []string
	for _, f := range r.textFields() {
		if *f.ptr != nil {
			out = append(out, f.name)
		}
	}
	if len(r.DistinctiveFeatures) > 0 {
		out = append(out, "distinctive_features")
	}
	if len(r.Features) > 0 {
		out = append(out, "features")
	}
	return out
}

// IsEmpty reports whether nothing beyond the kind was extracted.
func (r AttributeRecord) IsEmpty() bool {
	return len(r.PopulatedFields()) == 0
}

// Merge applies an edit: each field of src overwrites dst only when src has
// a value. Lists and sets overwrite only when non-empty, and the kind only
// when src resolved one.
func Merge(dst, src AttributeRecord) AttributeRecord {
	out := dst
	if src.Kind.Resolved() {
		out.Kind = src.Kind
	}
	outFields := out.textFields()
	for i, f := range src.textFields() {
		if *f.ptr != nil {
			v := **f.ptr
			*outFields[i].ptr = &v
		}
	}
	if len(src.DistinctiveFeatures) > 0 {
		out.DistinctiveFeatures = append([]string(nil), src.DistinctiveFeatures...)
	}
	if len(src.Features) > 0 {
		out.Features = NewFeatureSet(src.Features.Sorted()...)
	}
	if out.Kind.IsHuman() {
		out.Species = nil
	}
	return out
}

// Subject is a named character with its extracted attributes.
type Subject struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	BasedOn     *string         `json:"based_on,omitempty"`
	Description string          `json:"description,omitempty"`
	Attributes  AttributeRecord `json:"attributes"`
}
