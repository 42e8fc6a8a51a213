package record

// TimeOfDay is the lighting period of a location. The zero value means unstated.
type TimeOfDay string

const (
	TimeDawn      TimeOfDay = "dawn"
	TimeMorning   TimeOfDay = "morning"
	TimeMidday    TimeOfDay = "midday"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeDusk      TimeOfDay = "dusk"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// Scale is the spatial size of a location. The zero value means unstated.
type Scale string

const (
	ScaleIntimate Scale = "intimate"
	ScaleSmall    Scale = "small"
	ScaleMedium   Scale = "medium"
	ScaleLarge    Scale = "large"
	ScaleVast     Scale = "vast"
)

// CrowdLevel describes how many people populate a location. The zero value
// means unstated.
type CrowdLevel string

const (
	CrowdEmpty    CrowdLevel = "empty"
	CrowdSparse   CrowdLevel = "sparse"
	CrowdModerate CrowdLevel = "moderate"
	CrowdCrowded  CrowdLevel = "crowded"
	CrowdPacked   CrowdLevel = "packed"
)

// RealPlaceInfo identifies a real-world place.
type RealPlaceInfo struct {
	City             *string `json:"city,omitempty"`
	Country          *string `json:"country,omitempty"`
	Region           *string `json:"region,omitempty"`
	SpecificLocation *string `json:"specific_location,omitempty"`
	Landmark         *string `json:"landmark,omitempty"`
	KnownFor         *string `json:"known_for,omitempty"`
}

// IsZero reports whether no real-place field is set.
func (r RealPlaceInfo) IsZero() bool {
	return r.City == nil && r.Country == nil && r.Region == nil &&
		r.SpecificLocation == nil && r.Landmark == nil && r.KnownFor == nil
}

// LocationRecord holds the attributes extracted from a location description.
type LocationRecord struct {
	IsRealPlace       bool          `json:"is_real_place"`
	RealPlace         RealPlaceInfo `json:"real_place_info"`
	LocationType      *string       `json:"location_type,omitempty"`
	Setting           *string       `json:"setting,omitempty"`
	TimeOfDay         TimeOfDay     `json:"time_of_day,omitempty"`
	Weather           *string       `json:"weather,omitempty"`
	Lighting          *string       `json:"lighting,omitempty"`
	Atmosphere        *string       `json:"atmosphere,omitempty"`
	Architecture      *string       `json:"architecture,omitempty"`
	Terrain           *string       `json:"terrain,omitempty"`
	Vegetation        *string       `json:"vegetation,omitempty"`
	ProminentFeatures []string      `json:"prominent_features,omitempty"`
	ColorPalette      *string       `json:"color_palette,omitempty"`
	Scale             Scale         `json:"scale,omitempty"`
	Condition         *string       `json:"condition,omitempty"`
	CrowdLevel        CrowdLevel    `json:"crowd_level,omitempty"`
	Soundscape        *string       `json:"soundscape,omitempty"`
	CulturalContext   *string       `json:"cultural_context,omitempty"`
}

// Location is a named place with its extracted attributes.
type Location struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Attributes  LocationRecord `json:"attributes"`
}
