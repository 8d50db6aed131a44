package domain

// Location is the geocoded form of a street address.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Street           string  `json:"street,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	Country          string  `json:"country,omitempty"`
}

// Earth radius used to turn a search distance into an angular radius.
const (
	EarthRadiusMiles = 3963.0
	EarthRadiusKm    = 6378.0
)

// DistanceUnit selects the unit of a radius search distance.
type DistanceUnit string

const (
	Miles      DistanceUnit = "mi"
	Kilometers DistanceUnit = "km"
)

// ParseDistanceUnit maps a query value onto a unit. Empty means miles.
func ParseDistanceUnit(s string) (DistanceUnit, bool) {
	switch s {
	case "", "mi", "miles":
		return Miles, true
	case "km", "kilometers":
		return Kilometers, true
	}
	return "", false
}

// RadiusRadians converts distance in unit into an angle on the Earth's surface.
func RadiusRadians(distance float64, unit DistanceUnit) float64 {
	if unit == Kilometers {
		return distance / EarthRadiusKm
	}
	return distance / EarthRadiusMiles
}
