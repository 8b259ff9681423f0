package entities

// FacilityStatus is the availability or opening state attached to a facility record
type FacilityStatus string

const (
	StatusAvailable   FacilityStatus = "Available"
	StatusUnavailable FacilityStatus = "Unavailable"
	StatusOpen        FacilityStatus = "Open"
	StatusClosed      FacilityStatus = "Closed"
	StatusUnknown     FacilityStatus = "Unknown"
)

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FacilityRecord is the canonical search result returned to callers.
// Status and AvailableBeds are only set by the emergency and pharmacy flows.
type FacilityRecord struct {
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone,omitempty"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	DistanceKm    float64        `json:"distance_km"`
	Status        FacilityStatus `json:"status,omitempty"`
	AvailableBeds *int           `json:"available_beds,omitempty"`
}

// Location returns the record's coordinates
func (r FacilityRecord) Location() Location {
	return Location{Latitude: r.Latitude, Longitude: r.Longitude}
}
