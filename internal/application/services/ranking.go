package services

import (
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	"github.com/zatekoja/carefinder/backend/pkg/geo"
)

const (
	// DefaultSearchRadiusKm applies to hospital and pharmacy searches without a radius.
	DefaultSearchRadiusKm = 3.0

	EmergencyRadiusKm      = 5.0
	EmergencyFallbackCount = 5
	EmergencyMaxResults    = 10
)

// Feed field names of the public-data emergency and pharmacy services.
const (
	fieldName         = "dutyName"
	fieldAddress      = "dutyAddr"
	fieldPharmacyTel  = "dutyTel1"
	fieldEmergencyTel = "dutyTel3"
	fieldERBeds       = "hvec"
	fieldLatitude     = "wgs84Lat"
	fieldLongitude    = "wgs84Lon"
)

// ranked pairs an output record with its full-precision distance. Filters and
// sorts use distance; the record carries the rounded value.
type ranked struct {
	record   entities.FacilityRecord
	distance float64
}

func newRanked(name, address, phone string, loc, origin entities.Location) ranked {
	d := geo.DistanceKm(origin.Latitude, origin.Longitude, loc.Latitude, loc.Longitude)
	return ranked{
		record: entities.FacilityRecord{
			Name:       name,
			Address:    address,
			Phone:      phone,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			DistanceKm: geo.Round2(d),
		},
		distance: d,
	}
}

// RankHospitals filters registry entries by keyword and radius and orders them by distance.
func RankHospitals(entries []entities.RegistryEntry, origin entities.Location, keyword string, radiusKm float64) []entities.FacilityRecord {
	out := make([]ranked, 0)
	for _, e := range entries {
		if keyword != "" && !strings.Contains(e.Name, keyword) {
			continue
		}
		r := newRanked(e.Name, e.Address, e.Phone, e.Location, origin)
		if r.distance > radiusKm {
			continue
		}
		out = append(out, r)
	}

	sortByDistance(out)
	return records(uniqueByName(out))
}

// RankEmergency joins emergency feed items with registry coordinates. Candidates
// within EmergencyRadiusKm are kept; when none qualify the closest
// EmergencyFallbackCount are used instead. Rooms with free beds come first.
func RankEmergency(items []entities.RawFeedItem, registry *entities.Registry, origin entities.Location) []entities.FacilityRecord {
	candidates := make([]ranked, 0, len(items))
	for _, item := range items {
		entry, ok := registry.Lookup(item.String(fieldName))
		if !ok {
			continue
		}

		phone := item.String(fieldEmergencyTel)
		if phone == "" {
			phone = entry.Phone
		}
		r := newRanked(entry.Name, entry.Address, phone, entry.Location, origin)

		beds := item.IntOr(fieldERBeds, 0)
		if beds < 0 {
			beds = 0
		}
		r.record.AvailableBeds = &beds
		if beds > 0 {
			r.record.Status = entities.StatusAvailable
		} else {
			r.record.Status = entities.StatusUnavailable
		}
		candidates = append(candidates, r)
	}

	sortByDistance(candidates)
	candidates = uniqueByName(candidates)

	result := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.distance <= EmergencyRadiusKm {
			result = append(result, c)
		}
	}
	if len(result) == 0 {
		n := min(EmergencyFallbackCount, len(candidates))
		result = append(result, candidates[:n]...)
	}

	sortByPriority(result, entities.StatusAvailable)
	if len(result) > EmergencyMaxResults {
		result = result[:EmergencyMaxResults]
	}
	return records(result)
}

// RankPharmacies places feed pharmacies by their own coordinates, filters by
// radius and lists open pharmacies first.
func RankPharmacies(items []entities.RawFeedItem, origin entities.Location, radiusKm float64, now time.Time) []entities.FacilityRecord {
	out := make([]ranked, 0)
	for _, item := range items {
		name := item.String(fieldName)
		if name == "" {
			continue
		}
		lat, okLat := item.Float(fieldLatitude)
		lon, okLon := item.Float(fieldLongitude)
		if !okLat || !okLon || !geo.ValidLatitude(lat) || !geo.ValidLongitude(lon) {
			continue
		}

		r := newRanked(name, item.String(fieldAddress), item.String(fieldPharmacyTel),
			entities.Location{Latitude: lat, Longitude: lon}, origin)
		if r.distance > radiusKm {
			continue
		}
		r.record.Status = EvaluateOpenState(item, now).Status()
		out = append(out, r)
	}

	sortByDistance(out)
	out = uniqueByName(out)
	sortByPriority(out, entities.StatusOpen)
	return records(out)
}

func sortByDistance(rs []ranked) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].distance != rs[j].distance {
			return rs[i].distance < rs[j].distance
		}
		return rs[i].record.Name < rs[j].record.Name
	})
}

// sortByPriority puts records with the preferred status first, then orders by distance.
func sortByPriority(rs []ranked, preferred entities.FacilityStatus) {
	sort.SliceStable(rs, func(i, j int) bool {
		pi, pj := rs[i].record.Status == preferred, rs[j].record.Status == preferred
		if pi != pj {
			return pi
		}
		if rs[i].distance != rs[j].distance {
			return rs[i].distance < rs[j].distance
		}
		return rs[i].record.Name < rs[j].record.Name
	})
}

// uniqueByName keeps the first record per name; callers sort by distance first
// so the closest one survives.
func uniqueByName(rs []ranked) []ranked {
	seen := make(map[string]struct{}, len(rs))
	out := rs[:0]
	for _, r := range rs {
		if _, dup := seen[r.record.Name]; dup {
			continue
		}
		seen[r.record.Name] = struct{}{}
		out = append(out, r)
	}
	return out
}

func records(rs []ranked) []entities.FacilityRecord {
	out := make([]entities.FacilityRecord, len(rs))
	for i, r := range rs {
		out[i] = r.record
	}
	return out
}
