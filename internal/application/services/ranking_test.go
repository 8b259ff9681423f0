package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

var origin = entities.Location{Latitude: 37.50, Longitude: 127.00}

// north returns a point dLat degrees north of origin (0.01 deg ~ 1.11 km).
func north(dLat float64) entities.Location {
	return entities.Location{Latitude: origin.Latitude + dLat, Longitude: origin.Longitude}
}

func entry(name string, loc entities.Location) entities.RegistryEntry {
	return entities.RegistryEntry{Name: name, Address: name + " address", Phone: "032-" + name, Location: loc}
}

func TestRankHospitals_RadiusAndOrder(t *testing.T) {
	entries := []entities.RegistryEntry{
		entry("Far Hospital", north(0.05)),
		entry("Clinic A", origin),
		entry("Mid Clinic", north(0.02)),
	}

	got := RankHospitals(entries, origin, "", DefaultSearchRadiusKm)
	require.Len(t, got, 2)
	assert.Equal(t, "Clinic A", got[0].Name)
	assert.Equal(t, 0.0, got[0].DistanceKm)
	assert.Equal(t, "Mid Clinic", got[1].Name)
	assert.InDelta(t, 2.22, got[1].DistanceKm, 0.01)

	for _, r := range got {
		assert.LessOrEqual(t, r.DistanceKm, DefaultSearchRadiusKm)
		assert.Empty(t, r.Status)
		assert.Nil(t, r.AvailableBeds)
	}
}

func TestRankHospitals_TinyRadius(t *testing.T) {
	entries := []entities.RegistryEntry{entry("Two Km Clinic", north(0.018))}
	assert.Empty(t, RankHospitals(entries, origin, "", 0.0001))
}

func TestRankHospitals_KeywordIsCaseSensitiveSubstring(t *testing.T) {
	entries := []entities.RegistryEntry{
		entry("온누리약국", north(0.001)),
		entry("인천성모병원", north(0.002)),
		entry("Clinic a", north(0.003)),
		entry("Clinic A", north(0.004)),
	}

	got := RankHospitals(entries, origin, "약국", DefaultSearchRadiusKm)
	require.Len(t, got, 1)
	assert.Equal(t, "온누리약국", got[0].Name)

	got = RankHospitals(entries, origin, "Clinic A", DefaultSearchRadiusKm)
	require.Len(t, got, 1)
	for _, r := range got {
		assert.True(t, strings.Contains(r.Name, "Clinic A"))
	}
}

func TestRankHospitals_DuplicateNamesKeepClosest(t *testing.T) {
	entries := []entities.RegistryEntry{
		entry("Clinic A", north(0.02)),
		entry("Clinic A", north(0.01)),
	}

	got := RankHospitals(entries, origin, "", DefaultSearchRadiusKm)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.11, got[0].DistanceKm, 0.01)
}

func erItem(name, beds string) entities.RawFeedItem {
	item := entities.RawFeedItem{"dutyName": name, "dutyTel3": "119-" + name}
	if beds != "" {
		item["hvec"] = beds
	}
	return item
}

func assertEmergencyOrdering(t *testing.T, got []entities.FacilityRecord) {
	t.Helper()
	for i := 0; i+1 < len(got); i++ {
		a, b := got[i], got[i+1]
		if a.Status == b.Status {
			assert.LessOrEqual(t, a.DistanceKm, b.DistanceKm, "distance order at %d", i)
		} else {
			assert.Equal(t, entities.StatusAvailable, a.Status, "available must precede unavailable at %d", i)
		}
	}
}

func TestRankEmergency_PrimaryRadiusAndPriority(t *testing.T) {
	registry := entities.NewRegistry([]entities.RegistryEntry{
		entry("Near Full", north(0.005)),
		entry("Mid Open", north(0.02)),
		entry("Far Open", north(0.2)),
		entry("Unlisted In Feed", north(0.001)),
	}, 0)
	items := []entities.RawFeedItem{
		erItem("Far Open", "4"),
		erItem("Near Full", "0"),
		erItem("Mid Open", "2"),
		erItem("Not In Registry", "9"),
	}

	got := RankEmergency(items, registry, origin)
	require.Len(t, got, 2)

	assert.Equal(t, "Mid Open", got[0].Name)
	assert.Equal(t, entities.StatusAvailable, got[0].Status)
	require.NotNil(t, got[0].AvailableBeds)
	assert.Equal(t, 2, *got[0].AvailableBeds)
	assert.Equal(t, "119-Mid Open", got[0].Phone)
	assert.Equal(t, "Mid Open address", got[0].Address)

	assert.Equal(t, "Near Full", got[1].Name)
	assert.Equal(t, entities.StatusUnavailable, got[1].Status)
	assertEmergencyOrdering(t, got)
}

func TestRankEmergency_FallbackToFiveClosest(t *testing.T) {
	var entries []entities.RegistryEntry
	var items []entities.RawFeedItem
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("Hospital %d", i)
		entries = append(entries, entry(name, north(0.1+float64(i)*0.01)))
		beds := "0"
		if i%2 == 1 {
			beds = "3"
		}
		items = append(items, erItem(name, beds))
	}
	registry := entities.NewRegistry(entries, 0)

	got := RankEmergency(items, registry, origin)
	require.Len(t, got, EmergencyFallbackCount)

	names := make(map[string]bool)
	for _, r := range got {
		names[r.Name] = true
		assert.Greater(t, r.DistanceKm, EmergencyRadiusKm)
	}
	for i := 0; i < EmergencyFallbackCount; i++ {
		assert.True(t, names[fmt.Sprintf("Hospital %d", i)])
	}
	assert.Equal(t, "Hospital 1", got[0].Name)
	assertEmergencyOrdering(t, got)
}

func TestRankEmergency_MalformedBedCount(t *testing.T) {
	registry := entities.NewRegistry([]entities.RegistryEntry{entry("Clinic A", origin)}, 0)

	for _, beds := range []string{"many", "", "-3"} {
		got := RankEmergency([]entities.RawFeedItem{erItem("Clinic A", beds)}, registry, origin)
		require.Len(t, got, 1, "beds=%q", beds)
		require.NotNil(t, got[0].AvailableBeds)
		assert.Equal(t, 0, *got[0].AvailableBeds)
		assert.Equal(t, entities.StatusUnavailable, got[0].Status)
	}
}

func TestRankEmergency_PhoneFallsBackToRegistry(t *testing.T) {
	registry := entities.NewRegistry([]entities.RegistryEntry{entry("Clinic A", origin)}, 0)
	item := entities.RawFeedItem{"dutyName": "Clinic A", "hvec": "1"}

	got := RankEmergency([]entities.RawFeedItem{item}, registry, origin)
	require.Len(t, got, 1)
	assert.Equal(t, "032-Clinic A", got[0].Phone)
}

func TestRankEmergency_TruncatesToTen(t *testing.T) {
	var entries []entities.RegistryEntry
	var items []entities.RawFeedItem
	for i := 0; i < 14; i++ {
		name := fmt.Sprintf("ER %02d", i)
		entries = append(entries, entry(name, north(float64(i)*0.001)))
		items = append(items, erItem(name, "1"))
	}

	got := RankEmergency(items, entities.NewRegistry(entries, 0), origin)
	assert.Len(t, got, EmergencyMaxResults)
	assert.Equal(t, "ER 00", got[0].Name)
}

func TestRankEmergency_DuplicateFeedRows(t *testing.T) {
	registry := entities.NewRegistry([]entities.RegistryEntry{entry("Clinic A", origin)}, 0)
	items := []entities.RawFeedItem{erItem("Clinic A", "0"), erItem("Clinic A", "5")}

	got := RankEmergency(items, registry, origin)
	require.Len(t, got, 1)
	assert.Equal(t, 0, *got[0].AvailableBeds)
}

func TestRankEmergency_NoMatches(t *testing.T) {
	got := RankEmergency([]entities.RawFeedItem{erItem("Ghost", "1")}, entities.NewRegistry(nil, 0), origin)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func pharmacy(name string, loc entities.Location, start, end string) entities.RawFeedItem {
	item := entities.RawFeedItem{
		"dutyName": name,
		"dutyAddr": name + " addr",
		"dutyTel1": "032-" + name,
		"wgs84Lat": fmt.Sprintf("%f", loc.Latitude),
		"wgs84Lon": fmt.Sprintf("%f", loc.Longitude),
	}
	if start != "" {
		item["dutyTime3s"] = start
	}
	if end != "" {
		item["dutyTime3c"] = end
	}
	return item
}

func TestRankPharmacies_OpenFirstThenDistance(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) // Wednesday noon
	items := []entities.RawFeedItem{
		pharmacy("Closed Near", north(0.001), "1300", "1800"),
		pharmacy("Open Far", north(0.02), "0900", "1800"),
		pharmacy("Unknown Mid", north(0.005), "", ""),
		pharmacy("Open Near", north(0.01), "0900", "2100"),
		pharmacy("Garbled", north(0.003), "nine", "1800"),
		pharmacy("Out Of Range", north(0.1), "0900", "1800"),
	}

	got := RankPharmacies(items, origin, DefaultSearchRadiusKm, now)
	require.Len(t, got, 5)

	assert.Equal(t, "Open Near", got[0].Name)
	assert.Equal(t, entities.StatusOpen, got[0].Status)
	assert.Equal(t, "Open Far", got[1].Name)
	assert.Equal(t, "Closed Near", got[2].Name)
	assert.Equal(t, entities.StatusClosed, got[2].Status)
	assert.Equal(t, "Garbled", got[3].Name)
	assert.Equal(t, entities.StatusUnknown, got[3].Status)
	assert.Equal(t, "Unknown Mid", got[4].Name)
	assert.Equal(t, entities.StatusUnknown, got[4].Status)

	assert.Equal(t, "Open Near addr", got[0].Address)
	assert.Equal(t, "032-Open Near", got[0].Phone)
	assert.Nil(t, got[0].AvailableBeds)
}

func TestRankPharmacies_DropsUnusableCoordinates(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	bad := pharmacy("No Lat", origin, "0900", "1800")
	bad["wgs84Lat"] = ""
	garbled := pharmacy("Garbled Lon", origin, "0900", "1800")
	garbled["wgs84Lon"] = "east"
	unnamed := pharmacy("", origin, "0900", "1800")

	got := RankPharmacies([]entities.RawFeedItem{bad, garbled, unnamed}, origin, DefaultSearchRadiusKm, now)
	assert.Empty(t, got)
}
