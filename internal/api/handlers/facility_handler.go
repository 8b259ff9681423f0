package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/carefinder/backend/internal/application/services"
	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
)

// FacilitySearcher is the search surface the facility handler depends on
type FacilitySearcher interface {
	SearchHospitals(ctx context.Context, q services.HospitalQuery) ([]entities.FacilityRecord, error)
	SearchEmergency(ctx context.Context, origin entities.Location) ([]entities.FacilityRecord, error)
	SearchPharmacies(ctx context.Context, q services.PharmacyQuery) ([]entities.FacilityRecord, error)
}

// FacilityHandler handles the nearby facility search endpoints
type FacilityHandler struct {
	service FacilitySearcher
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(service FacilitySearcher) *FacilityHandler {
	return &FacilityHandler{
		service: service,
	}
}

// SearchHospitals handles GET /api/hospitals
func (h *FacilityHandler) SearchHospitals(w http.ResponseWriter, r *http.Request) {
	origin, err := parseOrigin(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	radius, err := parseRadius(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	results, err := h.service.SearchHospitals(r.Context(), services.HospitalQuery{
		Origin:   origin,
		Keyword:  strings.TrimSpace(r.URL.Query().Get("keyword")),
		RadiusKm: radius,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

// SearchEmergency handles GET /api/emergency
func (h *FacilityHandler) SearchEmergency(w http.ResponseWriter, r *http.Request) {
	origin, err := parseOrigin(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	results, err := h.service.SearchEmergency(r.Context(), origin)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

// SearchPharmacies handles GET /api/pharmacy
func (h *FacilityHandler) SearchPharmacies(w http.ResponseWriter, r *http.Request) {
	origin, err := parseOrigin(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	radius, err := parseRadius(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	results, err := h.service.SearchPharmacies(r.Context(), services.PharmacyQuery{
		Origin:   origin,
		RadiusKm: radius,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

func parseOrigin(r *http.Request) (entities.Location, error) {
	query := r.URL.Query()
	latRaw := strings.TrimSpace(query.Get("lat"))
	lonRaw := strings.TrimSpace(query.Get("lon"))
	if latRaw == "" || lonRaw == "" {
		return entities.Location{}, apperrors.NewValidationError("lat and lon are required")
	}

	lat, err := parseFinite(latRaw)
	if err != nil {
		return entities.Location{}, apperrors.NewValidationError("lat must be a number")
	}
	lon, err := parseFinite(lonRaw)
	if err != nil {
		return entities.Location{}, apperrors.NewValidationError("lon must be a number")
	}
	return entities.Location{Latitude: lat, Longitude: lon}, nil
}

func parseRadius(r *http.Request) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("radius"))
	if raw == "" {
		return services.DefaultSearchRadiusKm, nil
	}
	radius, err := parseFinite(raw)
	if err != nil || radius < 0 {
		return 0, apperrors.NewValidationError("radius must be a non-negative number")
	}
	return radius, nil
}

func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
