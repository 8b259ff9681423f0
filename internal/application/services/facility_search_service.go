package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	"github.com/zatekoja/carefinder/backend/internal/domain/providers"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
	"github.com/zatekoja/carefinder/backend/pkg/geo"
	"go.opentelemetry.io/otel/attribute"
)

// HospitalQuery holds the parameters of a general facility search
type HospitalQuery struct {
	Origin  entities.Location
	Keyword  string
	RadiusKm float64
}

// PharmacyQuery holds the parameters of a pharmacy search
type PharmacyQuery struct {
	Origin   entities.Location
	RadiusKm float64
}

// FacilitySearchService answers the three nearby-care queries. It reads the
// registry and feeds fresh on every call.
type FacilitySearchService struct {
	registry   providers.RegistryProvider
	emergency  providers.EmergencyFeedProvider
	pharmacies providers.PharmacyFeedProvider
	location   *time.Location
	now        func() time.Time
}

// NewFacilitySearchService creates a new facility search service. loc is the
// zone pharmacy opening hours are evaluated in; nil means time.Local.
func NewFacilitySearchService(
	registry providers.RegistryProvider,
	emergency providers.EmergencyFeedProvider,
	pharmacies providers.PharmacyFeedProvider,
	loc *time.Location,
) *FacilitySearchService {
	if loc == nil {
		loc = time.Local
	}
	return &FacilitySearchService{
		registry:   registry,
		emergency:  emergency,
		pharmacies: pharmacies,
		location:   loc,
		now:        time.Now,
	}
}

// SetClock overrides the wall clock used for opening-hours checks
func (s *FacilitySearchService) SetClock(now func() time.Time) {
	s.now = now
}

// SearchHospitals lists registry facilities within the radius, closest first
func (s *FacilitySearchService) SearchHospitals(ctx context.Context, q HospitalQuery) ([]entities.FacilityRecord, error) {
	ctx, span := observability.StartSpan(ctx, "search.hospitals")
	defer span.End()

	radius, err := normalizeRadius(q.RadiusKm)
	if err != nil {
		return nil, err
	}
	if err := validateOrigin(q.Origin); err != nil {
		return nil, err
	}

	reg, err := s.loadRegistry(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	results := RankHospitals(reg.Entries(), q.Origin, q.Keyword, radius)

	observability.SetSpanAttributes(span,
		attribute.String("search.keyword", q.Keyword),
		attribute.Float64("search.radius_km", radius),
		attribute.Int("search.results", len(results)),
	)
	observability.LoggerFromContext(ctx).Debug().
		Str("keyword", q.Keyword).
		Float64("radius_km", radius).
		Int("results", len(results)).
		Msg("hospital search")

	return results, nil
}

// SearchEmergency lists emergency rooms near origin, rooms with free beds first
func (s *FacilitySearchService) SearchEmergency(ctx context.Context, origin entities.Location) ([]entities.FacilityRecord, error) {
	ctx, span := observability.StartSpan(ctx, "search.emergency")
	defer span.End()

	if err := validateOrigin(origin); err != nil {
		return nil, err
	}
	if s.emergency == nil {
		return nil, apperrors.NewExternalError("emergency feed is not configured", nil)
	}

	items, err := s.emergency.FetchEmergencyRooms(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, asExternal(err, "emergency feed request failed")
	}
	if len(items) == 0 {
		return []entities.FacilityRecord{}, nil
	}

	reg, err := s.loadRegistry(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	results := RankEmergency(items, reg, origin)

	observability.SetSpanAttributes(span,
		attribute.Int("feed.items", len(items)),
		attribute.Int("search.results", len(results)),
	)
	observability.LoggerFromContext(ctx).Debug().
		Int("feed_items", len(items)).
		Int("results", len(results)).
		Msg("emergency search")

	return results, nil
}

// SearchPharmacies lists pharmacies within the radius, open ones first
func (s *FacilitySearchService) SearchPharmacies(ctx context.Context, q PharmacyQuery) ([]entities.FacilityRecord, error) {
	ctx, span := observability.StartSpan(ctx, "search.pharmacies")
	defer span.End()

	radius, err := normalizeRadius(q.RadiusKm)
	if err != nil {
		return nil, err
	}
	if err := validateOrigin(q.Origin); err != nil {
		return nil, err
	}
	if s.pharmacies == nil {
		return nil, apperrors.NewExternalError("pharmacy feed is not configured", nil)
	}

	items, err := s.pharmacies.FetchPharmacies(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, asExternal(err, "pharmacy feed request failed")
	}

	now := s.now().In(s.location)
	results := RankPharmacies(items, q.Origin, radius, now)

	observability.SetSpanAttributes(span,
		attribute.Float64("search.radius_km", radius),
		attribute.Int("feed.items", len(items)),
		attribute.Int("search.results", len(results)),
	)
	observability.LoggerFromContext(ctx).Debug().
		Float64("radius_km", radius).
		Int("feed_items", len(items)).
		Int("results", len(results)).
		Msg("pharmacy search")

	return results, nil
}

// CheckRegistry loads the registry once and returns it, for diagnostics.
func (s *FacilitySearchService) CheckRegistry(ctx context.Context) (*entities.Registry, error) {
	return s.loadRegistry(ctx)
}

func (s *FacilitySearchService) loadRegistry(ctx context.Context) (*entities.Registry, error) {
	if s.registry == nil {
		return nil, apperrors.NewDataUnavailableError("facility registry is not configured", nil)
	}
	reg, err := s.registry.Load(ctx)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDataUnavailableError("facility registry is unavailable", err)
	}
	return reg, nil
}

func validateOrigin(origin entities.Location) error {
	if !geo.ValidLatitude(origin.Latitude) {
		return apperrors.NewValidationError(fmt.Sprintf("lat must be between -90 and 90, got %v", origin.Latitude))
	}
	if !geo.ValidLongitude(origin.Longitude) {
		return apperrors.NewValidationError(fmt.Sprintf("lon must be between -180 and 180, got %v", origin.Longitude))
	}
	return nil
}

func normalizeRadius(r float64) (float64, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0, apperrors.NewValidationError("radius must be a non-negative number")
	}
	return r, nil
}

// asExternal keeps AppErrors from the feed client and wraps anything else.
func asExternal(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewExternalError(msg, err)
}
