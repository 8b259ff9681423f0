package providers

import (
	"context"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

// EmergencyFeedProvider fetches live emergency room bed availability
type EmergencyFeedProvider interface {
	FetchEmergencyRooms(ctx context.Context) ([]entities.RawFeedItem, error)
}

// PharmacyFeedProvider fetches the live pharmacy directory, including opening hours
// and coordinates for each pharmacy
type PharmacyFeedProvider interface {
	FetchPharmacies(ctx context.Context) ([]entities.RawFeedItem, error)
}
