package feeds

import (
	"context"
	"net/url"
	"strconv"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	"github.com/zatekoja/carefinder/backend/internal/domain/providers"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/clients/publicdata"
	"github.com/zatekoja/carefinder/backend/pkg/config"
)

// itemFetcher is the part of publicdata.Client the feeds depend on
type itemFetcher interface {
	FetchItems(ctx context.Context, req publicdata.Request) ([]entities.RawFeedItem, error)
}

// EmergencyFeed reads real-time emergency room bed availability for one region.
type EmergencyFeed struct {
	client   itemFetcher
	endpoint string
	key      string
	region   string
	district string
	rows     int
}

// NewEmergencyFeed creates the emergency bed feed adapter
func NewEmergencyFeed(client itemFetcher, cfg *config.PublicDataConfig) providers.EmergencyFeedProvider {
	return &EmergencyFeed{
		client:   client,
		endpoint: cfg.EmergencyURL,
		key:      cfg.EmergencyKey,
		region:   cfg.Region,
		district: cfg.District,
		rows:     cfg.NumOfRows,
	}
}

// FetchEmergencyRooms returns the raw emergency room items
func (f *EmergencyFeed) FetchEmergencyRooms(ctx context.Context) ([]entities.RawFeedItem, error) {
	return f.client.FetchItems(ctx, publicdata.Request{
		Feed:       "emergency",
		Endpoint:   f.endpoint,
		ServiceKey: f.key,
		Params: url.Values{
			"STAGE1":    {f.region},
			"STAGE2":    {f.district},
			"pageNo":    {"1"},
			"numOfRows": {strconv.Itoa(f.rows)},
		},
	})
}

// PharmacyFeed reads the pharmacy directory, with opening hours and coordinates,
// for one region.
type PharmacyFeed struct {
	client   itemFetcher
	endpoint string
	key      string
	region   string
	district string
	rows     int
}

// NewPharmacyFeed creates the pharmacy directory feed adapter
func NewPharmacyFeed(client itemFetcher, cfg *config.PublicDataConfig) providers.PharmacyFeedProvider {
	return &PharmacyFeed{
		client:   client,
		endpoint: cfg.PharmacyURL,
		key:      cfg.PharmacyKey,
		region:   cfg.Region,
		district: cfg.District,
		rows:     cfg.NumOfRows,
	}
}

// FetchPharmacies returns the raw pharmacy items
func (f *PharmacyFeed) FetchPharmacies(ctx context.Context) ([]entities.RawFeedItem, error) {
	return f.client.FetchItems(ctx, publicdata.Request{
		Feed:       "pharmacy",
		Endpoint:   f.endpoint,
		ServiceKey: f.key,
		Params: url.Values{
			"Q0":        {f.region},
			"Q1":        {f.district},
			"pageNo":    {"1"},
			"numOfRows": {strconv.Itoa(f.rows)},
		},
	})
}
