package geocoder

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/resqdesk/resqdesk-api/schema"
)

//go:generate mockgen -destination=../../mocks/geocoder.go -package=mocks github.com/resqdesk/resqdesk-api/external/geocoder Geocoder

var (
	ErrNoResult      = fmt.Errorf("no geocoding result")
	ErrEmptyLocation = fmt.Errorf("empty location")
)

// Geocoder resolves the free-text location of an incident
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*schema.Coordinates, error)
}

type googleGeocoder struct {
	client *maps.Client
	region string
}

// New returns a google maps geocoder. baseURL is only set by tests.
func New(apiKey, region, baseURL string) (Geocoder, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &googleGeocoder{
		client: client,
		region: region,
	}, nil
}

func (g *googleGeocoder) Geocode(ctx context.Context, location string) (*schema.Coordinates, error) {
	if strings.TrimSpace(location) == "" {
		return nil, ErrEmptyLocation
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  location,
		Region:   g.region,
		Language: "en",
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNoResult
	}

	return &schema.Coordinates{
		Latitude:         results[0].Geometry.Location.Lat,
		Longitude:        results[0].Geometry.Location.Lng,
		FormattedAddress: results[0].FormattedAddress,
	}, nil
}
