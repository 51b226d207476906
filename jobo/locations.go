package jobo

import (
	"context"
	"net/url"
)

// LocationsClient accesses geocoding (GET /api/locations/geocode)
type LocationsClient struct {
	client *Client
}

// Geocode resolves a free-form location such as "London, UK" into
// structured locations with coordinates
func (l *LocationsClient) Geocode(ctx context.Context, location string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("location", location)

	var result GeocodeResult
	if err := l.client.get(ctx, "/api/locations/geocode", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
