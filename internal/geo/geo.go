// Package geo provides location lookups for the FARMA conversation.
//
// The Lookup interface is a best-effort collaborator: both operations return
// nil on a miss and also on any failure, so callers only branch on
// found/not-found.
package geo

import "context"

// Fallback names used when a place name cannot be split into parts.
const (
	UnknownDistrict = "Unknown District"
	UnknownState    = "Unknown State"
)

// Location is the result of a reverse geocode.
type Location struct {
	District     string
	State        string
	RawPlaceName string
}

// PlaceMatch is the best match of a free-text place search.
type PlaceMatch struct {
	Name string
	Lon  float64
	Lat  float64
}

// Lookup resolves coordinates and free text to places.
type Lookup interface {
	// ReverseGeocode returns the place at the coordinates, or nil.
	ReverseGeocode(ctx context.Context, lat, lon float64) *Location
	// SearchPlace returns the best match for query, or nil.
	SearchPlace(ctx context.Context, query string) *PlaceMatch
}

// NoopLookup never finds anything. It is used when no geocoding provider
// is configured.
type NoopLookup struct{}

// ReverseGeocode always returns nil.
func (NoopLookup) ReverseGeocode(ctx context.Context, lat, lon float64) *Location { return nil }

// SearchPlace always returns nil.
func (NoopLookup) SearchPlace(ctx context.Context, query string) *PlaceMatch { return nil }
