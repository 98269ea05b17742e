// Package search resolves free-text airport queries to positions.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/saviobatista/route-planner/internal/log"
	"googlemaps.github.io/maps"
)

const maxResults = 5

var (
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("search: empty query")

	airportCode = regexp.MustCompile(`^[A-Za-z0-9]{3,4}$`)
)

// Geocoder is the subset of *maps.Client used here.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Result is one airport candidate.
type Result struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// Searcher looks airports up through a geocoder.
type Searcher struct {
	geocoder Geocoder
	lg       *log.Logger
}

// New creates a Searcher backed by the Google Maps geocoding API.
func New(apiKey string, lg *log.Logger) (*Searcher, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("search: creating maps client: %w", err)
	}
	return NewWithGeocoder(client, lg), nil
}

// NewWithGeocoder creates a Searcher with a custom Geocoder (useful for testing)
func NewWithGeocoder(g Geocoder, lg *log.Logger) *Searcher {
	return &Searcher{geocoder: g, lg: lg}
}

// Search returns up to five airport candidates for query. Results tagged as
// airports by the geocoder are preferred; if there are none, every result
// is returned.
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	address := query
	if !strings.Contains(strings.ToLower(query), "airport") {
		address += " airport"
	}
	resp, err := s.geocoder.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("search: geocoding %q: %w", query, err)
	}

	var airports, others []Result
	for _, r := range resp {
		res := Result{
			Name:      resultName(query, r),
			Address:   r.FormattedAddress,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		}
		if hasType(r.Types, "airport") {
			airports = append(airports, res)
		} else {
			others = append(others, res)
		}
	}

	out := airports
	if len(out) == 0 {
		out = others
	}
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	s.lg.Debug("airport search", "query", query, "results", len(out))
	return out, nil
}

// resultName prefers the code the user typed, then the name of the airport
// component, then the formatted address.
func resultName(query string, r maps.GeocodingResult) string {
	if airportCode.MatchString(query) {
		return strings.ToUpper(query)
	}
	for _, comp := range r.AddressComponents {
		if hasType(comp.Types, "airport") {
			return comp.LongName
		}
	}
	return r.FormattedAddress
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
