// README: Address normalization via the Maps geocoding API with a Redis cache.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"github.com/khtml-hack/baekend/internal/types"
)

const (
	lookupTimeout = 3 * time.Second
	cacheTTL      = 24 * time.Hour
)

// Result is what the recommendation core consumes. A failed or unavailable
// lookup is not an error: Degraded is set, the original address is echoed
// back, and Coord stays nil so the core applies its documented fallbacks.
type Result struct {
	NormalizedAddress string       `json:"normalized_address"`
	Coord             *types.Point `json:"coord,omitempty"`
	Degraded          bool         `json:"degraded,omitempty"`
}

// Service wraps the Maps geocoding client. With no API key the service runs
// permanently degraded, which keeps local development working offline.
type Service struct {
	client *maps.Client
	cache  *redis.Client
	log    zerolog.Logger
}

func NewService(apiKey string, cache *redis.Client, log zerolog.Logger) (*Service, error) {
	s := &Service{cache: cache, log: log}
	if apiKey == "" {
		log.Warn().Msg("maps api key missing, geocoder running in degraded mode")
		return s, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	s.client = client
	return s, nil
}

// Normalize resolves an address to its canonical form and coordinates.
// Lookups are cached: trip endpoints repeat heavily (home, work, a handful
// of destinations), and geocoding quota is the most expensive call we make.
func (s *Service) Normalize(ctx context.Context, address string) Result {
	if address == "" {
		return Result{NormalizedAddress: address, Degraded: true}
	}
	if s.client == nil {
		return Result{NormalizedAddress: address, Degraded: true}
	}

	if cached, ok := s.fromCache(ctx, address); ok {
		return cached
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   "kr",
		Language: "ko",
	})
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("geocode lookup failed")
		return Result{NormalizedAddress: address, Degraded: true}
	}
	if len(results) == 0 {
		return Result{NormalizedAddress: address, Degraded: true}
	}

	top := results[0]
	res := Result{
		NormalizedAddress: top.FormattedAddress,
		Coord: &types.Point{
			Lat: top.Geometry.Location.Lat,
			Lng: top.Geometry.Location.Lng,
		},
	}
	s.toCache(ctx, address, res)
	return res
}

func (s *Service) fromCache(ctx context.Context, address string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(address)).Bytes()
	if err != nil {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

func (s *Service) toCache(ctx context.Context, address string, res Result) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(address), raw, cacheTTL).Err(); err != nil {
		s.log.Debug().Err(err).Msg("geocode cache write failed")
	}
}

func cacheKey(address string) string {
	return "geocode:" + address
}
