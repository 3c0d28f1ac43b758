// README: Best-effort TMAP traffic summary around a coordinate.
package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiURL         = "https://apis.openapi.sk.com/tmap/traffic"
	requestTimeout = 8 * time.Second
	maxCritical    = 10
)

// Summary is the compact road-congestion snapshot attached to responses.
// Informational only: the deterministic departure scan never reads it.
type Summary struct {
	TotalRoads    int            `json:"total_roads"`
	Counts        map[string]int `json:"counts"`
	CriticalRoads []string       `json:"critical_roads"`
}

// Client fetches traffic features from the TMAP open API. No app key means
// the feature is off and every call returns the empty summary.
type Client struct {
	appKey string
	http   *http.Client
	log    zerolog.Logger
}

func NewClient(appKey string, log zerolog.Logger) *Client {
	return &Client{
		appKey: appKey,
		http:   &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// Enabled reports whether the traffic feature is configured.
func (c *Client) Enabled() bool {
	return c.appKey != ""
}

// Summarize fetches and condenses traffic around the coordinate. Any failure
// degrades to the empty summary; a missing traffic block must never sink the
// recommendation it decorates.
func (c *Client) Summarize(ctx context.Context, lat, lng float64) Summary {
	if !c.Enabled() {
		return emptySummary()
	}

	raw, err := c.fetch(ctx, lat, lng)
	if err != nil {
		c.log.Warn().Err(err).Msg("traffic fetch failed")
		return emptySummary()
	}
	return summarize(raw)
}

type trafficResponse struct {
	Features []struct {
		Geometry struct {
			Type string `json:"type"`
		} `json:"geometry"`
		Properties struct {
			Name        string      `json:"name"`
			Congestion  looseString `json:"congestion"`
			Description string      `json:"description"`
		} `json:"properties"`
	} `json:"features"`
}

// looseString tolerates the API sending congestion as either a number or a
// string.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	*l = looseString(strings.Trim(string(b), `"`))
	return nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (*trafficResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("version", "1")
	params.Set("centerLat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("centerLon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("reqCoordType", "WGS84GEO")
	params.Set("resCoordType", "WGS84GEO")
	params.Set("trafficType", "AUTO")
	params.Set("zoomLevel", "15")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("appKey", c.appKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmap status %d", resp.StatusCode)
	}

	var parsed trafficResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func summarize(raw *trafficResponse) Summary {
	s := emptySummary()
	for _, feature := range raw.Features {
		if feature.Geometry.Type != "LineString" {
			continue
		}
		s.TotalRoads++

		level := string(feature.Properties.Congestion)
		if level == "" {
			level = "0"
		}
		if _, ok := s.Counts[level]; ok {
			s.Counts[level]++
		}

		name := feature.Properties.Name
		if name == "" {
			name = "알 수 없음"
		}
		// Levels 3 (congested) and 4 (heavily congested) make the critical list.
		if n, err := strconv.Atoi(level); err == nil && n >= 3 &&
			feature.Properties.Description != "" && len(s.CriticalRoads) < maxCritical {
			s.CriticalRoads = append(s.CriticalRoads, name+": "+feature.Properties.Description)
		}
	}
	return s
}

func emptySummary() Summary {
	return Summary{
		Counts:        map[string]int{"0": 0, "1": 0, "2": 0, "3": 0, "4": 0},
		CriticalRoads: []string{},
	}
}
