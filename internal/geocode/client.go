// Package geocode resolves a map coordinate into a neighborhood label
// using the Google Geocoding API. Resolution failures degrade to sentinel
// labels and never propagate: a station must still be creatable when the
// geocoder is down.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patimap/backend/internal/observability"
)

// Fallback area labels. AreaNoMatch and AreaNoResults mean the service
// answered but had no usable data for the coordinate; AreaError means the
// lookup itself failed and could be retried.
const (
	AreaNoMatch   = "Mahalle bulunamadı"
	AreaNoResults = "Mahalle alınamadı"
	AreaError     = "Mahalle alınırken hata oluştu"
)

// componentPrecedence is the order in which address component types are
// considered for the area label. The first component carrying the first
// matching type wins.
var componentPrecedence = []string{
	"neighborhood",
	"sublocality",
	"administrative_area_level_4",
	"locality",
}

// Client implements reverse geocoding against the Google Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a geocoding client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		metrics: metrics,
		logger:  logger,
	}
}

// ResolveArea converts a coordinate into a neighborhood label. It never
// returns an error: failures are logged, counted, and mapped to one of the
// fallback labels, so the returned string is always non-empty.
func (c *Client) ResolveArea(ctx context.Context, lat, lon float64) string {
	start := time.Now()
	area, outcome := c.resolve(ctx, lat, lon)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	return area
}

func (c *Client) resolve(ctx context.Context, lat, lon float64) (area, outcome string) {
	params := url.Values{
		"latlng": {fmt.Sprintf("%f,%f", lat, lon)},
		"key":    {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("geocode request build failed", "error", err)
		return AreaError, "error"
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("geocode request failed", "error", err)
		return AreaError, "error"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("geocode API error", "status", resp.StatusCode)
		return AreaError, "error"
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error("geocode response decode failed", "error", err)
		return AreaError, "error"
	}

	if len(body.Results) == 0 {
		return AreaNoResults, "empty"
	}

	for _, wanted := range componentPrecedence {
		for _, comp := range body.Results[0].AddressComponents {
			if comp.hasType(wanted) {
				return comp.LongName, "resolved"
			}
		}
	}
	return AreaNoMatch, "no_match"
}

// Google Geocoding API response types.

type response struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

type result struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (a addressComponent) hasType(t string) bool {
	for _, have := range a.Types {
		if have == t {
			return true
		}
	}
	return false
}
