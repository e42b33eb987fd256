// Package usgs fetches recent earthquakes from a USGS GeoJSON summary feed.
package usgs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/orbis-globe/data-engine/internal/adapter/upstream"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// SeismicType is the event type of every earthquake.
const SeismicType = "Seismic"

// Client reads one summary feed.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for a summary feed URL such as 2.5_day.geojson.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchEarthquakes returns the feed's events in feed order.
func (c *Client) FetchEarthquakes(ctx context.Context) ([]domain.HazardEvent, error) {
	body, err := upstream.Get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch earthquakes: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode earthquakes: %v", domain.ErrMalformedResponse, err)
	}

	events := make([]domain.HazardEvent, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			c.logger.Debug("skipping earthquake without point geometry", "id", f.ID)
			continue
		}
		events = append(events, project(f, pt))
	}
	return events, nil
}

func project(f *geojson.Feature, pt orb.Point) domain.HazardEvent {
	ev := domain.HazardEvent{
		ID:   featureID(f),
		Type: SeismicType,
		Lat:  pt.Lat(),
		Lng:  pt.Lon(),
	}
	ev.Location, _ = f.Properties["place"].(string)
	if ms, ok := f.Properties["time"].(float64); ok {
		ev.Timestamp = int64(ms)
	}
	if mag, ok := f.Properties["mag"].(float64); ok {
		ev.Val = &mag
		ev.Title = Title(mag)
	} else {
		ev.Title = "Earthquake"
	}
	return ev
}

// Title renders a magnitude the way the globe labels it, e.g. "M 4.5 Earthquake".
func Title(mag float64) string {
	return "M " + strconv.FormatFloat(mag, 'f', -1, 64) + " Earthquake"
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
