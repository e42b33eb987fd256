// Package eonet fetches open natural hazard events from NASA EONET.
package eonet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/orbis-globe/data-engine/internal/adapter/upstream"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// UnknownType is used for events that carry no category.
const UnknownType = "Unknown"

// Client queries the EONET events endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the events URL, query string included.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchEvents returns the open events in feed order. Events without any
// geometry are dropped.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.HazardEvent, error) {
	body, err := upstream.Get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch hazard events: %w", err)
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode hazard events: %v", domain.ErrMalformedResponse, err)
	}

	events := make([]domain.HazardEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev, ok := project(e)
		if !ok {
			c.logger.Debug("skipping hazard event without geometry", "id", e.ID)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func project(e event) (domain.HazardEvent, bool) {
	if len(e.Geometry) == 0 {
		return domain.HazardEvent{}, false
	}
	first := e.Geometry[0]
	if first.Geometry == nil {
		return domain.HazardEvent{}, false
	}
	pt, ok := position(first.Geometry.Geometry())
	if !ok {
		return domain.HazardEvent{}, false
	}

	typ := UnknownType
	if len(e.Categories) > 0 && e.Categories[0].Title != "" {
		typ = e.Categories[0].Title
	}

	return domain.HazardEvent{
		ID:    e.ID,
		Title: e.Title,
		Type:  typ,
		Lat:   pt.Lat(),
		Lng:   pt.Lon(),
		Date:  first.Date,
	}, true
}

// position reduces a geometry to one marker position. Points are used as is,
// anything else collapses to the center of its bounding box.
func position(g orb.Geometry) (orb.Point, bool) {
	switch v := g.(type) {
	case nil:
		return orb.Point{}, false
	case orb.Point:
		return v, true
	default:
		b := g.Bound()
		if b == (orb.Bound{}) {
			return orb.Point{}, false
		}
		return b.Center(), true
	}
}

type eventsResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Categories []category `json:"categories"`
	Geometry   []geometry `json:"geometry"`
}

type category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// geometry is one dated observation. The GeoJSON type and coordinates share
// the object with the date.
type geometry struct {
	Date     string
	Geometry *geojson.Geometry
}

func (g *geometry) UnmarshalJSON(data []byte) error {
	var meta struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	g.Date = meta.Date

	// An unrecognized geometry only drops this event.
	var geom geojson.Geometry
	if err := json.Unmarshal(data, &geom); err != nil {
		g.Geometry = nil
		return nil
	}
	g.Geometry = &geom
	return nil
}
