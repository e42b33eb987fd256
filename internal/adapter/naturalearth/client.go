// Package naturalearth loads the country boundary FeatureCollection that
// defines which countries appear in the artifact.
package naturalearth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/orbis-globe/data-engine/internal/adapter/upstream"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// Property keys in the Natural Earth admin-0 file.
const (
	propName = "NAME"
	propISO2 = "ISO_A2"
	propISO3 = "ISO_A3"
)

// Client fetches the boundary file.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a boundary client for the GeoJSON at url.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchCountries returns one GeoFeature per named feature, in file order.
// Any error here is fatal to the run: without the geography there is no
// country list to build.
func (c *Client) FetchCountries(ctx context.Context) ([]domain.GeoFeature, error) {
	body, err := upstream.Get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch boundaries: %w", err)
	}
	features, err := ParseFeatures(body, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Info("boundaries loaded", "features", len(features))
	return features, nil
}

// ParseFeatures decodes a boundary FeatureCollection. Features without a
// NAME are skipped.
func ParseFeatures(body []byte, logger *slog.Logger) ([]domain.GeoFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode boundaries: %v", domain.ErrMalformedResponse, err)
	}

	features := make([]domain.GeoFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := stringProp(f.Properties, propName)
		if name == "" {
			logger.Debug("skipping unnamed boundary feature", "index", i)
			continue
		}
		features = append(features, domain.GeoFeature{
			Name:     name,
			ISO2:     stringProp(f.Properties, propISO2),
			ISO3:     stringProp(f.Properties, propISO3),
			Geometry: f.Geometry,
		})
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: boundary file has no named features", domain.ErrMalformedResponse)
	}
	return features, nil
}

func stringProp(p geojson.Properties, key string) string {
	s, _ := p[key].(string)
	return s
}
