// Command genmock builds an artifact from local fixture files instead of the
// live feeds, for dashboard development and offline demos. It runs the same
// aggregation as the refresh job with a fixed clock, so the output is
// reproducible.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -geojson testdata/ne_110m_admin_0_countries.geojson \
//	  -indicators testdata/indicators.json \
//	  -out src/data/mockData.js
//
// The indicators file maps World Bank series codes to ISO3 -> value:
//
//	{"NY.GDP.MKTP.CD": {"USA": 27360935000000}, "SP.POP.TOTL": {...}}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orbis-globe/data-engine/internal/adapter/artifact"
	"github.com/orbis-globe/data-engine/internal/adapter/naturalearth"
	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/domain"
)

var defaultGeneratedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// options are the parsed command-line flags.
type options struct {
	geojsonPath    string
	indicatorsPath string
	priorPath      string
	out            string
	format         string
	generatedAt    time.Time
}

func run() error {
	geojsonPath := flag.String("geojson", "", "local Natural Earth admin-0 GeoJSON file")
	indicatorsPath := flag.String("indicators", "", "JSON file of series code -> ISO3 -> value")
	priorPath := flag.String("prior", "", "optional previous artifact whose records and events are kept")
	out := flag.String("out", "", "output artifact path")
	format := flag.String("format", "", "artifact format: js, json or yaml (default from -out extension)")
	generatedAt := flag.String("generated-at", defaultGeneratedAt.Format(time.RFC3339), "fixed generation timestamp")
	flag.Parse()

	if *geojsonPath == "" || *indicatorsPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -geojson, -indicators, -out")
	}

	stamp, err := time.Parse(time.RFC3339, *generatedAt)
	if err != nil {
		return fmt.Errorf("parse -generated-at: %w", err)
	}

	return generate(os.Stdout, options{
		geojsonPath:    *geojsonPath,
		indicatorsPath: *indicatorsPath,
		priorPath:      *priorPath,
		out:            *out,
		format:         *format,
		generatedAt:    stamp,
	})
}

// generate writes the artifact described by o. Events come from the prior
// artifact when one is given, since there are no live feeds to fetch them.
func generate(w io.Writer, o options) error {
	domain.SetClock(clockwork.NewFakeClockAt(o.generatedAt))
	defer domain.SetClock(nil)

	outFormat, err := config.ResolveFormat(o.format, o.out)
	if err != nil {
		return err
	}

	geoData, err := os.ReadFile(o.geojsonPath)
	if err != nil {
		return fmt.Errorf("read boundaries: %w", err)
	}
	features, err := naturalearth.ParseFeatures(geoData, slog.Default())
	if err != nil {
		return err
	}

	indicators, err := loadIndicators(o.indicatorsPath)
	if err != nil {
		return err
	}

	var priorArtifact domain.Artifact
	if o.priorPath != "" {
		priorArtifact, err = artifact.Read(o.priorPath)
		if err != nil {
			return fmt.Errorf("read prior artifact: %w", err)
		}
	}
	prior := domain.NewSnapshot(priorArtifact.Countries)
	for _, name := range prior.Malformed() {
		slog.Warn("prior record does not match schema, kept as written", "country", name, "error", prior.DecodeErr(name))
	}

	res := domain.Aggregate(features, indicators, prior, domain.Corrections)
	n, err := artifact.Write(o.out, domain.Artifact{
		GeneratedAt:  domain.Now(),
		Countries:    res.Countries,
		GlobalEvents: priorArtifact.GlobalEvents,
		SeismicData:  priorArtifact.SeismicData,
	}, outFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %d countries (%d updated, %d preserved, %d missing), %d events, %d bytes -> %s\n",
		res.Countries.Len(), res.Updated, res.Preserved, res.Missing,
		len(priorArtifact.GlobalEvents)+len(priorArtifact.SeismicData), n, o.out)
	return nil
}

// loadIndicators reads the fixture and re-keys it from series codes to
// indicator keys. Unknown series are ignored.
func loadIndicators(path string) (domain.IndicatorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read indicators: %w", err)
	}
	var bySeries map[string]domain.IndicatorMap
	if err := json.Unmarshal(data, &bySeries); err != nil {
		return nil, fmt.Errorf("parse indicators: %w", err)
	}

	set := make(domain.IndicatorSet, len(domain.Indicators))
	for _, ind := range domain.Indicators {
		values, ok := bySeries[ind.Code]
		if !ok {
			slog.Warn("indicator missing from fixture", "indicator", ind.Code)
			values = domain.IndicatorMap{}
		}
		set[ind.Key] = values
	}
	return set, nil
}
