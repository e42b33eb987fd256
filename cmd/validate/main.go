// Command validate checks a generated artifact against the invariants the
// globe dashboard relies on: record keys, ISO codes, sector segments,
// formatted statistics, risk labels, and event coordinates.
//
// Usage:
//
//	go run ./cmd/validate -artifact src/data/mockData.js \
//	  [-geojson ne_110m_admin_0_countries.geojson]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"github.com/orbis-globe/data-engine/internal/adapter/artifact"
	"github.com/orbis-globe/data-engine/internal/adapter/naturalearth"
	"github.com/orbis-globe/data-engine/internal/adapter/usgs"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	artifactPath := flag.String("artifact", "src/data/mockData.js", "path to the generated artifact")
	geojsonPath := flag.String("geojson", "", "optional local boundary file to check country coverage against")
	flag.Parse()

	os.Exit(run(os.Stdout, *artifactPath, *geojsonPath))
}

func run(out io.Writer, artifactPath, geojsonPath string) int {
	fmt.Fprintln(out, "=== Orbis Artifact Validation ===")
	fmt.Fprintln(out)

	a, err := artifact.Read(artifactPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRecords(a.Countries),
		validateSegments(a.Countries),
		validateFormats(a.Countries),
		validateEvents(a.GlobalEvents, a.SeismicData),
	}

	if geojsonPath != "" {
		data, err := os.ReadFile(geojsonPath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: read boundaries: %v\n", err)
			return 1
		}
		features, err := naturalearth.ParseFeatures(data, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			fmt.Fprintf(out, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, validateCoverage(a.Countries, features))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d countries, %d hazard events, %d seismic events\n",
		a.Countries.Len(), len(a.GlobalEvents), len(a.SeismicData))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Records ──

var isoAlpha2 = regexp.MustCompile(`^[A-Z]{2}$`)

func validateRecords(countries domain.Countries) *phase {
	p := &phase{name: "Phase 1: Country records"}
	if countries.Len() == 0 {
		p.errorf("artifact has no countries")
	}
	for _, name := range countries.Names() {
		if err := countries.DecodeErr(name); err != nil {
			p.errorf("%s: record does not match schema: %v", name, err)
			continue
		}
		rec, _ := countries.Get(name)
		if rec.Name != name {
			p.errorf("%s: name field %q does not match key", name, rec.Name)
		}
		if !isoAlpha2.MatchString(rec.Code) {
			p.errorf("%s: code %q is not ISO 3166-1 alpha-2", name, rec.Code)
		}
		if !rec.Risk.Valid() {
			p.errorf("%s: unknown risk %q", name, rec.Risk)
		}
	}
	return p
}

// ── Phase 2: Segments ──

func validateSegments(countries domain.Countries) *phase {
	p := &phase{name: "Phase 2: Sector segments"}
	want := []string{domain.SegmentAgriculture, domain.SegmentIndustry, domain.SegmentServices}
	for _, rec := range countries.Records() {
		if len(rec.Segments) != 3 {
			p.errorf("%s: %d segments, want 3", rec.Name, len(rec.Segments))
			continue
		}
		names := make([]string, 0, 3)
		for i, s := range rec.Segments {
			names = append(names, s.Name)
			if s.Value < 0 || s.Value > 100 {
				p.errorf("%s: segment %s value %v out of range", rec.Name, s.Name, s.Value)
			}
			if i > 0 && s.Value > rec.Segments[i-1].Value {
				p.errorf("%s: segments not sorted by value", rec.Name)
			}
		}
		slices.Sort(names)
		if !slices.Equal(names, want) {
			p.errorf("%s: segment names %v", rec.Name, names)
		}
	}
	return p
}

// ── Phase 3: Formatted statistics ──

var (
	gdpPattern         = regexp.MustCompile(`^\$\d+\.\d[TB]$`)
	populationPattern  = regexp.MustCompile(`^(\d+\.\d{2}B|\d+\.\dM)$`)
	growthPattern      = regexp.MustCompile(`^[+-]?\d+\.\d%$`)
	activeUsersPattern = regexp.MustCompile(`^(\d+\.\d[MK]|\d+)$`)
)

func validateFormats(countries domain.Countries) *phase {
	p := &phase{name: "Phase 3: Formatted statistics"}
	for _, rec := range countries.Records() {
		checks := []struct {
			field   string
			value   string
			pattern *regexp.Regexp
		}{
			{"gdp", rec.GDP, gdpPattern},
			{"population", rec.Population, populationPattern},
			{"growth", rec.Growth, growthPattern},
			{"activeUsers", rec.ActiveUsers, activeUsersPattern},
		}
		for _, c := range checks {
			if !c.pattern.MatchString(c.value) {
				p.errorf("%s: %s %q is malformed", rec.Name, c.field, c.value)
			}
		}
	}
	return p
}

// ── Phase 4: Events ──

func validateEvents(hazards, seismic []domain.HazardEvent) *phase {
	p := &phase{name: "Phase 4: Event coordinates"}
	check := func(kind string, i int, e domain.HazardEvent) {
		if e.ID == "" {
			p.errorf("%s[%d]: missing id", kind, i)
		}
		if e.Lat < -90 || e.Lat > 90 || e.Lng < -180 || e.Lng > 180 {
			p.errorf("%s[%d] %s: coordinates (%v, %v) out of range", kind, i, e.ID, e.Lat, e.Lng)
		}
	}
	for i, e := range hazards {
		check("globalEvents", i, e)
		if e.Type == "" {
			p.errorf("globalEvents[%d] %s: missing type", i, e.ID)
		}
	}
	for i, e := range seismic {
		check("seismicData", i, e)
		if e.Type != usgs.SeismicType {
			p.errorf("seismicData[%d] %s: type %q, want %q", i, e.ID, e.Type, usgs.SeismicType)
		}
	}
	return p
}

// ── Phase 5: Coverage ──

func validateCoverage(countries domain.Countries, features []domain.GeoFeature) *phase {
	p := &phase{name: "Phase 5: Boundary coverage"}
	known := make(map[string]bool, len(features))
	for _, f := range features {
		known[f.Name] = true
	}
	for _, name := range countries.Names() {
		if !known[name] {
			p.errorf("%s: no boundary feature with this name", name)
		}
	}
	return p
}
