package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbis-globe/data-engine/internal/adapter/artifact"
	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/domain"
)

func validRecord(name, code string) domain.CountryRecord {
	return domain.CountryRecord{
		Name:        name,
		Code:        code,
		GDP:         "$335.5B",
		Population:  "19.6M",
		Growth:      "-0.2%",
		Segments:    domain.BuildSegments(57, 31, 4),
		ActiveUsers: "196.3K",
		Risk:        domain.RiskHigh,
	}
}

func writeArtifact(t *testing.T, countries domain.Countries, seismic []domain.HazardEvent) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mockData.js")
	_, err := artifact.Write(path, domain.Artifact{
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Countries:   countries,
		SeismicData: seismic,
	}, config.FormatJS)
	require.NoError(t, err)
	return path
}

func TestRun_Pass(t *testing.T) {
	var c domain.Countries
	c.Set("Chile", validRecord("Chile", "CL"))
	c.Set("India", validRecord("India", "IN"))
	path := writeArtifact(t, c, []domain.HazardEvent{{ID: "us1", Type: "Seismic", Lat: 10, Lng: 20}})

	var out bytes.Buffer
	assert.Equal(t, 0, run(&out, path, ""))
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_Fail(t *testing.T) {
	bad := validRecord("Chile", "-99")
	bad.Segments = bad.Segments[:2]
	bad.GDP = "335.5"

	var c domain.Countries
	c.Set("Chile", bad)
	path := writeArtifact(t, c, []domain.HazardEvent{{ID: "us1", Type: "Quake", Lat: 95, Lng: 20}})

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, path, ""))
	assert.Contains(t, out.String(), "Validation FAILED.")
	assert.Contains(t, out.String(), `code "-99"`)
	assert.Contains(t, out.String(), "2 segments")
	assert.Contains(t, out.String(), `gdp "335.5"`)
	assert.Contains(t, out.String(), "out of range")
}

func TestRun_MissingArtifact(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, filepath.Join(t.TempDir(), "absent.js"), ""))
	assert.Contains(t, out.String(), "FATAL")
}

func TestRun_OffSchemaRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockData.js")
	require.NoError(t, os.WriteFile(path, []byte(`// Generated at 2024-03-01T00:00:00Z

export const countryData = {
    "India": {"name": "India", "code": "IN", "gdp": 3570000000000}
};

export const globalEvents = [];

export const seismicData = [];
`), 0o644))

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, path, ""))
	assert.Contains(t, out.String(), "India: record does not match schema")
	assert.Contains(t, out.String(), "Records: 1 countries")
}

func TestRun_Coverage(t *testing.T) {
	var c domain.Countries
	c.Set("Chile", validRecord("Chile", "CL"))
	c.Set("Atlantis", validRecord("Atlantis", "AT"))
	path := writeArtifact(t, c, nil)

	geo := filepath.Join(t.TempDir(), "countries.geojson")
	require.NoError(t, os.WriteFile(geo, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"NAME":"Chile","ISO_A2":"CL","ISO_A3":"CHL"},"geometry":{"type":"Point","coordinates":[-70,-30]}}
	]}`), 0o644))

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, path, geo))
	assert.Contains(t, out.String(), "Atlantis: no boundary feature")
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CountryRecord)
		ok     bool
	}{
		{"valid", func(*domain.CountryRecord) {}, true},
		{"trillions", func(r *domain.CountryRecord) { r.GDP = "$27.4T" }, true},
		{"billions population", func(r *domain.CountryRecord) { r.Population = "1.41B" }, true},
		{"zero growth", func(r *domain.CountryRecord) { r.Growth = "0.0%" }, true},
		{"small user base", func(r *domain.CountryRecord) { r.ActiveUsers = "113" }, true},
		{"bad growth", func(r *domain.CountryRecord) { r.Growth = "2%" }, false},
		{"bad population", func(r *domain.CountryRecord) { r.Population = "1.4B" }, false},
		{"bad users", func(r *domain.CountryRecord) { r.ActiveUsers = "1.2G" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord("Chile", "CL")
			tt.mutate(&rec)
			var c domain.Countries
			c.Set(rec.Name, rec)
			assert.Equal(t, tt.ok, validateFormats(c).passed())
		})
	}
}
