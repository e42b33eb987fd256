package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// GeoFeature is one country from the boundary feed.
type GeoFeature struct {
	Name     string
	ISO2     string
	ISO3     string
	Geometry orb.Geometry
}

// IndicatorMap maps ISO3 codes to the latest value of one indicator.
type IndicatorMap map[string]float64

// Value returns the value for iso3, or 0 when absent.
func (m IndicatorMap) Value(iso3 string) float64 {
	return m[iso3]
}

// Indicator names a World Bank series used by the aggregator.
type Indicator struct {
	Key  string // short name used in logs and metrics
	Code string // World Bank series code
}

// Indicator keys.
const (
	IndicatorGDP         = "gdp"
	IndicatorPopulation  = "population"
	IndicatorGrowth      = "growth"
	IndicatorAgriculture = "agriculture"
	IndicatorIndustry    = "industry"
	IndicatorServices    = "services"
)

// Indicators lists the six series in fetch order.
var Indicators = []Indicator{
	{Key: IndicatorGDP, Code: "NY.GDP.MKTP.CD"},
	{Key: IndicatorPopulation, Code: "SP.POP.TOTL"},
	{Key: IndicatorGrowth, Code: "NY.GDP.MKTP.KD.ZG"},
	{Key: IndicatorAgriculture, Code: "NV.AGR.TOTL.ZS"},
	{Key: IndicatorIndustry, Code: "NV.IND.TOTL.ZS"},
	{Key: IndicatorServices, Code: "NV.SRV.TOTL.ZS"},
}

// IndicatorSet holds one IndicatorMap per indicator key. Missing keys behave
// like empty maps.
type IndicatorSet map[string]IndicatorMap

// HazardEvent is a normalized map overlay point. Planetary hazards carry Date,
// seismic events carry Timestamp (epoch milliseconds), Val and Location.
type HazardEvent struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Type      string   `json:"type" yaml:"type"`
	Lat       float64  `json:"lat" yaml:"lat"`
	Lng       float64  `json:"lng" yaml:"lng"`
	Date      string   `json:"date,omitempty" yaml:"date,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Val       *float64 `json:"val,omitempty" yaml:"val,omitempty"`
	Location  string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// Artifact is the complete generated data document.
type Artifact struct {
	GeneratedAt  time.Time     `json:"generatedAt" yaml:"-"`
	Countries    Countries     `json:"countryData" yaml:"countryData"`
	GlobalEvents []HazardEvent `json:"globalEvents" yaml:"globalEvents"`
	SeismicData  []HazardEvent `json:"seismicData" yaml:"seismicData"`
}

// Snapshot is a read-only view of the country table of a previous artifact.
type Snapshot struct {
	countries Countries
}

// NewSnapshot freezes a copy of countries.
func NewSnapshot(countries Countries) Snapshot {
	var c Countries
	for _, name := range countries.names {
		c.carry(countries, name)
	}
	return Snapshot{countries: c}
}

// Lookup returns the prior record stored under name.
func (s Snapshot) Lookup(name string) (CountryRecord, bool) {
	return s.countries.Get(name)
}

// Len returns the number of prior records.
func (s Snapshot) Len() int { return s.countries.Len() }

// Malformed lists, in document order, the prior records that did not match
// the record schema. They are still carried forward as written.
func (s Snapshot) Malformed() []string {
	var names []string
	for _, name := range s.countries.names {
		if s.countries.errs[name] != nil {
			names = append(names, name)
		}
	}
	return names
}

// DecodeErr returns the schema error for the prior record under name.
func (s Snapshot) DecodeErr(name string) error {
	return s.countries.DecodeErr(name)
}
