package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUSA    = "United States of America"
	testFrance = "France"
	testNorway = "Norway"
	testTuvalu = "Tuvalu"
)

func testFeatures() []GeoFeature {
	return []GeoFeature{
		{Name: testUSA, ISO2: "US", ISO3: "USA"},
		{Name: testFrance, ISO2: "-99", ISO3: "-99"},
		{Name: testNorway, ISO2: "-99", ISO3: "-99"},
		{Name: testTuvalu, ISO2: "TV", ISO3: "TUV"},
	}
}

func testIndicators() IndicatorSet {
	return IndicatorSet{
		IndicatorGDP:         {"USA": 2.5e13, "FRA": 2.8e12, "NOR": 4.8e11},
		IndicatorPopulation:  {"USA": 3.3e8, "FRA": 6.8e7, "NOR": 5.4e6},
		IndicatorGrowth:      {"USA": 2.5, "FRA": 0.9, "NOR": -1.2},
		IndicatorAgriculture: {"USA": 0.9, "FRA": 1.6, "NOR": 1.8},
		IndicatorIndustry:    {"USA": 17.6, "FRA": 17.3, "NOR": 38.9},
		IndicatorServices:    {"USA": 77.6, "FRA": 70.3, "NOR": 50.4},
	}
}

func TestAggregate_FreshRecords(t *testing.T) {
	res := Aggregate(testFeatures(), testIndicators(), Snapshot{}, Corrections)

	assert.Equal(t, 3, res.Updated)
	assert.Equal(t, 0, res.Preserved)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, []string{testUSA, testFrance, testNorway}, res.Countries.Names())

	usa, ok := res.Countries.Get(testUSA)
	require.True(t, ok)
	want := CountryRecord{
		Name:       testUSA,
		Code:       "US",
		GDP:        "$25.0T",
		Population: "330.0M",
		Growth:     "+2.5%",
		Segments: []Segment{
			{Name: SegmentServices, Value: 78},
			{Name: SegmentIndustry, Value: 18},
			{Name: SegmentAgriculture, Value: 1},
		},
		ActiveUsers: "3.3M",
		Risk:        RiskLow,
	}
	if diff := cmp.Diff(want, usa); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_CodeCorrections(t *testing.T) {
	res := Aggregate(testFeatures(), testIndicators(), Snapshot{}, Corrections)

	france, ok := res.Countries.Get(testFrance)
	require.True(t, ok)
	assert.Equal(t, "FR", france.Code)
	assert.Equal(t, "$2.8T", france.GDP)

	norway, ok := res.Countries.Get(testNorway)
	require.True(t, ok)
	assert.Equal(t, "NO", norway.Code)
	assert.Equal(t, RiskHigh, norway.Risk)
}

func TestAggregate_CorrectionsOverrideFeedCodes(t *testing.T) {
	features := []GeoFeature{{Name: testFrance, ISO2: "XX", ISO3: "XXX"}}
	res := Aggregate(features, testIndicators(), Snapshot{}, Corrections)

	france, ok := res.Countries.Get(testFrance)
	require.True(t, ok)
	assert.Equal(t, "FR", france.Code)
}

func TestAggregate_PreservesCuratedFields(t *testing.T) {
	var prior Countries
	prior.Set(testUSA, CountryRecord{
		Name:         testUSA,
		Code:         "US",
		GDP:          "$20.0T",
		Demographics: RawValue(`{"age":{"0-14":18}}`),
		DataYear:     RawValue("2022"),
	})

	res := Aggregate(testFeatures(), testIndicators(), NewSnapshot(prior), Corrections)

	usa, ok := res.Countries.Get(testUSA)
	require.True(t, ok)
	assert.Equal(t, "$25.0T", usa.GDP, "fresh values replace prior ones")
	assert.Equal(t, RawValue(`{"age":{"0-14":18}}`), usa.Demographics)
	assert.Equal(t, RawValue("2022"), usa.DataYear)
}

func TestAggregate_SkipsEmptyCuratedFields(t *testing.T) {
	var prior Countries
	require.NoError(t, json.Unmarshal([]byte(`{
		"United States of America": {"name": "United States of America", "demographics": {}, "dataYear": 0}
	}`), &prior))

	res := Aggregate(testFeatures(), testIndicators(), NewSnapshot(prior), Corrections)

	usa, ok := res.Countries.Get(testUSA)
	require.True(t, ok)
	assert.Equal(t, RawValue("{}"), usa.Demographics, "an empty object is still set")
	assert.Empty(t, usa.DataYear, "a zero year counts as unset")
}

func TestAggregate_CarriesDecodedPriorAsWritten(t *testing.T) {
	prior := []byte(`{"Tuvalu":{"name":"Tuvalu","code":"TV","risk":"Medium","motto":"Tuvalu mo te Atua","growth":3.9}}`)
	var countries Countries
	require.NoError(t, json.Unmarshal(prior, &countries))
	snap := NewSnapshot(countries)
	assert.Equal(t, []string{testTuvalu}, snap.Malformed())
	require.Error(t, snap.DecodeErr(testTuvalu))

	res := Aggregate(testFeatures(), testIndicators(), snap, Corrections)
	assert.Equal(t, 1, res.Preserved)

	out, err := json.Marshal(res.Countries)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Tuvalu":{"name":"Tuvalu","code":"TV","risk":"Medium","motto":"Tuvalu mo te Atua","growth":3.9}`)
}

func TestAggregate_CarriesPriorWhenNoNewData(t *testing.T) {
	tuvalu := CountryRecord{
		Name:        testTuvalu,
		Code:        "TV",
		GDP:         "$0.1B",
		Population:  "0.0M",
		Growth:      "+3.9%",
		Segments:    BuildSegments(60, 10, 30),
		ActiveUsers: "113",
		Risk:        RiskMedium,
		DataYear:    RawValue("2021"),
	}
	var prior Countries
	prior.Set(testTuvalu, tuvalu)

	res := Aggregate(testFeatures(), testIndicators(), NewSnapshot(prior), Corrections)

	assert.Equal(t, 1, res.Preserved)
	assert.Equal(t, 0, res.Missing)
	got, ok := res.Countries.Get(testTuvalu)
	require.True(t, ok)
	if diff := cmp.Diff(tuvalu, got); diff != "" {
		t.Fatalf("carried record changed (-want +got):\n%s", diff)
	}
}

func TestAggregate_DropsPriorAbsentFromFeed(t *testing.T) {
	var prior Countries
	prior.Set("Atlantis", CountryRecord{Name: "Atlantis", Code: "AT"})

	res := Aggregate(testFeatures(), testIndicators(), NewSnapshot(prior), Corrections)

	_, ok := res.Countries.Get("Atlantis")
	assert.False(t, ok)
	assert.Equal(t, 3, res.Countries.Len())
}

func TestAggregate_FailedIndicatorDefaultsToZero(t *testing.T) {
	indicators := testIndicators()
	delete(indicators, IndicatorServices)

	res := Aggregate(testFeatures(), indicators, Snapshot{}, Corrections)

	assert.Equal(t, 3, res.Updated)
	usa, ok := res.Countries.Get(testUSA)
	require.True(t, ok)
	assert.Equal(t, []Segment{
		{Name: SegmentIndustry, Value: 18},
		{Name: SegmentAgriculture, Value: 1},
		{Name: SegmentServices, Value: 0},
	}, usa.Segments)
}

func TestAggregate_OutcomesFollowFeedOrder(t *testing.T) {
	res := Aggregate(testFeatures(), testIndicators(), Snapshot{}, Corrections)

	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, CountryOutcome{Name: testUSA, ISO3: "USA", Outcome: OutcomeUpdated}, res.Outcomes[0])
	assert.Equal(t, CountryOutcome{Name: testFrance, ISO3: "FRA", Outcome: OutcomeUpdated}, res.Outcomes[1])
	assert.Equal(t, CountryOutcome{Name: testTuvalu, ISO3: "TUV", Outcome: OutcomeMissing}, res.Outcomes[3])
}

func TestAggregate_Idempotent(t *testing.T) {
	first := Aggregate(testFeatures(), testIndicators(), Snapshot{}, Corrections)
	second := Aggregate(testFeatures(), testIndicators(), NewSnapshot(first.Countries), Corrections)

	a, err := json.Marshal(first.Countries)
	require.NoError(t, err)
	b, err := json.Marshal(second.Countries)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_IsolatedFromSource(t *testing.T) {
	var src Countries
	src.Set(testUSA, CountryRecord{Name: testUSA, GDP: "$1.0T"})
	snap := NewSnapshot(src)

	src.Set(testUSA, CountryRecord{Name: testUSA, GDP: "$9.9T"})

	rec, ok := snap.Lookup(testUSA)
	require.True(t, ok)
	assert.Equal(t, "$1.0T", rec.GDP)
	assert.Equal(t, 1, snap.Len())
}
