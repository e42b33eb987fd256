package domain

// Outcome describes what the aggregator did with one boundary feature.
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"   // fresh statistics
	OutcomePreserved Outcome = "preserved" // no statistics, prior record kept
	OutcomeMissing   Outcome = "missing"   // no statistics and no prior record
)

// CountryOutcome records the aggregation outcome for one feature.
type CountryOutcome struct {
	Name    string
	ISO3    string
	Outcome Outcome
}

// AggregateResult is the joined country table plus per-outcome tallies.
type AggregateResult struct {
	Countries Countries
	Outcomes  []CountryOutcome
	Updated   int
	Preserved int
	Missing   int
}

// Aggregate joins boundary features with indicator values by ISO3 code, in
// feature order. A feature with a non-zero GDP or population gets a freshly
// derived record that keeps the hand-curated fields of its prior record.
// Otherwise the prior record is carried forward exactly as it was read, or
// the feature is counted as missing. Prior records whose name is not in
// features are dropped.
func Aggregate(features []GeoFeature, indicators IndicatorSet, prior Snapshot, corrections CorrectionTable) AggregateResult {
	var res AggregateResult
	res.Outcomes = make([]CountryOutcome, 0, len(features))

	for _, f := range features {
		f = corrections.Apply(f)

		gdp := indicators[IndicatorGDP].Value(f.ISO3)
		pop := indicators[IndicatorPopulation].Value(f.ISO3)
		previous, hasPrevious := prior.Lookup(f.Name)

		outcome := CountryOutcome{Name: f.Name, ISO3: f.ISO3}
		switch {
		case gdp != 0 || pop != 0:
			rec := BuildCountryRecord(f, indicators)
			if hasPrevious {
				if previous.Demographics.truthy() {
					rec.Demographics = previous.Demographics
				}
				if previous.DataYear.truthy() {
					rec.DataYear = previous.DataYear
				}
			}
			res.Countries.Set(f.Name, rec)
			res.Updated++
			outcome.Outcome = OutcomeUpdated
		case hasPrevious:
			res.Countries.carry(prior.countries, f.Name)
			res.Preserved++
			outcome.Outcome = OutcomePreserved
		default:
			res.Missing++
			outcome.Outcome = OutcomeMissing
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}
	return res
}

// BuildCountryRecord derives the display fields for a feature whose codes
// have already been corrected.
func BuildCountryRecord(f GeoFeature, indicators IndicatorSet) CountryRecord {
	gdp := indicators[IndicatorGDP].Value(f.ISO3)
	pop := indicators[IndicatorPopulation].Value(f.ISO3)
	growth := indicators[IndicatorGrowth].Value(f.ISO3)

	return CountryRecord{
		Name:       f.Name,
		Code:       f.ISO2,
		GDP:        FormatGDP(gdp),
		Population: FormatPopulation(pop),
		Growth:     FormatGrowth(growth),
		Segments: BuildSegments(
			indicators[IndicatorServices].Value(f.ISO3),
			indicators[IndicatorIndustry].Value(f.ISO3),
			indicators[IndicatorAgriculture].Value(f.ISO3),
		),
		ActiveUsers: FormatActiveUsers(pop),
		Risk:        ClassifyRisk(growth, gdp),
	}
}
