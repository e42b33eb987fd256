package domain

// Thresholds for ClassifyRisk.
const (
	lowRiskMinGrowth = 2.0
	lowRiskMinGDP    = 1e11
)

// ClassifyRisk maps real GDP growth (percent) and GDP (US dollars) to a risk
// label. The checks run in a fixed order and a later match overrides an
// earlier one:
//
//	default                          Medium
//	growth < 0                       High
//	growth > 2.0 and gdp > 1e11      Low
//
// Growth of exactly zero, or strong growth in a small economy, stays Medium.
func ClassifyRisk(growth, gdp float64) Risk {
	risk := RiskMedium
	if growth < 0 {
		risk = RiskHigh
	}
	if growth > lowRiskMinGrowth && gdp > lowRiskMinGDP {
		risk = RiskLow
	}
	return risk
}
