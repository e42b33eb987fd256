// Package domain models the per-country statistics and hazard events rendered
// by the Orbis globe dashboard.
//
// # Data Sources
//
// Country boundaries come from the Natural Earth 1:110m admin-0 GeoJSON file.
// Its feature order defines the iteration order of every run, and its NAME
// property is the key of the generated country table.
//
// Economic indicators come from the World Bank v2 API, one request per
// indicator for all countries with mrnev=1 (most recent non-empty value).
// Values are joined to boundary features by ISO 3166-1 alpha-3 code.
//
// Hazard events come from NASA EONET (open events) and the USGS 2.5+ daily
// earthquake feed.
//
// # Natural Earth Conventions
//
// The 110m file reports "-99" for ISO_A2 and ISO_A3 of France and Norway
// because of overseas territories. [Corrections] patches both before lookup.
//
// # Derived Fields
//
//	gdp:         "$2.5T" above one trillion, otherwise billions ("$84.0B")
//	population:  "1.41B" above one billion (two decimals), otherwise "33.0M"
//	growth:      "+2.3%", "-1.5%", "0.0%"
//	segments:    Services, Industry, Agriculture shares rounded to whole
//	             percent, sorted descending; they need not total 100
//	activeUsers: 1% of population with M/K suffix, bare integer below 1000
//	risk:        see [ClassifyRisk]
//
// demographics and dataYear are hand-curated. They are never computed, only
// carried over from the previous artifact.
package domain
