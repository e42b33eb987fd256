package domain

// CodeCorrection overrides the ISO codes reported by the boundary feed.
type CodeCorrection struct {
	ISO2 string
	ISO3 string
}

// CorrectionTable maps a Natural Earth NAME to the codes to use instead of
// the feed's values.
type CorrectionTable map[string]CodeCorrection

// Corrections patches the two countries the 110m boundary file reports as
// "-99".
var Corrections = CorrectionTable{
	"France": {ISO2: "FR", ISO3: "FRA"},
	"Norway": {ISO2: "NO", ISO3: "NOR"},
}

// Apply returns the feature with corrected codes when its name is listed.
func (t CorrectionTable) Apply(f GeoFeature) GeoFeature {
	if fix, ok := t[f.Name]; ok {
		f.ISO2 = fix.ISO2
		f.ISO3 = fix.ISO3
	}
	return f
}
