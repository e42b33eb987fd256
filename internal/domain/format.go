package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Segment names in the order they are built before sorting.
const (
	SegmentServices    = "Services"
	SegmentIndustry    = "Industry"
	SegmentAgriculture = "Agriculture"
)

// FormatGDP renders GDP in current US dollars as trillions above 1e12 and as
// billions otherwise, with one decimal: 2.5e12 -> "$2.5T", 8.4e10 -> "$84.0B".
func FormatGDP(gdp float64) string {
	if gdp > 1e12 {
		return fmt.Sprintf("$%.1fT", gdp/1e12)
	}
	return fmt.Sprintf("$%.1fB", gdp/1e9)
}

// FormatPopulation renders billions with two decimals above 1e9 and millions
// with one decimal otherwise: 1.41e9 -> "1.41B", 3.3e7 -> "33.0M".
func FormatPopulation(pop float64) string {
	if pop > 1e9 {
		return fmt.Sprintf("%.2fB", pop/1e9)
	}
	return fmt.Sprintf("%.1fM", pop/1e6)
}

// FormatGrowth renders annual GDP growth as a signed one-decimal percentage.
// Zero has no sign.
func FormatGrowth(growth float64) string {
	sign := ""
	if growth > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, growth)
}

// FormatActiveUsers estimates app users as 1% of the population.
func FormatActiveUsers(pop float64) string {
	users := pop * 0.01
	switch {
	case users >= 1e6:
		return fmt.Sprintf("%.1fM", users/1e6)
	case users >= 1e3:
		return fmt.Sprintf("%.1fK", users/1e3)
	default:
		return strconv.FormatInt(int64(math.Round(users)), 10)
	}
}

// BuildSegments returns the three sector shares rounded to whole percent and
// sorted by value, largest first. Ties keep the Services, Industry,
// Agriculture order.
func BuildSegments(services, industry, agriculture float64) []Segment {
	segments := []Segment{
		{Name: SegmentServices, Value: math.Round(services)},
		{Name: SegmentIndustry, Value: math.Round(industry)},
		{Name: SegmentAgriculture, Value: math.Round(agriculture)},
	}
	slices.SortStableFunc(segments, func(a, b Segment) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return segments
}
