package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name     string
		growth   float64
		gdp      float64
		expected Risk
	}{
		{"negative growth is high even for large economy", -1.5, 5e12, RiskHigh},
		{"negative growth small economy", -0.1, 1e9, RiskHigh},
		{"strong growth large economy", 2.5, 2e11, RiskLow},
		{"strong growth small economy", 6.0, 5e10, RiskMedium},
		{"growth at threshold", 2.0, 5e12, RiskMedium},
		{"gdp at threshold", 3.0, 1e11, RiskMedium},
		{"zero growth", 0, 5e12, RiskMedium},
		{"modest growth", 1.2, 4e12, RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyRisk(tt.growth, tt.gdp))
		})
	}
}

func TestRiskValid(t *testing.T) {
	assert.True(t, RiskLow.Valid())
	assert.True(t, RiskMedium.Valid())
	assert.True(t, RiskHigh.Valid())
	assert.False(t, Risk("Severe").Valid())
	assert.False(t, Risk("").Valid())
}
