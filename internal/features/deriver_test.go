package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railtrace/internal/config"
	"railtrace/pkg/api"
)

func TestDeriveKnownValues(t *testing.T) {
	d := NewDeriver(config.Default().Quality)

	rec := api.ComponentRecord{
		ComponentID:          "ERC-0001",
		Type:                 api.TypeERC,
		AgeDays:              365.25,
		ServiceDays:          200,
		QualityIssues:        4,
		TotalMaintenanceCost: 8000,
		TotalScans:           100,
		AvgProcessingTimeMs:  250,
	}

	frame := d.Derive([]api.ComponentRecord{rec})
	require.Len(t, frame, 1)
	fv := frame[0]

	assert.Equal(t, "ERC-0001", fv.ComponentID)
	assert.InDelta(t, 1.0, fv.AgeYears, 1e-9)
	assert.InDelta(t, 0.5, fv.ScansPerDay, 1e-9)
	assert.InDelta(t, 0.5*365.25, fv.ScansPerYear, 1e-9)
	assert.InDelta(t, 0.04, fv.IssuesPerScan, 1e-9)
	assert.InDelta(t, 2000, fv.CostPerIssue, 1e-9)
	assert.InDelta(t, 0.2, fv.ReliabilityScore, 1e-9)
	assert.InDelta(t, 0.8, fv.EfficiencyScore, 1e-9)
	assert.False(t, fv.AgeRisk)
	assert.False(t, fv.UsageRisk)
}

func TestDeriveRiskFlags(t *testing.T) {
	d := NewDeriver(config.Default().Quality)

	old := api.ComponentRecord{AgeDays: 2200, ServiceDays: 2000}
	hot := api.ComponentRecord{ServiceDays: 100, TotalScans: 200}

	frame := d.Derive([]api.ComponentRecord{old, hot})

	assert.True(t, frame[0].AgeRisk, "age beyond 2190 days must flag")
	assert.False(t, frame[0].UsageRisk)

	assert.False(t, frame[1].AgeRisk)
	assert.True(t, frame[1].UsageRisk, "2 scans/day exceeds the yearly ceiling")
}

func TestDeriveZeroRecordProducesNoNaN(t *testing.T) {
	d := NewDeriver(config.Default().Quality)

	frame := d.Derive([]api.ComponentRecord{{ComponentID: "fresh"}})
	require.Len(t, frame, 1)
	fv := frame[0]

	for name, v := range map[string]float64{
		"age_years":       fv.AgeYears,
		"service_years":   fv.ServiceYears,
		"scans_per_day":   fv.ScansPerDay,
		"scans_per_year":  fv.ScansPerYear,
		"issues_per_scan": fv.IssuesPerScan,
		"cost_per_issue":  fv.CostPerIssue,
		"cost_per_year":   fv.CostPerYear,
		"reliability":     fv.ReliabilityScore,
		"efficiency":      fv.EfficiencyScore,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s must be finite", name)
	}
	assert.InDelta(t, 1.0, fv.ReliabilityScore, 1e-9)
}
