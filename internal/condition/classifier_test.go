package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railtrace/internal/config"
	"railtrace/internal/features"
	"railtrace/pkg/api"
)

func classify(t *testing.T, cfg config.QualityConfig, records ...api.ComponentRecord) api.ConditionResult {
	t.Helper()
	frame := features.NewDeriver(cfg).Derive(records)
	return NewClassifier(cfg).Assess(records, frame)
}

func TestAssessLabelRules(t *testing.T) {
	cfg := config.Default().Quality
	cfg.Contamination = 0 // isolate the issue/age rules

	records := []api.ComponentRecord{
		{ComponentID: "pristine", AgeDays: 400, ServiceDays: 300},
		{ComponentID: "one-issue", AgeDays: 400, ServiceDays: 300, QualityIssues: 1},
		{ComponentID: "aged-good", AgeDays: 1300, ServiceDays: 1200},
		{ComponentID: "three-issues", AgeDays: 400, ServiceDays: 300, QualityIssues: 3},
		{ComponentID: "old-fair", AgeDays: 2000, ServiceDays: 1900},
		{ComponentID: "failing", AgeDays: 400, ServiceDays: 300, QualityIssues: 8},
	}

	result := classify(t, cfg, records...)
	require.Len(t, result.Conditions, 6)

	byID := map[string]string{}
	for _, c := range result.Conditions {
		byID[c.ComponentID] = c.Condition
	}

	assert.Equal(t, api.ConditionExcellent, byID["pristine"])
	assert.Equal(t, api.ConditionGood, byID["one-issue"])
	assert.Equal(t, api.ConditionGood, byID["aged-good"], "past 3 years without issues")
	assert.Equal(t, api.ConditionFair, byID["three-issues"])
	assert.Equal(t, api.ConditionFair, byID["old-fair"], "past 5 years without issues")
	assert.Equal(t, api.ConditionPoor, byID["failing"], "more than 5 issues always classifies Poor")

	assert.Equal(t, 1, result.Summary.Excellent)
	assert.Equal(t, 2, result.Summary.Good)
	assert.Equal(t, 2, result.Summary.Fair)
	assert.Equal(t, 1, result.Summary.Poor)
	assert.Equal(t, 0, result.Summary.AnomaliesDetected)
	assert.Equal(t, 6, result.TotalComponents)
}

func TestAssessFlagsOutlier(t *testing.T) {
	cfg := config.Default().Quality

	records := make([]api.ComponentRecord, 0, 11)
	for i := 0; i < 10; i++ {
		records = append(records, api.ComponentRecord{
			ComponentID:          "benign",
			AgeDays:              500,
			ServiceDays:          450,
			TotalMaintenanceCost: 1000,
			TotalScans:           50,
		})
	}
	records = append(records, api.ComponentRecord{
		ComponentID:          "outlier",
		AgeDays:              2500,
		ServiceDays:          2400,
		QualityIssues:        9,
		TotalMaintenanceCost: 60000,
		TotalScans:           5000,
	})

	result := classify(t, cfg, records...)

	var outlier *api.ConditionAssessment
	for i := range result.Conditions {
		if result.Conditions[i].ComponentID == "outlier" {
			outlier = &result.Conditions[i]
		}
	}
	require.NotNil(t, outlier)

	assert.True(t, outlier.IsAnomaly, "the extreme row scores most anomalous")
	assert.Equal(t, api.ConditionPoor, outlier.Condition)
	assert.GreaterOrEqual(t, result.Summary.AnomaliesDetected, 1)
}

func TestAssessSingleComponentNeverAnomalous(t *testing.T) {
	result := classify(t, config.Default().Quality, api.ComponentRecord{
		ComponentID:   "lonely",
		AgeDays:       2500,
		ServiceDays:   2400,
		QualityIssues: 9,
	})
	require.Len(t, result.Conditions, 1)

	assert.False(t, result.Conditions[0].IsAnomaly)
	assert.Equal(t, api.ConditionPoor, result.Conditions[0].Condition, "issue rule still applies")
}

func TestAssessEmptyBatch(t *testing.T) {
	result := classify(t, config.Default().Quality)
	assert.Empty(t, result.Conditions)
	assert.Equal(t, 0, result.TotalComponents)
}
