package failure

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railtrace/internal/config"
	"railtrace/internal/features"
	"railtrace/pkg/api"
)

func testFleet() []api.ComponentRecord {
	return []api.ComponentRecord{
		{ComponentID: "ERC-young", Type: api.TypeERC, AgeDays: 100, ServiceDays: 90, TotalScans: 40, ScanCount: 40},
		{ComponentID: "RPD-mid", Type: api.TypeRPD, AgeDays: 900, ServiceDays: 850, QualityIssues: 2, TotalMaintenanceCost: 6000, TotalScans: 300, ScanCount: 300, AvgProcessingTimeMs: 300},
		{ComponentID: "LNR-worn", Type: api.TypeLNR, AgeDays: 1800, ServiceDays: 1750, QualityIssues: 5, TotalMaintenanceCost: 30000, TotalScans: 900, ScanCount: 900, AvgProcessingTimeMs: 500},
		{ComponentID: "ERC-failing", Type: api.TypeERC, AgeDays: 2100, ServiceDays: 2050, QualityIssues: 9, TotalMaintenanceCost: 48000, TotalScans: 1500, ScanCount: 1500, AvgProcessingTimeMs: 800},
	}
}

func newTestPredictor(seed int64) (*Predictor, *config.Config) {
	cfg := config.Default()
	return NewPredictor(cfg.Maintenance, cfg.Cost, rand.New(rand.NewSource(seed))), cfg
}

func TestPredictEmptyFleet(t *testing.T) {
	p, _ := newTestPredictor(1)
	out, err := p.Predict(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPredictBounds(t *testing.T) {
	p, cfg := newTestPredictor(42)
	records := testFleet()
	frame := features.NewDeriver(cfg.Quality).Derive(records)

	out, err := p.Predict(records, frame)
	require.NoError(t, err)
	require.Len(t, out, len(records))

	for _, pred := range out {
		assert.GreaterOrEqual(t, pred.DaysToFailure, 1, "%s", pred.ComponentID)
		assert.GreaterOrEqual(t, pred.FailureProbability, 0.0)
		assert.LessOrEqual(t, pred.FailureProbability, 0.95)
		assert.GreaterOrEqual(t, pred.Confidence, 0.60)
		assert.LessOrEqual(t, pred.Confidence, 0.95)
		assert.Greater(t, pred.EstimatedMaintenanceCost, 0.0)
		assert.NotEmpty(t, pred.PredictedFailureDate)
	}
}

func TestPredictDerivedFieldsConsistent(t *testing.T) {
	p, cfg := newTestPredictor(42)
	records := testFleet()
	frame := features.NewDeriver(cfg.Quality).Derive(records)

	out, err := p.Predict(records, frame)
	require.NoError(t, err)

	for _, pred := range out {
		days := pred.DaysToFailure

		var wantUrgency string
		switch {
		case days <= cfg.Maintenance.EmergencyDays:
			wantUrgency = api.UrgencyEmergency
		case days <= cfg.Maintenance.UrgentDays:
			wantUrgency = api.UrgencyUrgent
		case days <= cfg.Maintenance.PlannedDays:
			wantUrgency = api.UrgencyPlanned
		default:
			wantUrgency = api.UrgencyRoutine
		}
		assert.Equal(t, wantUrgency, pred.Urgency, "%s at %d days", pred.ComponentID, days)

		var wantType string
		switch {
		case days <= 30:
			wantType = "Replacement"
		case days <= 90:
			wantType = "Preventive"
		default:
			wantType = "Routine"
		}
		assert.Equal(t, wantType, pred.MaintenanceType)

		date, err := time.Parse("2006-01-02", pred.PredictedFailureDate)
		require.NoError(t, err)
		expected := time.Now().AddDate(0, 0, days)
		assert.WithinDuration(t, expected, date, 48*time.Hour)
	}
}

func TestPredictSortedByUrgencyThenDays(t *testing.T) {
	p, cfg := newTestPredictor(7)
	records := testFleet()
	frame := features.NewDeriver(cfg.Quality).Derive(records)

	out, err := p.Predict(records, frame)
	require.NoError(t, err)

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		pp, pc := api.UrgencyPriority(prev.Urgency), api.UrgencyPriority(cur.Urgency)
		if pp == pc {
			assert.LessOrEqual(t, prev.DaysToFailure, cur.DaysToFailure)
		} else {
			assert.Less(t, pp, pc)
		}
	}
}

func TestPredictDeterministicForSeed(t *testing.T) {
	records := testFleet()
	cfg := config.Default()
	frame := features.NewDeriver(cfg.Quality).Derive(records)

	p1, _ := newTestPredictor(99)
	p2, _ := newTestPredictor(99)

	out1, err := p1.Predict(records, frame)
	require.NoError(t, err)
	out2, err := p2.Predict(records, frame)
	require.NoError(t, err)

	require.Len(t, out2, len(out1))
	for i := range out1 {
		assert.Equal(t, out1[i].ComponentID, out2[i].ComponentID)
		assert.Equal(t, out1[i].DaysToFailure, out2[i].DaysToFailure)
		assert.Equal(t, out1[i].FailureProbability, out2[i].FailureProbability)
		assert.Equal(t, out1[i].Urgency, out2[i].Urgency)
	}
}

func TestSynthesizeLabelAnchors(t *testing.T) {
	p, _ := newTestPredictor(5)

	labels := p.synthesizeLabels([]api.ComponentRecord{
		{ComponentID: "clean-old", AgeDays: 2500},                   // anchor floors at 365
		{ComponentID: "few-issues", AgeDays: 460, QualityIssues: 2}, // anchor 1000
		{ComponentID: "failing", AgeDays: 700, QualityIssues: 6},    // anchor floors at 30
	})
	require.Len(t, labels, 3)

	// Noise is 10% of the anchor, so labels stay near their anchors.
	assert.InDelta(t, 365, labels[0], 365*0.5)
	assert.InDelta(t, 1000, labels[1], 1000*0.5)
	assert.InDelta(t, 30, labels[2], 30*0.5)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 1.0)
	}
}

func TestFitRidgeRecoversLinearTrend(t *testing.T) {
	// y = 2*x0 + 3 exactly; the solver should interpolate it closely.
	rows := [][]float64{{1}, {2}, {3}, {4}}
	labels := []float64{5, 7, 9, 11}

	w, err := fitRidge(rows, labels)
	require.NoError(t, err)
	require.Len(t, w, 2)

	assert.InDelta(t, 2.0, w[0], 1e-3)
	assert.InDelta(t, 3.0, w[1], 1e-3)
	// Truncation to whole days can land one below the exact value.
	assert.InDelta(t, 8, predictRow(w, []float64{2.5}), 1)
}

func TestScalerHandlesConstantColumns(t *testing.T) {
	rows := [][]float64{{1, 7}, {2, 7}, {3, 7}}
	s := fitScaler(rows)
	scaled := s.transform(rows)

	for _, row := range scaled {
		assert.InDelta(t, 0.0, row[1], 1e-9, "constant column centers to zero")
	}
	assert.InDelta(t, -1.0, scaled[0][0], 1e-9)
	assert.InDelta(t, 1.0, scaled[2][0], 1e-9)
}
