// Package failure estimates days-to-failure per component.
//
// The estimator is deliberately two-stage: heuristic anchor labels are
// synthesized from each component's current condition, then a regularized
// linear model is fit on standardized features and used to predict every
// component. The regression is a smoothing and interpolation mechanism over
// the heuristic anchors, not a model trained on observed failures; the
// downstream urgency and cost figures depend on the smoothed output, so
// both stages must stay in place.
package failure

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/confidence"
	"railtrace/pkg/util"
)

// ridgeLambda stabilizes the normal-equation solve on collinear batches.
const ridgeLambda = 1e-6

// Predictor fits the per-run failure model and derives urgency and cost.
type Predictor struct {
	maintenance config.MaintenanceConfig
	cost        config.CostConfig
	rng         *rand.Rand
	now         func() time.Time
}

// NewPredictor creates a predictor. The random source drives the synthetic
// label noise; callers seed it so runs are reproducible.
func NewPredictor(maintenance config.MaintenanceConfig, cost config.CostConfig, rng *rand.Rand) *Predictor {
	return &Predictor{
		maintenance: maintenance,
		cost:        cost,
		rng:         rng,
		now:         time.Now,
	}
}

// Predict synthesizes training labels, fits the smoother and predicts
// days-to-failure for every component. Output is sorted by urgency priority
// then days ascending.
func (p *Predictor) Predict(records []api.ComponentRecord, features []api.FeatureVector) ([]api.FailurePrediction, error) {
	if len(records) == 0 {
		return []api.FailurePrediction{}, nil
	}

	matrix := designMatrix(records)
	labels := p.synthesizeLabels(records)

	scaler := fitScaler(matrix)
	scaled := scaler.transform(matrix)

	weights, err := fitRidge(scaled, labels)
	if err != nil {
		return nil, fmt.Errorf("failure model fit: %w", err)
	}

	now := p.now()
	out := make([]api.FailurePrediction, 0, len(records))
	for i, rec := range records {
		days := predictRow(weights, scaled[i])
		if days < 1 {
			days = 1
		}

		urgency := p.urgencyFor(days)
		cost := p.cost.BaseCost(rec.Type) * p.cost.UrgencyMultiplier(urgency) * (1 + float64(rec.QualityIssues)*0.1)

		out = append(out, api.FailurePrediction{
			ComponentID:  rec.ComponentID,
			Type:         rec.Type,
			Manufacturer: rec.Manufacturer,
			TrackSection: rec.TrackSection,

			CurrentAgeDays:       int(rec.AgeDays),
			DaysToFailure:        days,
			PredictedFailureDate: now.AddDate(0, 0, days).Format("2006-01-02"),
			FailureProbability:   util.RoundScore(p.failureProbability(days)),
			Confidence:           util.RoundScore(confidence.FromIssueCount(rec.QualityIssues)),

			Urgency:                  urgency,
			EstimatedMaintenanceCost: util.RoundMoney(cost),
			ConditionScore:           util.RoundScore(1 / (1 + float64(rec.QualityIssues))),
			MaintenanceType:          maintenanceTypeFor(days),
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		pa, pb := api.UrgencyPriority(out[a].Urgency), api.UrgencyPriority(out[b].Urgency)
		if pa != pb {
			return pa < pb
		}
		return out[a].DaysToFailure < out[b].DaysToFailure
	})
	return out, nil
}

// synthesizeLabels assigns a heuristic days-to-failure anchor per component
// from its issue count, then perturbs it with Gaussian noise scaled to 10%
// of the anchor. Labels never drop below 1 day.
func (p *Predictor) synthesizeLabels(records []api.ComponentRecord) []float64 {
	labels := make([]float64, len(records))
	for i, rec := range records {
		var anchor float64
		switch {
		case rec.QualityIssues == 0:
			anchor = math.Max(365, 2190-rec.AgeDays)
		case rec.QualityIssues <= 2:
			anchor = math.Max(180, 1460-rec.AgeDays)
		default:
			anchor = math.Max(30, 730-rec.AgeDays)
		}

		anchor += p.rng.NormFloat64() * anchor * 0.1
		labels[i] = math.Max(1, anchor)
	}
	return labels
}

// failureProbability maps predicted days to the banded probability used by
// the original analysis, with seeded jitter, bounded to [0, 0.95].
func (p *Predictor) failureProbability(days int) float64 {
	var prob float64
	switch {
	case days <= 30:
		prob = 0.8 + p.uniform(-0.1, 0.1)
	case days <= 90:
		prob = 0.5 + p.uniform(-0.1, 0.1)
	case days <= 365:
		prob = 0.2 + p.uniform(-0.05, 0.1)
	default:
		prob = 0.05 + p.uniform(0, 0.05)
	}
	return util.Clamp(prob, 0, 0.95)
}

func (p *Predictor) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

func (p *Predictor) urgencyFor(days int) string {
	switch {
	case days <= p.maintenance.EmergencyDays:
		return api.UrgencyEmergency
	case days <= p.maintenance.UrgentDays:
		return api.UrgencyUrgent
	case days <= p.maintenance.PlannedDays:
		return api.UrgencyPlanned
	default:
		return api.UrgencyRoutine
	}
}

func maintenanceTypeFor(days int) string {
	switch {
	case days <= 30:
		return "Replacement"
	case days <= 90:
		return "Preventive"
	default:
		return "Routine"
	}
}

// designMatrix builds the raw feature rows: continuous usage and cost
// aggregates plus a one-hot encoding of the component type.
func designMatrix(records []api.ComponentRecord) [][]float64 {
	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = []float64{
			rec.AgeDays,
			rec.ServiceDays,
			float64(rec.ScanCount),
			float64(rec.QualityIssues),
			rec.TotalMaintenanceCost,
			rec.AvgProcessingTimeMs,
			oneHot(rec.Type == api.TypeERC),
			oneHot(rec.Type == api.TypeRPD),
			oneHot(rec.Type == api.TypeLNR),
		}
	}
	return rows
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
