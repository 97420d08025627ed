// Package risk computes the weighted composite risk view of the fleet.
package risk

import (
	"math"
	"sort"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

// Scorer computes composite risk scores against configured weights and
// normalization ceilings.
type Scorer struct {
	cfg config.QualityConfig
}

// NewScorer creates a risk scorer.
func NewScorer(cfg config.QualityConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Assess scores every component and returns the assessments sorted by risk
// score descending. The sort is stable: equal scores keep snapshot order.
func (s *Scorer) Assess(records []api.ComponentRecord, features []api.FeatureVector) []api.RiskAssessment {
	out := make([]api.RiskAssessment, 0, len(records))
	for i, rec := range records {
		out = append(out, s.assessOne(rec, features[i]))
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].RiskScore > out[b].RiskScore })
	return out
}

func (s *Scorer) assessOne(rec api.ComponentRecord, fv api.FeatureVector) api.RiskAssessment {
	ageRisk := math.Min(fv.AgeYears/s.cfg.MaxAgeYears, 1.0)
	usageRisk := math.Min(fv.ScansPerYear/s.cfg.MaxScansPerYear, 1.0)
	qualityRisk := math.Min(float64(rec.QualityIssues)/s.cfg.MaxIssues, 1.0)
	costRisk := math.Min(rec.TotalMaintenanceCost/s.cfg.MaxCost, 1.0)

	score := ageRisk*s.cfg.AgeWeight +
		usageRisk*s.cfg.UsageWeight +
		qualityRisk*s.cfg.QualityWeight +
		costRisk*s.cfg.CostWeight

	level := levelFor(score)

	failureProb := math.Min(score*0.5+float64(rec.QualityIssues)/10*0.3+ageRisk*0.2, 0.95)

	var daysToMaintenance, priority int
	switch level {
	case api.RiskCritical:
		daysToMaintenance, priority = 7, 1
	case api.RiskHigh:
		daysToMaintenance, priority = 30, 2
	case api.RiskMedium:
		daysToMaintenance, priority = 90, 3
	default:
		daysToMaintenance, priority = 365, 3
	}

	return api.RiskAssessment{
		ComponentID:  rec.ComponentID,
		Type:         rec.Type,
		Manufacturer: rec.Manufacturer,
		TrackSection: rec.TrackSection,

		RiskLevel:          level,
		RiskScore:          util.RoundScore(score),
		FailureProbability: util.RoundScore(failureProb),

		AgeRisk:     util.RoundScore(ageRisk),
		UsageRisk:   util.RoundScore(usageRisk),
		QualityRisk: util.RoundScore(qualityRisk),
		CostRisk:    util.RoundScore(costRisk),

		DaysToMaintenance:        daysToMaintenance,
		EstimatedMaintenanceCost: util.RoundMoney(math.Max(10000*score, 1000)),
		Priority:                 priority,
	}
}

// levelFor maps a composite score to its risk tier. Cutoffs are inclusive
// lower bounds at 0.4 / 0.6 / 0.8.
func levelFor(score float64) string {
	switch {
	case score >= 0.8:
		return api.RiskCritical
	case score >= 0.6:
		return api.RiskHigh
	case score >= 0.4:
		return api.RiskMedium
	default:
		return api.RiskLow
	}
}
