// Package features derives the engineered feature frame from raw component
// records. Derivation is pure and row-independent: the same snapshot and
// configuration always produce the same frame.
package features

import (
	"math"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

const daysPerYear = 365.25

// Deriver computes feature vectors against configured risk thresholds.
type Deriver struct {
	cfg config.QualityConfig
}

// NewDeriver creates a feature deriver.
func NewDeriver(cfg config.QualityConfig) *Deriver {
	return &Deriver{cfg: cfg}
}

// Derive computes one FeatureVector per record. Undefined ratios
// (division by zero) come out as 0, never NaN or Inf.
func (d *Deriver) Derive(records []api.ComponentRecord) []api.FeatureVector {
	out := make([]api.FeatureVector, 0, len(records))
	for _, rec := range records {
		out = append(out, d.deriveOne(rec))
	}
	return out
}

func (d *Deriver) deriveOne(rec api.ComponentRecord) api.FeatureVector {
	fv := api.FeatureVector{
		ComponentID:  rec.ComponentID,
		AgeYears:     rec.AgeDays / daysPerYear,
		ServiceYears: rec.ServiceDays / daysPerYear,
	}

	fv.ScansPerDay = float64(rec.TotalScans) / math.Max(rec.ServiceDays, 1)
	fv.ScansPerYear = fv.ScansPerDay * daysPerYear

	fv.IssuesPerScan = float64(rec.QualityIssues) / math.Max(float64(rec.TotalScans), 1)
	fv.CostPerIssue = rec.TotalMaintenanceCost / math.Max(float64(rec.QualityIssues), 1)
	fv.CostPerYear = rec.TotalMaintenanceCost / math.Max(fv.ServiceYears, 0.1)

	fv.ReliabilityScore = 1 / (1 + float64(rec.QualityIssues))
	fv.EfficiencyScore = 1 / (1 + rec.AvgProcessingTimeMs/1000)

	fv.AgeRisk = rec.AgeDays > d.cfg.CriticalAgeDays
	fv.UsageRisk = fv.ScansPerYear > d.cfg.MaxScanFrequency

	// Denominator guards above should prevent NaN/Inf, but malformed input
	// (negative aggregates) could still slip through. Sanitize the frame
	// before it fans out to the downstream engines.
	fv.AgeYears = util.Sanitize(fv.AgeYears)
	fv.ServiceYears = util.Sanitize(fv.ServiceYears)
	fv.ScansPerDay = util.Sanitize(fv.ScansPerDay)
	fv.ScansPerYear = util.Sanitize(fv.ScansPerYear)
	fv.IssuesPerScan = util.Sanitize(fv.IssuesPerScan)
	fv.CostPerIssue = util.Sanitize(fv.CostPerIssue)
	fv.CostPerYear = util.Sanitize(fv.CostPerYear)
	fv.ReliabilityScore = util.Sanitize(fv.ReliabilityScore)
	fv.EfficiencyScore = util.Sanitize(fv.EfficiencyScore)

	return fv
}
