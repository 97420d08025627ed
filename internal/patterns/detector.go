// Package patterns mines the component fleet for failure patterns, supplier
// scorecards and quality trends.
package patterns

import (
	"fmt"
	"sort"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/confidence"
	"railtrace/pkg/util"
)

// Detector groups components by type and manufacturer and flags the
// categories whose failure rates cross the configured thresholds.
type Detector struct {
	quality config.QualityConfig
}

// NewDetector creates a pattern detector.
func NewDetector(quality config.QualityConfig) *Detector {
	return &Detector{quality: quality}
}

type group struct {
	total     int
	failed    int
	ageSum    float64
	failedAge float64
	costSum   float64
	issuesSum float64
}

func (g *group) add(rec api.ComponentRecord) {
	g.total++
	g.ageSum += rec.AgeDays
	g.costSum += rec.TotalMaintenanceCost
	g.issuesSum += float64(rec.QualityIssues)
	if rec.QualityIssues > 0 {
		g.failed++
		g.failedAge += rec.AgeDays
	}
}

func (g *group) failureRate() float64 {
	if g.total == 0 {
		return 0
	}
	return float64(g.failed) / float64(g.total)
}

// Detect builds the per-type and per-manufacturer failure pattern tables and
// the critical-pattern list. Thresholds are strict: a rate exactly at the
// threshold is not flagged.
func (d *Detector) Detect(records []api.ComponentRecord) api.PatternResult {
	byType := map[api.ComponentType]*group{}
	byMfg := map[string]*group{}
	for _, rec := range records {
		if byType[rec.Type] == nil {
			byType[rec.Type] = &group{}
		}
		byType[rec.Type].add(rec)
		if byMfg[rec.Manufacturer] == nil {
			byMfg[rec.Manufacturer] = &group{}
		}
		byMfg[rec.Manufacturer].add(rec)
	}

	result := api.PatternResult{
		TypePatterns:         map[api.ComponentType]api.TypePattern{},
		ManufacturerPatterns: map[string]api.ManufacturerPattern{},
	}

	for t, g := range byType {
		avgFailedAge := 0.0
		if g.failed > 0 {
			avgFailedAge = g.failedAge / float64(g.failed)
		}
		result.TypePatterns[t] = api.TypePattern{
			FailureRate:         util.RoundScore(g.failureRate()),
			AvgAgeAtFailureDays: util.Round1(avgFailedAge),
			TotalComponents:     g.total,
			FailedComponents:    g.failed,
			AvgMaintenanceCost:  util.RoundMoney(g.costSum / float64(g.total)),
		}
	}

	for m, g := range byMfg {
		qualityScore := 1 / (1 + g.issuesSum/float64(g.total))
		result.ManufacturerPatterns[m] = api.ManufacturerPattern{
			FailureRate:        util.RoundScore(g.failureRate()),
			QualityScore:       util.RoundScore(qualityScore),
			TotalComponents:    g.total,
			AvgMaintenanceCost: util.RoundMoney(g.costSum / float64(g.total)),
			ReliabilityRanking: rankFor(g.failureRate()),
		}
	}

	// Deterministic iteration for the critical list.
	types := make([]api.ComponentType, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		rate := byType[t].failureRate()
		if rate > d.quality.CriticalFailureRate {
			result.CriticalPatterns = append(result.CriticalPatterns, api.CriticalPattern{
				PatternType:    "high_failure_rate",
				Category:       "component_type",
				Value:          string(t),
				FailureRate:    util.RoundScore(rate),
				Severity:       "Critical",
				Recommendation: fmt.Sprintf("Immediate quality review needed for %s components", t),
			})
		}
	}

	mfgs := make([]string, 0, len(byMfg))
	for m := range byMfg {
		mfgs = append(mfgs, m)
	}
	sort.Strings(mfgs)
	for _, m := range mfgs {
		rate := byMfg[m].failureRate()
		if rate > d.quality.HighRiskFailureRate {
			severity := "Medium"
			if rate > d.quality.CriticalFailureRate {
				severity = "High"
			}
			result.CriticalPatterns = append(result.CriticalPatterns, api.CriticalPattern{
				PatternType:    "poor_manufacturer_performance",
				Category:       "manufacturer",
				Value:          m,
				FailureRate:    util.RoundScore(rate),
				Severity:       severity,
				Recommendation: fmt.Sprintf("Quality audit recommended for %s", m),
			})
		}
	}

	result.PatternCount = len(result.CriticalPatterns)
	return result
}

func rankFor(failureRate float64) string {
	switch {
	case failureRate < 0.05:
		return api.RankingHigh
	case failureRate < 0.15:
		return api.RankingMedium
	default:
		return api.RankingLow
	}
}

// AssessManufacturers scores each supplier on reliability, cost efficiency
// and durability and ranks them. Durability uses the six year reference
// lifespan so young fleets score lower than proven ones.
func (d *Detector) AssessManufacturers(records []api.ComponentRecord) api.PerformanceResult {
	byMfg := map[string]*group{}
	for _, rec := range records {
		if byMfg[rec.Manufacturer] == nil {
			byMfg[rec.Manufacturer] = &group{}
		}
		byMfg[rec.Manufacturer].add(rec)
	}

	result := api.PerformanceResult{}
	for m, g := range byMfg {
		failureRate := g.failureRate()
		avgAge := g.ageSum / float64(g.total)
		avgCost := g.costSum / float64(g.total)

		reliability := 1 / (1 + failureRate*10)
		costEfficiency := 1 / (1 + avgCost/10000)
		ageDeficit := (d.quality.CriticalAgeDays - avgAge) / d.quality.CriticalAgeDays
		if ageDeficit < 0 {
			ageDeficit = 0
		}
		durability := 1 / (1 + ageDeficit)

		overall := confidence.Clamp(confidence.WeightedAverage(
			[]float64{reliability, costEfficiency, durability},
			[]float64{0.4, 0.3, 0.3},
		))
		rating := ratingFor(overall)

		var recs []string
		if failureRate > 0.15 {
			recs = append(recs, "Quality improvement program required")
		}
		if avgCost > 20000 {
			recs = append(recs, "Cost optimization needed")
		}
		if failureRate > 0.05 {
			recs = append(recs, "Enhanced quality control recommended")
		}
		if len(recs) == 0 {
			recs = append(recs, "Maintain current quality standards")
		}

		result.Ranked = append(result.Ranked, api.ManufacturerPerformance{
			Manufacturer: m,

			OverallRating:  rating,
			OverallScore:   util.RoundScore(overall),
			Reliability:    util.RoundScore(reliability),
			CostEfficiency: util.RoundScore(costEfficiency),
			Durability:     util.RoundScore(durability),

			FailureRate:        util.RoundRate(failureRate),
			AvgMaintenanceCost: util.RoundMoney(avgCost),
			TotalComponents:    g.total,
			MarketShare:        util.RoundScore(float64(g.total) / float64(len(records))),
			AvgComponentAge:    util.Round1(avgAge / 365.25),

			Recommendations: recs,
			ContractRenewal: renewalFor(rating),
		})

		if rating == "Fair" || rating == "Poor" {
			result.ImprovementOpportunities++
		}
	}

	sort.SliceStable(result.Ranked, func(i, j int) bool {
		if result.Ranked[i].OverallScore != result.Ranked[j].OverallScore {
			return result.Ranked[i].OverallScore > result.Ranked[j].OverallScore
		}
		return result.Ranked[i].Manufacturer < result.Ranked[j].Manufacturer
	})
	if len(result.Ranked) > 0 {
		result.TopPerformer = result.Ranked[0].Manufacturer
	}
	return result
}

func ratingFor(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent"
	case score >= 0.6:
		return "Good"
	case score >= 0.4:
		return "Fair"
	default:
		return "Poor"
	}
}

func renewalFor(rating string) string {
	switch rating {
	case "Excellent", "Good":
		return "Renew"
	case "Fair":
		return "Review"
	default:
		return "Reconsider"
	}
}
