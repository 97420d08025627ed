package patterns

import (
	"math/rand"
	"time"

	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

// TrendAnalyzer produces the quality trend report. No per-month history is
// stored yet, so the monthly series is simulated from the current snapshot
// plus seeded noise and labeled as such in the output.
type TrendAnalyzer struct {
	rng *rand.Rand
	now func() time.Time
}

// NewTrendAnalyzer creates a trend analyzer driven by the given noise
// source. Pinning the seed makes runs reproducible.
func NewTrendAnalyzer(rng *rand.Rand) *TrendAnalyzer {
	return &TrendAnalyzer{rng: rng, now: time.Now}
}

// Analyze builds the simulated twelve month failure-rate series and the
// per-type and per-manufacturer snapshots.
func (a *TrendAnalyzer) Analyze(records []api.ComponentRecord) api.QualityTrends {
	trends := api.QualityTrends{
		Simulated:          true,
		TypeTrends:         map[api.ComponentType]api.TypeTrend{},
		ManufacturerTrends: map[string]api.ManufacturerTrend{},
	}

	now := a.now()
	n := len(records)
	// Newest month first, then reversed to chronological order.
	for i := 0; i < 12; i++ {
		monthDate := now.AddDate(0, 0, -30*i)

		// Trend shape: 12% baseline failure rate improving 2% per month
		// back in time, floored at 1%.
		improvement := 1 - float64(i)*0.02
		rate := 0.12*improvement + a.rng.NormFloat64()*0.01
		if rate < 0.01 {
			rate = 0.01
		}

		trends.MonthlyRates = append(trends.MonthlyRates, api.MonthlyFailureRate{
			Month:           monthDate.Format("2006-01"),
			FailureRate:     util.RoundRate(rate),
			TotalComponents: int(float64(n) * (0.9 + float64(i)*0.01)),
			QualityIssues:   int(float64(n) * rate),
		})
	}
	for i, j := 0, len(trends.MonthlyRates)-1; i < j; i, j = i+1, j-1 {
		trends.MonthlyRates[i], trends.MonthlyRates[j] = trends.MonthlyRates[j], trends.MonthlyRates[i]
	}

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

	for t, g := range byType {
		rate := g.failureRate()
		trends.TypeTrends[t] = api.TypeTrend{
			CurrentFailureRate: util.RoundRate(rate),
			QualityGrade:       gradeFor(rate),
		}
	}
	for m, g := range byMfg {
		rate := g.failureRate()
		trends.ManufacturerTrends[m] = api.ManufacturerTrend{
			CurrentFailureRate: util.RoundRate(rate),
			QualityScore:       util.RoundScore(1 / (1 + rate*10)),
			MarketShare:        util.RoundScore(float64(g.total) / float64(n)),
		}
	}

	return trends
}

func gradeFor(failureRate float64) string {
	switch {
	case failureRate < 0.05:
		return "A"
	case failureRate < 0.10:
		return "B"
	default:
		return "C"
	}
}
