// Package condition classifies components into discrete condition tiers
// using a batch anomaly signal plus issue and age rules.
//
// The anomaly signal is a robust z-score rule refit on every batch: it is a
// descriptive statistic over the current snapshot, not a persisted trained
// model. Scores follow the decision-function orientation of the usual
// outlier detectors: lower means more anomalous, and the most anomalous
// contamination share of the batch is flagged.
package condition

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	"railtrace/pkg/util"
)

// Classifier assigns condition labels.
type Classifier struct {
	cfg config.QualityConfig
}

// NewClassifier creates a condition classifier.
func NewClassifier(cfg config.QualityConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Assess classifies every component in the batch. records and features must
// be index-aligned.
func (c *Classifier) Assess(records []api.ComponentRecord, features []api.FeatureVector) api.ConditionResult {
	result := api.ConditionResult{
		Conditions: make([]api.ConditionAssessment, 0, len(records)),
	}
	if len(records) == 0 {
		return result
	}

	scores := c.anomalyScores(records, features)
	flagged := flagContamination(scores, c.cfg.Contamination)

	var reliabilitySum float64
	for i, rec := range records {
		fv := features[i]
		anomaly := flagged[i]

		var label string
		switch {
		case anomaly || rec.QualityIssues > 5:
			label = api.ConditionPoor
		case rec.QualityIssues > 2 || fv.AgeYears > 5:
			label = api.ConditionFair
		case rec.QualityIssues > 0 || fv.AgeYears > 3:
			label = api.ConditionGood
		default:
			label = api.ConditionExcellent
		}

		reliability := util.RoundScore(fv.ReliabilityScore)
		reliabilitySum += reliability

		result.Conditions = append(result.Conditions, api.ConditionAssessment{
			ComponentID:      rec.ComponentID,
			Type:             rec.Type,
			Manufacturer:     rec.Manufacturer,
			Condition:        label,
			AgeYears:         util.Round1(fv.AgeYears),
			QualityIssues:    rec.QualityIssues,
			ReliabilityScore: reliability,
			AnomalyScore:     util.RoundScore(scores[i]),
			IsAnomaly:        anomaly,
		})

		switch label {
		case api.ConditionExcellent:
			result.Summary.Excellent++
		case api.ConditionGood:
			result.Summary.Good++
		case api.ConditionFair:
			result.Summary.Fair++
		case api.ConditionPoor:
			result.Summary.Poor++
		}
		if anomaly {
			result.Summary.AnomaliesDetected++
		}
	}

	result.TotalComponents = len(result.Conditions)
	result.Summary.AvgReliabilityScore = util.RoundScore(reliabilitySum / float64(len(records)))
	return result
}

// anomalyScores standardizes the feature matrix column-wise and scores each
// row by the negated mean absolute z-score, so lower = more anomalous.
func (c *Classifier) anomalyScores(records []api.ComponentRecord, features []api.FeatureVector) []float64 {
	n := len(records)
	columns := [][]float64{
		make([]float64, n), // age years
		make([]float64, n), // service years
		make([]float64, n), // scans per year
		make([]float64, n), // quality issues
		make([]float64, n), // maintenance cost
		make([]float64, n), // reliability score
		make([]float64, n), // efficiency score
	}
	for i := range records {
		columns[0][i] = features[i].AgeYears
		columns[1][i] = features[i].ServiceYears
		columns[2][i] = features[i].ScansPerYear
		columns[3][i] = float64(records[i].QualityIssues)
		columns[4][i] = records[i].TotalMaintenanceCost
		columns[5][i] = features[i].ReliabilityScore
		columns[6][i] = features[i].EfficiencyScore
	}

	scores := make([]float64, n)
	for _, col := range columns {
		mean := stat.Mean(col, nil)
		sd := 0.0
		if n >= 2 {
			sd = stat.StdDev(col, nil)
		}
		for i, v := range col {
			z := 0.0
			if sd > 0 {
				z = (v - mean) / sd
			}
			scores[i] += math.Abs(z)
		}
	}
	for i := range scores {
		scores[i] = -scores[i] / float64(len(columns))
	}
	return scores
}

// flagContamination marks the lowest-scoring ceil(contamination*n) rows.
// A batch of one is never flagged: a single row carries no dispersion.
func flagContamination(scores []float64, contamination float64) []bool {
	n := len(scores)
	flags := make([]bool, n)
	if n < 2 || contamination <= 0 {
		return flags
	}

	k := int(math.Ceil(contamination * float64(n)))
	if k >= n {
		k = n - 1
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	for _, i := range idx[:k] {
		flags[i] = true
	}
	return flags
}
