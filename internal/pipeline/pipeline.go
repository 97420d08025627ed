// Package pipeline orchestrates one full analysis run: load the fleet
// snapshot, derive features, then fan the shared frame through the
// condition, risk, pattern, prediction, scheduling and lifecycle engines.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"railtrace/internal/condition"
	"railtrace/internal/config"
	"railtrace/internal/failure"
	"railtrace/internal/features"
	"railtrace/internal/lifecycle"
	"railtrace/internal/patterns"
	"railtrace/internal/risk"
	"railtrace/internal/schedule"
	"railtrace/pkg/api"
	"railtrace/pkg/errors"
)

// ComponentSource loads the active fleet snapshot.
type ComponentSource interface {
	Components(ctx context.Context) ([]api.ComponentRecord, error)
}

// RunStore persists completed analysis bundles. Optional: a nil store
// disables persistence.
type RunStore interface {
	SaveRun(ctx context.Context, bundle *api.AnalysisBundle) error
}

// Pipeline runs the full analysis cycle.
type Pipeline struct {
	source ComponentSource
	store  RunStore
	logger zerolog.Logger

	seed int64
	now  func() time.Time

	features  *features.Deriver
	condition *condition.Classifier
	risk      *risk.Scorer
	patterns  *patterns.Detector
	trends    *patterns.TrendAnalyzer
	failure   *failure.Predictor
	schedule  *schedule.Scheduler
	lifecycle *lifecycle.Projector
}

// New wires the engines from one configuration. The seed drives every
// stochastic stage (label noise, trend simulation); reruns with the same
// seed and snapshot produce identical bundles.
func New(cfg *config.Config, source ComponentSource, store RunStore, seed int64, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		source: source,
		store:  store,
		logger: logger.With().Str("component", "pipeline").Logger(),

		seed: seed,
		now:  time.Now,

		features:  features.NewDeriver(cfg.Quality),
		condition: condition.NewClassifier(cfg.Quality),
		risk:      risk.NewScorer(cfg.Quality),
		patterns:  patterns.NewDetector(cfg.Quality),
		trends:    patterns.NewTrendAnalyzer(rand.New(rand.NewSource(seed + 1))),
		failure:   failure.NewPredictor(cfg.Maintenance, cfg.Cost, rand.New(rand.NewSource(seed))),
		schedule:  schedule.NewScheduler(cfg.Maintenance, cfg.Cost),
		lifecycle: lifecycle.NewProjector(cfg.Maintenance),
	}
}

// Run executes every stage against a fresh snapshot and returns the bundle.
// Stages are all-or-nothing: the first failure aborts the run and no bundle
// is produced. An empty snapshot yields a no-data bundle without touching
// the engines.
func (p *Pipeline) Run(ctx context.Context) (*api.AnalysisBundle, error) {
	started := p.now()
	runID := uuid.New().String()
	logger := p.logger.With().Str("run_id", runID).Logger()
	logger.Info().Msg("starting analysis run")

	records, err := p.source.Components(ctx)
	if err != nil {
		return nil, errors.NewStageError("load", "source_unavailable",
			fmt.Sprintf("failed to load component snapshot: %v", err))
	}

	bundle := &api.AnalysisBundle{
		RunID:     runID,
		Timestamp: started,
		NoiseSeed: p.seed,
	}

	if len(records) == 0 {
		logger.Warn().Msg("no components found for analysis")
		bundle.Status = api.StatusNoData
		p.finish(ctx, bundle, started, logger)
		return bundle, nil
	}
	logger.Info().Int("components", len(records)).Msg("loaded component snapshot")

	frame := p.features.Derive(records)

	bundle.Conditions = p.condition.Assess(records, frame)
	logger.Info().
		Int("anomalies", bundle.Conditions.Summary.AnomaliesDetected).
		Int("poor", bundle.Conditions.Summary.Poor).
		Msg("condition analysis complete")

	bundle.Risks = p.risk.Assess(records, frame)
	for _, r := range bundle.Risks {
		switch r.RiskLevel {
		case api.RiskCritical:
			bundle.CriticalComponents++
		case api.RiskHigh:
			bundle.HighRiskComponents++
		}
	}
	logger.Info().
		Int("critical", bundle.CriticalComponents).
		Int("high", bundle.HighRiskComponents).
		Msg("risk assessment complete")

	bundle.Patterns = p.patterns.Detect(records)
	bundle.Performance = p.patterns.AssessManufacturers(records)
	bundle.Trends = p.trends.Analyze(records)
	logger.Info().
		Int("critical_patterns", bundle.Patterns.PatternCount).
		Str("top_manufacturer", bundle.Performance.TopPerformer).
		Msg("pattern analysis complete")

	bundle.Predictions, err = p.failure.Predict(records, frame)
	if err != nil {
		return nil, errors.NewStageError("failure_prediction", "model_fit_failed", err.Error())
	}
	for _, pred := range bundle.Predictions {
		if pred.DaysToFailure <= 7 {
			bundle.ImmediateAttention++
		}
		if pred.DaysToFailure <= 30 {
			bundle.Next30Days++
		}
		if pred.DaysToFailure <= 90 {
			bundle.Next90Days++
		}
	}
	logger.Info().
		Int("immediate", bundle.ImmediateAttention).
		Int("next_30_days", bundle.Next30Days).
		Msg("failure prediction complete")

	bundle.Schedule = p.schedule.Build(bundle.Predictions)
	bundle.Resources = p.schedule.EstimateResources(bundle.Schedule)
	bundle.Lifecycles = p.lifecycle.Project(records)
	logger.Info().
		Int("scheduled", len(bundle.Schedule)).
		Float64("estimated_cost", bundle.Resources.TotalEstimatedCost).
		Msg("maintenance planning complete")

	bundle.Status = api.StatusSuccess
	bundle.Stats = api.RunStats{
		ComponentsProcessed:        len(records),
		QualityIssuesDetected:      bundle.CriticalComponents + bundle.HighRiskComponents,
		MaintenanceRecommendations: len(bundle.Schedule),
	}
	p.finish(ctx, bundle, started, logger)
	return bundle, nil
}

func (p *Pipeline) finish(ctx context.Context, bundle *api.AnalysisBundle, started time.Time, logger zerolog.Logger) {
	bundle.Stats.ExecutionSeconds = p.now().Sub(started).Seconds()

	if p.store != nil {
		if err := p.store.SaveRun(ctx, bundle); err != nil {
			// Persistence is best effort; the bundle is still returned.
			logger.Error().Err(err).Msg("failed to persist run history")
		}
	}

	logger.Info().
		Str("status", bundle.Status).
		Float64("seconds", bundle.Stats.ExecutionSeconds).
		Msg("analysis run finished")
}
