package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railtrace/internal/config"
	"railtrace/pkg/api"
	railerrors "railtrace/pkg/errors"
)

type fixedSource struct {
	records []api.ComponentRecord
	err     error
}

func (s *fixedSource) Components(_ context.Context) ([]api.ComponentRecord, error) {
	return s.records, s.err
}

type captureStore struct {
	saved []*api.AnalysisBundle
	err   error
}

func (s *captureStore) SaveRun(_ context.Context, bundle *api.AnalysisBundle) error {
	s.saved = append(s.saved, bundle)
	return s.err
}

func fleet() []api.ComponentRecord {
	return []api.ComponentRecord{
		{ComponentID: "ERC-001", Type: api.TypeERC, Manufacturer: "TrackFit", TrackSection: "SEC-1", AgeDays: 200, ServiceDays: 180, TotalScans: 60, ScanCount: 60},
		{ComponentID: "ERC-002", Type: api.TypeERC, Manufacturer: "TrackFit", TrackSection: "SEC-1", AgeDays: 900, ServiceDays: 860, QualityIssues: 1, TotalMaintenanceCost: 4000, TotalScans: 250, ScanCount: 250, AvgProcessingTimeMs: 200},
		{ComponentID: "RPD-001", Type: api.TypeRPD, Manufacturer: "CheapParts", TrackSection: "SEC-2", AgeDays: 1600, ServiceDays: 1550, QualityIssues: 4, TotalMaintenanceCost: 22000, TotalScans: 700, ScanCount: 700, AvgProcessingTimeMs: 450},
		{ComponentID: "LNR-001", Type: api.TypeLNR, Manufacturer: "CheapParts", TrackSection: "SEC-3", AgeDays: 2300, ServiceDays: 2250, QualityIssues: 8, TotalMaintenanceCost: 47000, TotalScans: 1400, ScanCount: 1400, AvgProcessingTimeMs: 700},
	}
}

func newTestPipeline(source ComponentSource, store RunStore) *Pipeline {
	return New(config.Default(), source, store, 42, zerolog.Nop())
}

func TestRunProducesCompleteBundle(t *testing.T) {
	store := &captureStore{}
	p := newTestPipeline(&fixedSource{records: fleet()}, store)

	bundle, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, bundle)

	assert.Equal(t, api.StatusSuccess, bundle.Status)
	_, err = uuid.Parse(bundle.RunID)
	assert.NoError(t, err, "run id is a uuid")
	assert.Equal(t, int64(42), bundle.NoiseSeed)

	assert.Equal(t, 4, bundle.Stats.ComponentsProcessed)
	assert.Len(t, bundle.Conditions.Conditions, 4)
	assert.Len(t, bundle.Risks, 4)
	assert.Len(t, bundle.Predictions, 4)
	assert.Len(t, bundle.Lifecycles, 4)
	assert.NotEmpty(t, bundle.Patterns.TypePatterns)
	assert.NotEmpty(t, bundle.Performance.Ranked)
	assert.True(t, bundle.Trends.Simulated)

	// Attention windows nest.
	assert.LessOrEqual(t, bundle.ImmediateAttention, bundle.Next30Days)
	assert.LessOrEqual(t, bundle.Next30Days, bundle.Next90Days)

	assert.Equal(t, bundle.CriticalComponents+bundle.HighRiskComponents, bundle.Stats.QualityIssuesDetected)
	assert.Equal(t, len(bundle.Schedule), bundle.Stats.MaintenanceRecommendations)
	assert.Equal(t, len(bundle.Schedule), bundle.Resources.TotalMaintenanceItems)

	require.Len(t, store.saved, 1)
	assert.Equal(t, bundle.RunID, store.saved[0].RunID)
}

func TestRunEmptySnapshotShortCircuits(t *testing.T) {
	store := &captureStore{}
	p := newTestPipeline(&fixedSource{}, store)

	bundle, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, api.StatusNoData, bundle.Status)
	assert.Empty(t, bundle.Risks)
	assert.Empty(t, bundle.Predictions)
	assert.Empty(t, bundle.Schedule)
	assert.Zero(t, bundle.Stats.ComponentsProcessed)
	require.Len(t, store.saved, 1, "no-data runs are still recorded")
}

func TestRunSourceFailure(t *testing.T) {
	p := newTestPipeline(&fixedSource{err: errors.New("connection refused")}, nil)

	bundle, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, bundle)

	var stageErr *railerrors.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "load", stageErr.Stage)
	assert.Equal(t, railerrors.SeverityFatal, stageErr.Severity)
}

func TestRunStoreFailureIsNonFatal(t *testing.T) {
	store := &captureStore{err: errors.New("clickhouse down")}
	p := newTestPipeline(&fixedSource{records: fleet()}, store)

	bundle, err := p.Run(context.Background())
	require.NoError(t, err, "persistence failures must not fail the run")
	assert.Equal(t, api.StatusSuccess, bundle.Status)
}

func TestRunDeterministicForSeed(t *testing.T) {
	run := func() *api.AnalysisBundle {
		b, err := newTestPipeline(&fixedSource{records: fleet()}, nil).Run(context.Background())
		require.NoError(t, err)
		return b
	}

	b1, b2 := run(), run()

	require.Len(t, b2.Predictions, len(b1.Predictions))
	for i := range b1.Predictions {
		assert.Equal(t, b1.Predictions[i].ComponentID, b2.Predictions[i].ComponentID)
		assert.Equal(t, b1.Predictions[i].DaysToFailure, b2.Predictions[i].DaysToFailure)
	}
	require.Len(t, b2.Trends.MonthlyRates, len(b1.Trends.MonthlyRates))
	for i := range b1.Trends.MonthlyRates {
		assert.Equal(t, b1.Trends.MonthlyRates[i].FailureRate, b2.Trends.MonthlyRates[i].FailureRate)
	}
}
